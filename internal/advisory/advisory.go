// Package advisory turns a farm's latest reading into a status and
// irrigation recommendation.
package advisory

import "terralink/internal/detection"

const (
	criticalSoilPct  = 12.0
	criticalTempC    = 32.0
	warningSoilPct   = 16.0
	saturatedSoilPct = 30.0
	recentRainMm     = 5.0
)

// Status is the traffic-light state of a farm.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Text is the human label shown next to the status.
func (s Status) Text() string {
	switch s {
	case StatusCritical:
		return "Drought risk"
	case StatusWarning:
		return "Water stress"
	default:
		return "Normal"
	}
}

// Advice is an irrigation recommendation.
type Advice struct {
	Main  string
	Extra []string
}

// Classify grades a reading. Critical needs both dry soil and heat.
func Classify(r detection.SensorReading) Status {
	switch {
	case r.SoilMoisture < criticalSoilPct && r.Temperature > criticalTempC:
		return StatusCritical
	case r.SoilMoisture < warningSoilPct:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Advise recommends an irrigation action for the latest reading.
func Advise(r detection.SensorReading) Advice {
	if r.SoilMoisture < criticalSoilPct && r.Temperature > criticalTempC {
		return Advice{
			Main: "Critical drought risk detected. Irrigation is strongly recommended as soon as possible, if water is available.",
			Extra: []string{
				"Prioritize this plot in your irrigation schedule.",
				"If you are covered, microinsurance partners are notified to support potential yield loss.",
			},
		}
	}

	if r.SoilMoisture < warningSoilPct {
		return Advice{
			Main: "Soil moisture is low. Plan irrigation within the next 24 hours, especially during cooler morning or evening hours.",
			Extra: []string{
				"Avoid mid-day irrigation to reduce evaporation.",
				"Monitor the dashboard to see if moisture continues to fall.",
			},
		}
	}

	if r.SoilMoisture > saturatedSoilPct && r.Rainfall > recentRainMm {
		return Advice{
			Main: "Soil is currently well supplied with water. Irrigation is not needed now and over-irrigation could damage roots.",
			Extra: []string{
				"Wait and re-check soil moisture before scheduling new irrigation cycles.",
			},
		}
	}

	return Advice{
		Main: "Conditions are stable. No immediate irrigation is required, but keep monitoring forecasts and soil moisture trends.",
		Extra: []string{
			"Irrigate only if several days of high temperature and no rainfall are expected.",
		},
	}
}

// StatusLabel describes the microinsurance workflow state of an alert.
func StatusLabel(s detection.MicroinsuranceStatus) string {
	switch s {
	case detection.InsurancePending:
		return "Pending partner response"
	case detection.InsuranceApproved:
		return "Compensation approved"
	case detection.InsuranceRejected:
		return "Claim rejected"
	default:
		return "Not triggered"
	}
}
