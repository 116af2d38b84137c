package detection

import "time"

// Region is the administrative zone a farm belongs to.
type Region string

const (
	RegionNorth  Region = "North"
	RegionCenter Region = "Center"
	RegionSouth  Region = "South"
)

// Regions lists every region in display order.
var Regions = []Region{RegionNorth, RegionCenter, RegionSouth}

// Valid reports whether r is a known region.
func (r Region) Valid() bool {
	switch r {
	case RegionNorth, RegionCenter, RegionSouth:
		return true
	}
	return false
}

// Crop is the main crop grown on a farm.
type Crop string

const (
	CropOlives  Crop = "Olives"
	CropCereals Crop = "Cereals"
	CropDates   Crop = "Dates"
	CropOther   Crop = "Other"
)

// Valid reports whether c is a known crop.
func (c Crop) Valid() bool {
	switch c {
	case CropOlives, CropCereals, CropDates, CropOther:
		return true
	}
	return false
}

// AlertType names the rule that produced an alert.
type AlertType string

const (
	AlertDrought           AlertType = "drought"
	AlertWaterStress       AlertType = "water_stress"
	AlertFlood             AlertType = "flood"
	AlertIrrigationFailure AlertType = "irrigation_failure"
)

// Severity is the urgency tier of an alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// MicroinsuranceStatus tracks the claim workflow attached to an alert.
type MicroinsuranceStatus string

const (
	InsuranceNone     MicroinsuranceStatus = "none"
	InsurancePending  MicroinsuranceStatus = "pending"
	InsuranceApproved MicroinsuranceStatus = "approved"
	InsuranceRejected MicroinsuranceStatus = "rejected"
)

// SensorReading is one timestamped sample from a farm station.
type SensorReading struct {
	ID           string    `json:"id"`
	FarmID       string    `json:"farmId"`
	Timestamp    time.Time `json:"timestamp"`
	Temperature  float64   `json:"temperature"`
	SoilMoisture float64   `json:"soilMoisture"`
	Rainfall     float64   `json:"rainfall"`
	Region       Region    `json:"region"`
	Crop         Crop      `json:"crop"`
}

// Alert is an anomaly raised by the detector.
type Alert struct {
	ID                   string               `json:"id"`
	FarmID               string               `json:"farmId"`
	Type                 AlertType            `json:"type"`
	Severity             Severity             `json:"severity"`
	TriggeredAt          time.Time            `json:"triggeredAt"`
	Resolved             bool                 `json:"resolved"`
	MicroinsuranceStatus MicroinsuranceStatus `json:"microinsuranceStatus"`
}

// Thresholds parameterise the detection rules.
type Thresholds struct {
	DroughtSoilPct float64 `mapstructure:"drought_soil_pct" json:"droughtSoilPct"`
	HighTempC      float64 `mapstructure:"high_temp_c" json:"highTempC"`
	FloodRainMmDay float64 `mapstructure:"flood_rain_mm_day" json:"floodRainMmDay"`
}

// DefaultThresholds returns the pilot calibration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DroughtSoilPct: 12,
		HighTempC:      32,
		FloodRainMmDay: 40,
	}
}
