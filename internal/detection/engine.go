package detection

import (
	"sort"

	"github.com/google/uuid"
)

const (
	droughtStreak     = 2
	stressMinDropPct  = 2.0
	stressHighDropPct = 5.0
	floodMinSoilPct   = 30.0
	irrigationMinRain = 5.0
)

// Detector scans per-farm series and raises typed alerts.
//
// A Detector holds no mutable state and is safe for concurrent use as long
// as NewID is.
type Detector struct {
	Thresholds Thresholds
	// NewID generates alert identifiers. Defaults to random UUIDs.
	NewID func() string
}

// NewDetector constructs a detector with the given thresholds.
func NewDetector(t Thresholds) *Detector {
	return &Detector{Thresholds: t, NewID: uuid.NewString}
}

// Detect runs every rule over readings using t.
func Detect(readings []SensorReading, t Thresholds) []Alert {
	return NewDetector(t).Detect(readings)
}

// Detect partitions readings by farm, sorts each farm chronologically and
// appends the alerts of rules 1 to 4 in that order. Farms keep first-seen order.
func (d *Detector) Detect(readings []SensorReading) []Alert {
	alerts := make([]Alert, 0)
	for _, group := range groupByFarm(readings) {
		alerts = d.droughtOnset(alerts, group)
		alerts = d.waterStress(alerts, group)
		alerts = d.flood(alerts, group)
		alerts = d.irrigationFailure(alerts, group)
	}
	return alerts
}

type farmSeries struct {
	farmID string
	series []SensorReading
}

func groupByFarm(readings []SensorReading) []farmSeries {
	index := make(map[string]int)
	groups := make([]farmSeries, 0)
	for _, r := range readings {
		i, ok := index[r.FarmID]
		if !ok {
			i = len(groups)
			index[r.FarmID] = i
			groups = append(groups, farmSeries{farmID: r.FarmID})
		}
		groups[i].series = append(groups[i].series, r)
	}
	for _, g := range groups {
		SortChronological(g.series)
	}
	return groups
}

// SortChronological orders readings by timestamp in place. Equal instants
// fall back to reading ID, then to input order.
func SortChronological(series []SensorReading) {
	sort.SliceStable(series, func(i, j int) bool {
		a, b := series[i], series[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})
}

// droughtOnset fires once per run of low readings, at the second one.
func (d *Detector) droughtOnset(alerts []Alert, g farmSeries) []Alert {
	streak := 0
	for _, r := range g.series {
		if r.SoilMoisture >= d.Thresholds.DroughtSoilPct {
			streak = 0
			continue
		}
		streak++
		if streak == droughtStreak {
			alerts = append(alerts, d.newAlert(r, AlertDrought, SeverityMedium, InsurancePending))
		}
	}
	return alerts
}

func (d *Detector) waterStress(alerts []Alert, g farmSeries) []Alert {
	for i := 1; i < len(g.series); i++ {
		prev, cur := g.series[i-1], g.series[i]
		drop := prev.SoilMoisture - cur.SoilMoisture
		if drop < stressMinDropPct || cur.Temperature < d.Thresholds.HighTempC || cur.Rainfall != 0 {
			continue
		}
		severity := SeverityMedium
		if drop >= stressHighDropPct {
			severity = SeverityHigh
		}
		alerts = append(alerts, d.newAlert(cur, AlertWaterStress, severity, InsurancePending))
	}
	return alerts
}

func (d *Detector) flood(alerts []Alert, g farmSeries) []Alert {
	for _, r := range g.series {
		if r.Rainfall >= d.Thresholds.FloodRainMmDay && r.SoilMoisture >= floodMinSoilPct {
			alerts = append(alerts, d.newAlert(r, AlertFlood, SeverityMedium, InsurancePending))
		}
	}
	return alerts
}

// irrigationFailure flags soil that did not recover after meaningful rain.
func (d *Detector) irrigationFailure(alerts []Alert, g farmSeries) []Alert {
	for i := 1; i < len(g.series); i++ {
		prev, cur := g.series[i-1], g.series[i]
		if prev.Rainfall > irrigationMinRain && cur.SoilMoisture <= prev.SoilMoisture {
			alerts = append(alerts, d.newAlert(cur, AlertIrrigationFailure, SeverityLow, InsuranceNone))
		}
	}
	return alerts
}

func (d *Detector) newAlert(r SensorReading, typ AlertType, sev Severity, status MicroinsuranceStatus) Alert {
	newID := d.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return Alert{
		ID:                   newID(),
		FarmID:               r.FarmID,
		Type:                 typ,
		Severity:             sev,
		TriggeredAt:          r.Timestamp,
		Resolved:             false,
		MicroinsuranceStatus: status,
	}
}
