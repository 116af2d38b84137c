// Package analytics derives the dashboard aggregates from raw readings.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"terralink/internal/detection"
)

const dayLayout = "2006-01-02"

// KPI is the overview card set.
type KPI struct {
	AvgSoilMoisture decimal.Decimal
	AvgTemp         decimal.Decimal
	TotalRainfall   decimal.Decimal
	ActiveAlerts    int
}

// DayAggregate sums one UTC day of readings.
type DayAggregate struct {
	Day          string
	SoilMoisture decimal.Decimal
	Temperature  decimal.Decimal
	Rainfall     decimal.Decimal
}

// RegionAverage is the mean soil moisture of one region.
type RegionAverage struct {
	Region       detection.Region
	SoilMoisture decimal.Decimal
}

// Summarize computes the overview KPIs. Averages divide by at least one so
// an empty dataset reports zeros.
func Summarize(readings []detection.SensorReading, alerts []detection.Alert) KPI {
	n := len(readings)
	if n == 0 {
		n = 1
	}
	count := decimal.NewFromInt(int64(n))

	soil, temp, rain := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range readings {
		soil = soil.Add(decimal.NewFromFloat(r.SoilMoisture))
		temp = temp.Add(decimal.NewFromFloat(r.Temperature))
		rain = rain.Add(decimal.NewFromFloat(r.Rainfall))
	}

	return KPI{
		AvgSoilMoisture: soil.Div(count).Round(1),
		AvgTemp:         temp.Div(count).Round(1),
		TotalRainfall:   rain.Round(1),
		ActiveAlerts:    countActive(alerts),
	}
}

func countActive(alerts []detection.Alert) int {
	active := 0
	for _, a := range alerts {
		if !a.Resolved {
			active++
		}
	}
	return active
}

// Daily sums readings per UTC calendar day, ascending.
func Daily(readings []detection.SensorReading) []DayAggregate {
	byDay := make(map[string]*DayAggregate)
	for _, r := range readings {
		day := r.Timestamp.UTC().Format(dayLayout)
		agg, ok := byDay[day]
		if !ok {
			agg = &DayAggregate{Day: day}
			byDay[day] = agg
		}
		agg.SoilMoisture = agg.SoilMoisture.Add(decimal.NewFromFloat(r.SoilMoisture))
		agg.Temperature = agg.Temperature.Add(decimal.NewFromFloat(r.Temperature))
		agg.Rainfall = agg.Rainfall.Add(decimal.NewFromFloat(r.Rainfall))
	}

	out := make([]DayAggregate, 0, len(byDay))
	for _, agg := range byDay {
		out = append(out, DayAggregate{
			Day:          agg.Day,
			SoilMoisture: agg.SoilMoisture.Round(1),
			Temperature:  agg.Temperature.Round(1),
			Rainfall:     agg.Rainfall.Round(1),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// RegionAverages reports mean soil moisture per region in display order,
// rounded to whole percent. Regions without readings report zero.
func RegionAverages(readings []detection.SensorReading) []RegionAverage {
	out := make([]RegionAverage, 0, len(detection.Regions))
	for _, region := range detection.Regions {
		sum := decimal.Zero
		n := 0
		for _, r := range readings {
			if r.Region != region {
				continue
			}
			sum = sum.Add(decimal.NewFromFloat(r.SoilMoisture))
			n++
		}
		avg := decimal.Zero
		if n > 0 {
			avg = sum.Div(decimal.NewFromInt(int64(n))).Round(0)
		}
		out = append(out, RegionAverage{Region: region, SoilMoisture: avg})
	}
	return out
}

// FarmSeries returns a chronologically sorted copy of one farm's readings.
func FarmSeries(readings []detection.SensorReading, farmID string) []detection.SensorReading {
	series := make([]detection.SensorReading, 0)
	for _, r := range readings {
		if r.FarmID == farmID {
			series = append(series, r)
		}
	}
	detection.SortChronological(series)
	return series
}

// Farms lists distinct farm IDs in first-seen order.
func Farms(readings []detection.SensorReading) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range readings {
		if !seen[r.FarmID] {
			seen[r.FarmID] = true
			out = append(out, r.FarmID)
		}
	}
	return out
}
