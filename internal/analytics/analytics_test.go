package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terralink/internal/detection"
)

func sample(farm string, ts time.Time, soil, temp, rain float64, region detection.Region) detection.SensorReading {
	return detection.SensorReading{
		FarmID:       farm,
		Timestamp:    ts,
		SoilMoisture: soil,
		Temperature:  temp,
		Rainfall:     rain,
		Region:       region,
		Crop:         detection.CropCereals,
	}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestSummarize(t *testing.T) {
	day := time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)
	readings := []detection.SensorReading{
		sample("f1", day, 10, 30, 1.25, detection.RegionNorth),
		sample("f1", day.Add(time.Hour), 15, 31, 2.5, detection.RegionNorth),
		sample("f2", day, 20.5, 35, 0, detection.RegionSouth),
	}
	alerts := []detection.Alert{{ID: "a"}, {ID: "b", Resolved: true}}

	kpi := Summarize(readings, alerts)
	assert.True(t, kpi.AvgSoilMoisture.Equal(dec("15.2")), kpi.AvgSoilMoisture.String())
	assert.True(t, kpi.AvgTemp.Equal(dec("32")), kpi.AvgTemp.String())
	assert.True(t, kpi.TotalRainfall.Equal(dec("3.8")), kpi.TotalRainfall.String())
	assert.Equal(t, 1, kpi.ActiveAlerts)
}

func TestSummarizeEmpty(t *testing.T) {
	kpi := Summarize(nil, nil)
	assert.True(t, kpi.AvgSoilMoisture.IsZero())
	assert.True(t, kpi.TotalRainfall.IsZero())
	assert.Zero(t, kpi.ActiveAlerts)
}

func TestDaily(t *testing.T) {
	d1 := time.Date(2025, 7, 1, 23, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 7, 2, 1, 0, 0, 0, time.UTC)
	readings := []detection.SensorReading{
		sample("f1", d2, 10, 20, 1, detection.RegionNorth),
		sample("f1", d1, 10, 20, 1, detection.RegionNorth),
		sample("f2", d1, 5.55, 21, 0.05, detection.RegionCenter),
	}

	days := Daily(readings)
	require.Len(t, days, 2)
	assert.Equal(t, "2025-07-01", days[0].Day)
	assert.True(t, days[0].SoilMoisture.Equal(dec("15.6")), days[0].SoilMoisture.String())
	assert.True(t, days[0].Temperature.Equal(dec("41")))
	assert.True(t, days[0].Rainfall.Equal(dec("1.1")), days[0].Rainfall.String())
	assert.Equal(t, "2025-07-02", days[1].Day)
}

func TestRegionAverages(t *testing.T) {
	ts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	readings := []detection.SensorReading{
		sample("f1", ts, 10, 0, 0, detection.RegionSouth),
		sample("f2", ts, 13, 0, 0, detection.RegionSouth),
		sample("f3", ts, 30, 0, 0, detection.RegionNorth),
	}

	avgs := RegionAverages(readings)
	require.Len(t, avgs, 3)
	assert.Equal(t, detection.RegionNorth, avgs[0].Region)
	assert.True(t, avgs[0].SoilMoisture.Equal(dec("30")))
	assert.Equal(t, detection.RegionCenter, avgs[1].Region)
	assert.True(t, avgs[1].SoilMoisture.IsZero())
	assert.True(t, avgs[2].SoilMoisture.Equal(dec("12")), avgs[2].SoilMoisture.String())
}

func TestFarmSeriesAndFarms(t *testing.T) {
	ts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	readings := []detection.SensorReading{
		sample("f2", ts.Add(2*time.Hour), 1, 0, 0, detection.RegionSouth),
		sample("f1", ts, 2, 0, 0, detection.RegionSouth),
		sample("f2", ts, 3, 0, 0, detection.RegionSouth),
	}

	series := FarmSeries(readings, "f2")
	require.Len(t, series, 2)
	assert.Equal(t, 3.0, series[0].SoilMoisture)
	assert.Equal(t, 1.0, series[1].SoilMoisture)
	assert.Equal(t, 1.0, readings[0].SoilMoisture)

	assert.Equal(t, []string{"f2", "f1"}, Farms(readings))
}
