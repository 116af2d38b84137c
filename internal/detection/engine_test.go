package detection

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func reading(t *testing.T, farm, ts string, soil, temp, rain float64) SensorReading {
	t.Helper()
	return SensorReading{
		ID:           farm + "@" + ts,
		FarmID:       farm,
		Timestamp:    mustTime(t, ts),
		Temperature:  temp,
		SoilMoisture: soil,
		Rainfall:     rain,
		Region:       RegionCenter,
		Crop:         CropOlives,
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("alert-%d", n)
	}
}

func stripIDs(alerts []Alert) []Alert {
	out := make([]Alert, len(alerts))
	for i, a := range alerts {
		a.ID = ""
		out[i] = a
	}
	return out
}

func TestDetectEmptyInput(t *testing.T) {
	alerts := Detect(nil, DefaultThresholds())
	require.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestDroughtOnsetFiresAtSecondLowReading(t *testing.T) {
	readings := []SensorReading{
		reading(t, "f1", "2024-06-01T00:00:00Z", 20, 25, 0),
		reading(t, "f1", "2024-06-02T00:00:00Z", 10, 25, 0),
		reading(t, "f1", "2024-06-03T00:00:00Z", 8, 25, 0),
		reading(t, "f1", "2024-06-04T00:00:00Z", 15, 25, 0),
	}

	alerts := Detect(readings, DefaultThresholds())
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, AlertDrought, a.Type)
	assert.Equal(t, SeverityMedium, a.Severity)
	assert.Equal(t, InsurancePending, a.MicroinsuranceStatus)
	assert.Equal(t, readings[2].Timestamp, a.TriggeredAt)
	assert.Equal(t, "f1", a.FarmID)
	assert.False(t, a.Resolved)
}

func TestDroughtOnsetOncePerRun(t *testing.T) {
	soils := []float64{10, 9, 8, 7, 20, 11, 10}
	readings := make([]SensorReading, 0, len(soils))
	for i, s := range soils {
		readings = append(readings, reading(t, "f1", fmt.Sprintf("2024-06-%02dT00:00:00Z", i+1), s, 25, 0))
	}

	alerts := Detect(readings, DefaultThresholds())
	require.Len(t, alerts, 2)
	assert.Equal(t, readings[1].Timestamp, alerts[0].TriggeredAt)
	assert.Equal(t, readings[6].Timestamp, alerts[1].TriggeredAt)
}

func TestDroughtThresholdIsExclusive(t *testing.T) {
	readings := []SensorReading{
		reading(t, "f1", "2024-06-01T00:00:00Z", 12, 25, 0),
		reading(t, "f1", "2024-06-02T00:00:00Z", 12, 25, 0),
	}
	assert.Empty(t, Detect(readings, DefaultThresholds()))
}

func TestWaterStressSeverity(t *testing.T) {
	cases := []struct {
		name     string
		prev     float64
		cur      float64
		temp     float64
		rain     float64
		want     Severity
		wantNone bool
	}{
		{name: "large drop is high", prev: 20, cur: 13, temp: 33, want: SeverityHigh},
		{name: "drop of exactly five is high", prev: 20, cur: 15, temp: 33, want: SeverityHigh},
		{name: "moderate drop is medium", prev: 20, cur: 17, temp: 33, want: SeverityMedium},
		{name: "drop of exactly two is medium", prev: 20, cur: 18, temp: 32, want: SeverityMedium},
		{name: "small drop ignored", prev: 20, cur: 18.5, temp: 35, wantNone: true},
		{name: "cool day ignored", prev: 20, cur: 13, temp: 31.9, wantNone: true},
		{name: "any rain ignored", prev: 20, cur: 13, temp: 35, rain: 0.1, wantNone: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			readings := []SensorReading{
				reading(t, "f1", "2024-06-01T00:00:00Z", tc.prev, 25, 0),
				reading(t, "f1", "2024-06-02T00:00:00Z", tc.cur, tc.temp, tc.rain),
			}
			alerts := Detect(readings, DefaultThresholds())
			if tc.wantNone {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, AlertWaterStress, alerts[0].Type)
			assert.Equal(t, tc.want, alerts[0].Severity)
			assert.Equal(t, InsurancePending, alerts[0].MicroinsuranceStatus)
			assert.Equal(t, readings[1].Timestamp, alerts[0].TriggeredAt)
		})
	}
}

func TestFloodPerQualifyingReading(t *testing.T) {
	single := []SensorReading{reading(t, "f1", "2024-06-01T00:00:00Z", 32, 20, 45)}
	alerts := Detect(single, DefaultThresholds())
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertFlood, alerts[0].Type)
	assert.Equal(t, SeverityMedium, alerts[0].Severity)
	assert.Equal(t, InsurancePending, alerts[0].MicroinsuranceStatus)

	// the third reading misses the soil floor but trips rule 4 after rain
	series := []SensorReading{
		reading(t, "f2", "2024-06-01T00:00:00Z", 30, 20, 40),
		reading(t, "f2", "2024-06-02T00:00:00Z", 31, 20, 41),
		reading(t, "f2", "2024-06-03T00:00:00Z", 29.9, 20, 50),
	}
	alerts = Detect(series, DefaultThresholds())
	require.Len(t, alerts, 3)
	assert.Equal(t, AlertFlood, alerts[0].Type)
	assert.Equal(t, AlertFlood, alerts[1].Type)
	assert.Equal(t, AlertIrrigationFailure, alerts[2].Type)
	assert.Equal(t, series[2].Timestamp, alerts[2].TriggeredAt)
}

func TestIrrigationFailure(t *testing.T) {
	readings := []SensorReading{
		reading(t, "f1", "2024-06-01T00:00:00Z", 20, 20, 6),
		reading(t, "f1", "2024-06-02T00:00:00Z", 20, 20, 0),
	}
	alerts := Detect(readings, DefaultThresholds())
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertIrrigationFailure, alerts[0].Type)
	assert.Equal(t, SeverityLow, alerts[0].Severity)
	assert.Equal(t, InsuranceNone, alerts[0].MicroinsuranceStatus)
	assert.Equal(t, readings[1].Timestamp, alerts[0].TriggeredAt)

	readings[0].Rainfall = 5
	assert.Empty(t, Detect(readings, DefaultThresholds()))
}

func TestSingleReadingNeverPairs(t *testing.T) {
	readings := []SensorReading{reading(t, "f1", "2024-06-01T00:00:00Z", 5, 40, 50)}
	for _, a := range Detect(readings, DefaultThresholds()) {
		assert.NotEqual(t, AlertWaterStress, a.Type)
		assert.NotEqual(t, AlertIrrigationFailure, a.Type)
	}
}

func TestOrderingRulesThenFarms(t *testing.T) {
	b1 := reading(t, "f-b", "2024-06-01T00:00:00Z", 35, 20, 45)
	b2 := reading(t, "f-b", "2024-06-02T00:00:00Z", 10, 20, 0)
	b3 := reading(t, "f-b", "2024-06-03T00:00:00Z", 9, 20, 0)
	a1 := reading(t, "f-a", "2024-05-01T00:00:00Z", 50, 20, 50)

	d := NewDetector(DefaultThresholds())
	d.NewID = sequentialIDs()
	alerts := d.Detect([]SensorReading{b3, a1, b1, b2})

	require.Len(t, alerts, 4)
	got := make([]string, len(alerts))
	for i, a := range alerts {
		got[i] = a.FarmID + ":" + string(a.Type)
	}
	assert.Equal(t, []string{
		"f-b:drought",
		"f-b:flood",
		"f-b:irrigation_failure",
		"f-a:flood",
	}, got)
	assert.Equal(t, b3.Timestamp, alerts[0].TriggeredAt)
	assert.Equal(t, b1.Timestamp, alerts[1].TriggeredAt)
	assert.Equal(t, b2.Timestamp, alerts[2].TriggeredAt)
	assert.Equal(t, "alert-1", alerts[0].ID)
	assert.Equal(t, "alert-4", alerts[3].ID)
}

func TestInputOrderDoesNotChangeContent(t *testing.T) {
	readings := []SensorReading{
		reading(t, "f1", "2024-06-01T00:00:00Z", 20, 25, 8),
		reading(t, "f1", "2024-06-02T00:00:00Z", 13, 34, 0),
		reading(t, "f1", "2024-06-03T00:00:00Z", 10, 35, 0),
		reading(t, "f1", "2024-06-04T00:00:00Z", 35, 20, 60),
		reading(t, "f1", "2024-06-05T00:00:00Z", 30, 20, 0),
	}
	reversed := make([]SensorReading, len(readings))
	for i, r := range readings {
		reversed[len(readings)-1-i] = r
	}

	forward := Detect(readings, DefaultThresholds())
	backward := Detect(reversed, DefaultThresholds())
	require.NotEmpty(t, forward)
	assert.Equal(t, stripIDs(forward), stripIDs(backward))
}

func TestEqualTimestampsBreakTiesByID(t *testing.T) {
	a := reading(t, "f1", "2024-06-01T00:00:00Z", 20, 33, 0)
	a.ID = "r-a"
	b := reading(t, "f1", "2024-06-01T00:00:00Z", 15, 33, 0)
	b.ID = "r-b"

	forward := Detect([]SensorReading{a, b}, DefaultThresholds())
	backward := Detect([]SensorReading{b, a}, DefaultThresholds())

	require.Len(t, forward, 1)
	assert.Equal(t, AlertWaterStress, forward[0].Type)
	assert.Equal(t, SeverityHigh, forward[0].Severity)
	assert.Equal(t, stripIDs(forward), stripIDs(backward))
}

func TestDetectIsIdempotentExceptIDs(t *testing.T) {
	readings := []SensorReading{
		reading(t, "f1", "2024-06-01T00:00:00Z", 11, 25, 0),
		reading(t, "f1", "2024-06-02T00:00:00Z", 10, 25, 0),
		reading(t, "f2", "2024-06-01T00:00:00Z", 40, 25, 45),
	}
	first := Detect(readings, DefaultThresholds())
	second := Detect(readings, DefaultThresholds())

	require.Len(t, first, 2)
	assert.Equal(t, stripIDs(first), stripIDs(second))

	seen := make(map[string]bool)
	for _, a := range append(first, second...) {
		assert.NotEmpty(t, a.ID)
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
	}
}

func TestTimestampsCompareAsInstants(t *testing.T) {
	// 10:00+02:00 is 08:00Z and sorts before 09:00Z even though it does not lexically
	earlier := reading(t, "f1", "2024-06-01T10:00:00+02:00", 10, 25, 0)
	later := reading(t, "f1", "2024-06-01T09:00:00Z", 9, 25, 0)

	alerts := Detect([]SensorReading{later, earlier}, DefaultThresholds())
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].TriggeredAt.Equal(later.Timestamp))
}

func TestCustomThresholds(t *testing.T) {
	readings := []SensorReading{reading(t, "f1", "2024-06-01T00:00:00Z", 32, 20, 25)}
	assert.Empty(t, Detect(readings, DefaultThresholds()))

	custom := Thresholds{DroughtSoilPct: 12, HighTempC: 32, FloodRainMmDay: 20}
	alerts := Detect(readings, custom)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertFlood, alerts[0].Type)
}

func TestDetectDoesNotReorderCallerSlice(t *testing.T) {
	readings := []SensorReading{
		reading(t, "f1", "2024-06-02T00:00:00Z", 10, 25, 0),
		reading(t, "f1", "2024-06-01T00:00:00Z", 11, 25, 0),
	}
	Detect(readings, DefaultThresholds())
	assert.Equal(t, "f1@2024-06-02T00:00:00Z", readings[0].ID)
}
