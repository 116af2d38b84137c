package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"terralink/internal/detection"
)

// ErrEmptyDataset is returned when a source yields no rows at all.
var ErrEmptyDataset = errors.New("dataset: no readings")

// Source yields the sensor readings fed to the detector.
type Source interface {
	Load(ctx context.Context) ([]detection.SensorReading, error)
}

// Static serves a fixed in-memory set of readings.
type Static []detection.SensorReading

// Load returns a copy of the readings.
func (s Static) Load(ctx context.Context) ([]detection.SensorReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]detection.SensorReading, len(s))
	copy(out, s)
	return out, nil
}

// record mirrors one row of the fixture before validation.
type record struct {
	ID           string  `json:"id"`
	FarmID       string  `json:"farmId"`
	Timestamp    string  `json:"timestamp"`
	Temperature  float64 `json:"temperature"`
	SoilMoisture float64 `json:"soilMoisture"`
	Rainfall     float64 `json:"rainfall"`
	Region       string  `json:"region"`
	Crop         string  `json:"crop"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts RFC 3339 instants. Zone-less values are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

func (r record) toReading() (detection.SensorReading, error) {
	var problems []error
	if strings.TrimSpace(r.FarmID) == "" {
		problems = append(problems, errors.New("farmId is empty"))
	}
	ts, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		problems = append(problems, err)
	}
	for name, v := range map[string]float64{
		"temperature":  r.Temperature,
		"soilMoisture": r.SoilMoisture,
		"rainfall":     r.Rainfall,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, fmt.Errorf("%s is not finite", name))
		}
	}
	region := detection.Region(r.Region)
	if !region.Valid() {
		problems = append(problems, fmt.Errorf("unknown region %q", r.Region))
	}
	crop := detection.Crop(r.Crop)
	if !crop.Valid() {
		problems = append(problems, fmt.Errorf("unknown crop %q", r.Crop))
	}
	if len(problems) > 0 {
		return detection.SensorReading{}, errors.Join(problems...)
	}

	return detection.SensorReading{
		ID:           r.ID,
		FarmID:       r.FarmID,
		Timestamp:    ts,
		Temperature:  r.Temperature,
		SoilMoisture: r.SoilMoisture,
		Rainfall:     r.Rainfall,
		Region:       region,
		Crop:         crop,
	}, nil
}

// validate converts records, collecting every bad row into one error.
func validate(records []record) ([]detection.SensorReading, error) {
	readings := make([]detection.SensorReading, 0, len(records))
	var problems []error
	for i, rec := range records {
		reading, err := rec.toReading()
		if err != nil {
			problems = append(problems, fmt.Errorf("row %d (id %q): %w", i+1, rec.ID, err))
			continue
		}
		readings = append(readings, reading)
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return readings, nil
}
