// Package simulator produces a live random-walk series for one demo farm.
package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"terralink/internal/detection"
)

// Random-walk tunables. Bounds keep the demo farm within a plausible range.
const (
	rainProbability = 0.2
	maxRainEventMm  = 10.0
	tempJitterC     = 1.5
	minTempC        = 15.0
	maxTempC        = 40.0
	maxSoilGainPct  = 4.0
	maxSoilLossPct  = 2.0
	minSoilPct      = 5.0
	maxSoilPct      = 40.0
)

// Options seed the generator.
type Options struct {
	FarmID      string
	Region      detection.Region
	Crop        detection.Crop
	InitialSoil float64
	InitialTemp float64
	// Seed makes runs reproducible. Zero seeds from the clock.
	Seed int64
}

// Generator holds the current state of the simulated station.
type Generator struct {
	mu       sync.Mutex
	opts     Options
	rng      *rand.Rand
	soil     float64
	temp     float64
	rain     float64
	sequence int
}

// New constructs a generator at its initial state.
func New(opts Options) *Generator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		opts: opts,
		rng:  rand.New(rand.NewSource(seed)),
		soil: opts.InitialSoil,
		temp: opts.InitialTemp,
	}
}

// Next advances the walk one step and returns the reading stamped at.
func (g *Generator) Next(at time.Time) detection.SensorReading {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rain = 0
	if g.rng.Float64() < rainProbability {
		g.rain = round1(g.rng.Float64() * maxRainEventMm)
	}

	delta := (g.rng.Float64() - 0.5) * tempJitterC
	g.temp = round1(clamp(g.temp+delta, minTempC, maxTempC))

	// soil wetting is drawn independently of the rainfall figure
	var soilDelta float64
	if g.rng.Float64() < rainProbability {
		soilDelta = round1(g.rng.Float64() * maxSoilGainPct)
	} else {
		soilDelta = -round1(g.rng.Float64() * maxSoilLossPct)
	}
	g.soil = round1(clamp(g.soil+soilDelta, minSoilPct, maxSoilPct))

	g.sequence++
	return detection.SensorReading{
		ID:           fmt.Sprintf("%s-%06d", g.opts.FarmID, g.sequence),
		FarmID:       g.opts.FarmID,
		Timestamp:    at.UTC(),
		Temperature:  g.temp,
		SoilMoisture: g.soil,
		Rainfall:     g.rain,
		Region:       g.opts.Region,
		Crop:         g.opts.Crop,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
