package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"terralink/internal/alerting"
	"terralink/internal/config"
	"terralink/internal/dataset"
	"terralink/internal/detection"
	"terralink/internal/metrics"
)

// Result is one detection pass.
type Result struct {
	Readings []detection.SensorReading
	Alerts   []detection.Alert
}

// Service orchestrates loading, detection, metrics, and notification.
type Service struct {
	source   dataset.Source
	detector *detection.Detector
	recorder *metrics.Recorder
	notifier alerting.Notifier
	logger   zerolog.Logger

	channels []string
	alertsOn bool
}

// New constructs the detection service. recorder and notifier may be nil.
func New(cfg *config.Config, source dataset.Source, recorder *metrics.Recorder, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		source:   source,
		detector: detection.NewDetector(cfg.Detection),
		recorder: recorder,
		notifier: notifier,
		logger:   logger.With().Str("component", "service").Logger(),
		channels: cfg.Alerting.Channels,
		alertsOn: cfg.Alerting.Enabled,
	}
}

// Detector exposes the configured detector.
func (s *Service) Detector() *detection.Detector {
	return s.detector
}

// Evaluate loads the dataset and runs detection over it.
func (s *Service) Evaluate(ctx context.Context) (Result, error) {
	if s.source == nil {
		return Result{}, fmt.Errorf("dataset source not configured")
	}
	readings, err := s.source.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load readings: %w", err)
	}
	return s.Analyze(readings), nil
}

// Analyze runs detection over readings already in memory.
func (s *Service) Analyze(readings []detection.SensorReading) Result {
	started := time.Now()
	alerts := s.detector.Detect(readings)
	elapsed := time.Since(started)

	s.recorder.ObserveRun(readings, alerts, elapsed)

	counts := detection.CountByType(alerts)
	s.logger.Debug().
		Int("readings", len(readings)).
		Int("alerts", len(alerts)).
		Int(string(detection.AlertDrought), counts[detection.AlertDrought]).
		Int(string(detection.AlertWaterStress), counts[detection.AlertWaterStress]).
		Int(string(detection.AlertFlood), counts[detection.AlertFlood]).
		Int(string(detection.AlertIrrigationFailure), counts[detection.AlertIrrigationFailure]).
		Dur("elapsed", elapsed).
		Msg("detection completed")

	return Result{Readings: readings, Alerts: alerts}
}

// Advance re-runs detection over a series that grew by one reading and
// returns the alerts known does not hold yet. Metrics count only the newest
// reading and the returned alerts.
func (s *Service) Advance(series []detection.SensorReading, known []detection.Alert) []detection.Alert {
	if len(series) == 0 {
		return nil
	}
	started := time.Now()
	fresh := detection.Unseen(known, s.detector.Detect(series))
	elapsed := time.Since(started)

	s.recorder.ObserveRun(series[len(series)-1:], fresh, elapsed)
	s.logger.Debug().
		Int("series", len(series)).
		Int("new_alerts", len(fresh)).
		Dur("elapsed", elapsed).
		Msg("incremental detection completed")
	return fresh
}

// Notify sends the bell notification for alerts. Delivery failures are
// logged and swallowed.
func (s *Service) Notify(ctx context.Context, alerts []detection.Alert) {
	if !s.alertsOn || s.notifier == nil || len(alerts) == 0 {
		return
	}
	note := alerting.NewNotification(alerts, s.channels)
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Int("alerts", len(alerts)).Msg("failed to dispatch alert notification")
	}
}
