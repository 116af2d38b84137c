package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"terralink/internal/detection"
)

const namespace = "terralink"

// Recorder exposes detection counters.
type Recorder struct {
	registry *prometheus.Registry
	readings prometheus.Counter
	alerts   *prometheus.CounterVec
	runs     prometheus.Counter
	duration prometheus.Histogram
	farms    prometheus.Gauge
}

// NewRecorder registers the collectors on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_processed_total",
			Help:      "Sensor readings passed through the detector.",
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_detected_total",
			Help:      "Alerts raised by the detector.",
		}, []string{"type", "severity"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detection_runs_total",
			Help:      "Completed detection runs.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detection_duration_seconds",
			Help:      "Wall time of one detection run.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		farms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "farms_observed",
			Help:      "Distinct farms in the last detection run.",
		}),
	}
	r.registry.MustRegister(r.readings, r.alerts, r.runs, r.duration, r.farms)
	return r
}

// ObserveRun records one detection pass.
func (r *Recorder) ObserveRun(readings []detection.SensorReading, alerts []detection.Alert, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.runs.Inc()
	r.readings.Add(float64(len(readings)))
	r.duration.Observe(elapsed.Seconds())

	farms := make(map[string]struct{})
	for _, reading := range readings {
		farms[reading.FarmID] = struct{}{}
	}
	r.farms.Set(float64(len(farms)))

	for _, a := range alerts {
		r.alerts.WithLabelValues(string(a.Type), string(a.Severity)).Inc()
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
