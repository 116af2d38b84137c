package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"terralink/internal/advisory"
	"terralink/internal/alerting"
	"terralink/internal/detection"
	"terralink/internal/scheduler"
	"terralink/internal/simulator"
)

// Simulate streams readings for the demo farm and raises alerts as they appear.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	simCfg := a.Config.Simulation
	seed := simCfg.Seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}
	steps := simCfg.MaxSteps
	if opts.Steps > 0 {
		steps = opts.Steps
	}

	gen := simulator.New(simulator.Options{
		FarmID:      simCfg.FarmID,
		Region:      simCfg.Region,
		Crop:        simCfg.Crop,
		InitialSoil: simCfg.InitialSoil,
		InitialTemp: simCfg.InitialTemp,
		Seed:        seed,
	})
	sched := scheduler.New(scheduler.Options{
		Interval:  simCfg.Interval,
		MaxSteps:  steps,
		Immediate: true,
	}, a.Logger)
	svc := a.newService(nil)

	a.serveMetrics(ctx)

	var (
		series []detection.SensorReading
		known  []detection.Alert
	)
	out := a.out()

	a.Logger.Info().
		Str("farm", simCfg.FarmID).
		Dur("interval", simCfg.Interval).
		Int("max_steps", steps).
		Msg("starting simulation")

	err := sched.Run(ctx, func(ctx context.Context, step int, at time.Time) error {
		reading := gen.Next(at)
		series = append(series, reading)

		// known stays in announcement order so the bell's latest alert is
		// the newest one, and earlier alerts keep their IDs
		fresh := svc.Advance(series, known)
		known = append(known, fresh...)

		status := advisory.Classify(reading)
		fmt.Fprintf(out, "%s  step %d  soil %.1f%%  temp %.1f°C  rain %.1f mm  %s\n",
			reading.Timestamp.Format(time.RFC3339), step,
			reading.SoilMoisture, reading.Temperature, reading.Rainfall, status.Text())

		for _, alert := range fresh {
			fmt.Fprintln(out, "  "+alerting.NewAlertMessage(alert))
		}
		if len(fresh) > 0 {
			svc.Notify(ctx, known)
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Fprintln(out, alerting.BellMessage(alerting.NewNotification(known, a.Config.Alerting.Channels)))
	a.Logger.Info().Int("readings", len(series)).Int("alerts", len(known)).Msg("simulation stopped")
	return nil
}

// serveMetrics starts the Prometheus endpoint in the background when configured.
func (a *App) serveMetrics(ctx context.Context) {
	addr := a.Config.Metrics.ListenAddr
	if addr == "" {
		return
	}
	go func() {
		if err := a.recorder.Serve(ctx, addr, a.Logger); err != nil {
			a.Logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
}
