package app

import (
	"context"
	"errors"
	"fmt"

	"terralink/internal/advisory"
	"terralink/internal/analytics"
	"terralink/internal/detection"
)

// Farm prints one farm's latest values, status, advice, and alerts.
func (a *App) Farm(ctx context.Context, opts FarmOptions) error {
	if opts.FarmID == "" {
		return errors.New("farm id is required")
	}

	_, res, err := a.evaluate(ctx)
	if err != nil {
		return err
	}

	series := analytics.FarmSeries(res.Readings, opts.FarmID)
	if len(series) == 0 {
		return fmt.Errorf("no sensor data found for farm %s", opts.FarmID)
	}

	latest := series[len(series)-1]
	status := advisory.Classify(latest)
	advice := advisory.Advise(latest)
	out := a.out()

	fmt.Fprintf(out, "Farm %s\n", opts.FarmID)
	fmt.Fprintf(out, "Region: %s  Crop: %s  Readings: %d\n\n", latest.Region, latest.Crop, len(series))
	fmt.Fprintf(out, "Latest soil moisture: %.1f%%\n", latest.SoilMoisture)
	fmt.Fprintf(out, "Latest temperature:   %.1f°C\n", latest.Temperature)
	fmt.Fprintf(out, "Latest rainfall:      %.1f mm\n", latest.Rainfall)
	fmt.Fprintf(out, "Status:               %s (%s)\n\n", status.Text(), status)

	fmt.Fprintln(out, "Smart irrigation advice")
	fmt.Fprintf(out, "  %s\n", advice.Main)
	for _, line := range advice.Extra {
		fmt.Fprintf(out, "  - %s\n", line)
	}
	fmt.Fprintln(out)

	farmAlerts := detection.ForFarm(res.Alerts, opts.FarmID)
	if len(farmAlerts) == 0 {
		fmt.Fprintln(out, "No alerts have been triggered yet for this farm in the sample.")
	} else {
		writeAlertTable(out, farmAlerts)
	}

	if opts.PNGPath != "" {
		if err := writeFarmPNG(opts.PNGPath, opts.FarmID, series, a.Config.Export.ChartWidth, a.Config.Export.ChartHeight); err != nil {
			return fmt.Errorf("render farm chart: %w", err)
		}
		a.Logger.Info().Str("path", opts.PNGPath).Str("farm", opts.FarmID).Msg("farm chart written")
	}
	return nil
}
