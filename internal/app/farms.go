package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"terralink/internal/advisory"
	"terralink/internal/analytics"
	"terralink/internal/detection"
)

// Farms lists every farm with its region, crop and current status.
func (a *App) Farms(ctx context.Context) error {
	_, res, err := a.evaluate(ctx)
	if err != nil {
		return err
	}

	alertsByFarm := make(map[string]int)
	for _, alert := range res.Alerts {
		alertsByFarm[alert.FarmID]++
	}

	writer := tabwriter.NewWriter(a.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Farm\tRegion\tCrop\tStatus\tAlerts")
	for _, id := range analytics.Farms(res.Readings) {
		series := analytics.FarmSeries(res.Readings, id)
		if len(series) == 0 {
			continue
		}
		latest := series[len(series)-1]
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%d\n",
			sanitizeInline(id), latest.Region, latest.Crop, farmStatus(latest), alertsByFarm[id])
	}
	return writer.Flush()
}

func farmStatus(r detection.SensorReading) string {
	status := advisory.Classify(r)
	return fmt.Sprintf("%s (%s)", status, status.Text())
}
