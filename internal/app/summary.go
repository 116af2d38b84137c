package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"terralink/internal/alerting"
	"terralink/internal/analytics"
	"terralink/internal/detection"
)

var (
	severityOrder = []detection.Severity{detection.SeverityHigh, detection.SeverityMedium, detection.SeverityLow}
	typeOrder     = []detection.AlertType{
		detection.AlertDrought,
		detection.AlertWaterStress,
		detection.AlertFlood,
		detection.AlertIrrigationFailure,
	}
)

// Summary prints the overview KPIs, alert breakdown, and bell message.
func (a *App) Summary(ctx context.Context) error {
	svc, res, err := a.evaluate(ctx)
	if err != nil {
		return err
	}

	kpi := analytics.Summarize(res.Readings, res.Alerts)
	out := a.out()

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Avg Soil Moisture\t%s%%\n", kpi.AvgSoilMoisture.StringFixed(1))
	fmt.Fprintf(writer, "Avg Temperature\t%s°C\n", kpi.AvgTemp.StringFixed(1))
	fmt.Fprintf(writer, "Total Rainfall\t%s mm\n", kpi.TotalRainfall.StringFixed(1))
	fmt.Fprintf(writer, "Active Alerts\t%d\n", kpi.ActiveAlerts)
	fmt.Fprintf(writer, "Farms\t%d\n", len(analytics.Farms(res.Readings)))
	writer.Flush()

	fmt.Fprintln(out)
	bySeverity := detection.CountBySeverity(res.Alerts)
	byType := detection.CountByType(res.Alerts)
	writer = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, sev := range severityOrder {
		fmt.Fprintf(writer, "severity %s\t%d\n", sev, bySeverity[sev])
	}
	for _, typ := range typeOrder {
		fmt.Fprintf(writer, "type %s\t%d\n", typ, byType[typ])
	}
	writer.Flush()

	fmt.Fprintln(out)
	writer = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Region\tAvg Soil Moisture")
	for _, avg := range analytics.RegionAverages(res.Readings) {
		fmt.Fprintf(writer, "%s\t%s%%\n", avg.Region, avg.SoilMoisture.String())
	}
	writer.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, alerting.BellMessage(alerting.NewNotification(res.Alerts, a.Config.Alerting.Channels)))

	svc.Notify(ctx, res.Alerts)
	return nil
}
