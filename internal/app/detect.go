package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"terralink/internal/advisory"
	"terralink/internal/detection"
)

// Detect prints the alerts raised over the configured dataset.
func (a *App) Detect(ctx context.Context, opts DetectOptions) error {
	svc, res, err := a.evaluate(ctx)
	if err != nil {
		return err
	}

	alerts := res.Alerts
	if opts.FarmID != "" {
		alerts = detection.ForFarm(alerts, opts.FarmID)
	}

	if opts.JSON {
		encoder := json.NewEncoder(a.out())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(alerts); err != nil {
			return fmt.Errorf("encode alerts: %w", err)
		}
	} else {
		writeAlertTable(a.out(), alerts)
	}

	svc.Notify(ctx, alerts)
	return nil
}

func writeAlertTable(out io.Writer, alerts []detection.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(out, "No alerts detected in the current sample.")
		return
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Type\tSeverity\tFarm\tTriggered At (UTC)\tResolved\tMicroinsurance Status")
	for _, alert := range alerts {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			alert.Type,
			alert.Severity,
			sanitizeInline(alert.FarmID),
			alert.TriggeredAt.UTC().Format(time.RFC3339),
			yesNo(alert.Resolved),
			advisory.StatusLabel(alert.MicroinsuranceStatus),
		)
	}
	writer.Flush()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
