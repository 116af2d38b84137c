package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/xuri/excelize/v2"

	"terralink/internal/advisory"
	"terralink/internal/analytics"
	"terralink/internal/detection"
)

const alertSheet = "Alerts"

var alertHeader = []string{"id", "farm_id", "type", "severity", "triggered_at", "resolved", "microinsurance_status", "microinsurance_label"}

// Export writes alerts as CSV/XLSX and the daily aggregate chart as PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.XLSXPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv, --xlsx or --png must be provided")
	}

	_, res, err := a.evaluate(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info().Int("readings", len(res.Readings)).Int("alerts", len(res.Alerts)).Msg("exporting")

	if opts.CSVPath != "" {
		if err := writeAlertsCSV(opts.CSVPath, res.Alerts); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	if opts.XLSXPath != "" {
		if err := writeAlertsXLSX(opts.XLSXPath, res.Alerts); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	if opts.PNGPath != "" {
		days := analytics.Daily(res.Readings)
		if err := writeDailyPNG(opts.PNGPath, days, a.Config.Export.ChartWidth, a.Config.Export.ChartHeight); err != nil {
			return fmt.Errorf("write png: %w", err)
		}
	}

	return nil
}

func alertRecord(alert detection.Alert) []string {
	return []string{
		alert.ID,
		alert.FarmID,
		string(alert.Type),
		string(alert.Severity),
		alert.TriggeredAt.UTC().Format(time.RFC3339),
		strconv.FormatBool(alert.Resolved),
		string(alert.MicroinsuranceStatus),
		advisory.StatusLabel(alert.MicroinsuranceStatus),
	}
}

func writeAlertsCSV(path string, alerts []detection.Alert) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(alertHeader); err != nil {
		return err
	}
	for _, alert := range alerts {
		if err := writer.Write(alertRecord(alert)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeAlertsXLSX(path string, alerts []detection.Alert) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(alertSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E3F4E8"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for col, header := range alertHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(alertSheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(alertSheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, alert := range alerts {
		for col, value := range alertRecord(alert) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(alertSheet, cell, value); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(alertSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	return f.SaveAs(path)
}

func writeDailyPNG(path string, days []analytics.DayAggregate, width, height int) error {
	if len(days) == 0 {
		return errors.New("no readings to chart")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(days))
	soil := make([]float64, len(days))
	temp := make([]float64, len(days))
	rain := make([]float64, len(days))
	for i, day := range days {
		ts, err := time.Parse("2006-01-02", day.Day)
		if err != nil {
			return err
		}
		x[i] = ts
		soil[i] = day.SoilMoisture.InexactFloat64()
		temp[i] = day.Temperature.InexactFloat64()
		rain[i] = day.Rainfall.InexactFloat64()
	}
	if len(days) == 1 {
		x = append(x, x[0].Add(24*time.Hour))
		soil = append(soil, soil[0])
		temp = append(temp, temp[0])
		rain = append(rain, rain[0])
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Daily sum (soil %, °C)",
			Range: axisRange(soil, temp),
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Rainfall (mm)",
			Range: axisRange(rain),
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: "Soil moisture", XValues: x, YValues: soil},
			chart.TimeSeries{Name: "Temperature", XValues: x, YValues: temp},
			chart.TimeSeries{Name: "Rainfall", XValues: x, YValues: rain, YAxis: chart.YAxisSecondary},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, graph)
}

func writeFarmPNG(path, farmID string, series []detection.SensorReading, width, height int) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(series))
	soil := make([]float64, len(series))
	temp := make([]float64, len(series))
	for i, r := range series {
		x[i] = r.Timestamp
		soil[i] = r.SoilMoisture
		temp[i] = r.Temperature
	}
	// go-chart refuses a zero-width x range
	if len(series) == 1 {
		x = append(x, x[0].Add(time.Hour))
		soil = append(soil, soil[0])
		temp = append(temp, temp[0])
	}

	oneDecimal := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Title:  "Farm " + farmID,
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Soil moisture (%)",
			Range:          axisRange(soil),
			ValueFormatter: oneDecimal,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Temperature (°C)",
			Range:          axisRange(temp),
			ValueFormatter: oneDecimal,
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: "Soil moisture", XValues: x, YValues: soil},
			chart.TimeSeries{Name: "Temperature", XValues: x, YValues: temp, YAxis: chart.YAxisSecondary},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, graph)
}

// axisRange spans every value, widened by one unit when the series is flat.
func axisRange(series ...[]float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, values := range series {
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func renderPNG(path string, graph chart.Chart) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
