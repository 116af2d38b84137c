package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"terralink/internal/detection"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var csvColumns = []string{"id", "farmId", "timestamp", "temperature", "soilMoisture", "rainfall", "region", "crop"}

// FileOptions parameterise the file source.
type FileOptions struct {
	Path string
	// Format forces json or csv. Empty means infer from the extension.
	Format string
}

// File loads readings from a JSON array or CSV fixture on disk.
type File struct {
	opts   FileOptions
	logger zerolog.Logger
}

// NewFile constructs a file-backed source.
func NewFile(opts FileOptions, logger zerolog.Logger) *File {
	return &File{opts: opts, logger: logger.With().Str("component", "dataset").Logger()}
}

// Path returns the file being read.
func (f *File) Path() string {
	return f.opts.Path
}

// Load reads, decodes and validates the whole file.
func (f *File) Load(ctx context.Context) ([]detection.SensorReading, error) {
	if f.opts.Path == "" {
		return nil, errors.New("dataset path not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := f.format()
	if err != nil {
		return nil, err
	}

	file, err := os.Open(f.opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	var records []record
	switch format {
	case FormatJSON:
		records, err = decodeJSON(file)
	case FormatCSV:
		records, err = decodeCSV(file)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s dataset %s: %w", format, f.opts.Path, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	readings, err := validate(records)
	if err != nil {
		return nil, fmt.Errorf("validate dataset %s: %w", f.opts.Path, err)
	}

	f.logger.Debug().Str("path", f.opts.Path).Int("readings", len(readings)).Msg("dataset loaded")
	return readings, nil
}

func (f *File) format() (string, error) {
	format := strings.ToLower(strings.TrimSpace(f.opts.Format))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(f.opts.Path)), ".")
	}
	switch format {
	case FormatJSON, FormatCSV:
		return format, nil
	}
	return "", fmt.Errorf("unsupported dataset format %q", format)
}

func decodeJSON(r io.Reader) ([]record, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeCSV(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	records := make([]record, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		field := func(name string) string {
			return strings.TrimSpace(row[index[name]])
		}
		number := func(name string) (float64, error) {
			v, err := strconv.ParseFloat(field(name), 64)
			if err != nil {
				return 0, fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			return v, nil
		}

		rec := record{
			ID:        field("id"),
			FarmID:    field("farmId"),
			Timestamp: field("timestamp"),
			Region:    field("region"),
			Crop:      field("crop"),
		}
		if rec.Temperature, err = number("temperature"); err != nil {
			return nil, err
		}
		if rec.SoilMoisture, err = number("soilMoisture"); err != nil {
			return nil, err
		}
		if rec.Rainfall, err = number("rainfall"); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

var _ Source = (*File)(nil)
var _ Source = Static(nil)
