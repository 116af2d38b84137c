package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terralink/internal/detection"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileLoadJSON(t *testing.T) {
	path := writeFile(t, "readings.json", `[
  {"id":"r1","farmId":"f-tn-01","timestamp":"2025-07-01T06:00:00Z","temperature":31.5,"soilMoisture":14.2,"rainfall":0,"region":"Center","crop":"Olives"},
  {"id":"r2","farmId":"f-tn-01","timestamp":"2025-07-02T06:00:00+01:00","temperature":33,"soilMoisture":11,"rainfall":0,"region":"Center","crop":"Olives"}
]`)

	readings, err := NewFile(FileOptions{Path: path}, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, "f-tn-01", readings[0].FarmID)
	assert.Equal(t, detection.RegionCenter, readings[0].Region)
	assert.Equal(t, detection.CropOlives, readings[0].Crop)
	assert.InDelta(t, 14.2, readings[0].SoilMoisture, 1e-9)
	assert.True(t, readings[1].Timestamp.Equal(time.Date(2025, 7, 2, 5, 0, 0, 0, time.UTC)))
}

func TestFileLoadCSV(t *testing.T) {
	path := writeFile(t, "readings.csv", "id,farmId,timestamp,temperature,soilMoisture,rainfall,region,crop\n"+
		"r1,f-tn-02,2025-07-01T06:00:00Z,28,25,12.5,North,Cereals\n"+
		"r2,f-tn-02,2025-07-02T06:00:00,29,24,0,North,Cereals\n")

	readings, err := NewFile(FileOptions{Path: path}, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.InDelta(t, 12.5, readings[0].Rainfall, 1e-9)
	assert.Equal(t, time.UTC, readings[1].Timestamp.Location())
}

func TestFileFormatOverride(t *testing.T) {
	path := writeFile(t, "readings.txt", `[{"id":"r1","farmId":"f1","timestamp":"2025-07-01T06:00:00Z","temperature":1,"soilMoisture":1,"rainfall":1,"region":"South","crop":"Dates"}]`)

	_, err := NewFile(FileOptions{Path: path}, zerolog.Nop()).Load(context.Background())
	require.Error(t, err)

	readings, err := NewFile(FileOptions{Path: path, Format: "JSON"}, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestFileValidationReportsEveryRow(t *testing.T) {
	path := writeFile(t, "bad.json", `[
  {"id":"ok","farmId":"f1","timestamp":"2025-07-01T06:00:00Z","temperature":1,"soilMoisture":1,"rainfall":1,"region":"South","crop":"Dates"},
  {"id":"b1","farmId":"","timestamp":"yesterday","temperature":1,"soilMoisture":1,"rainfall":1,"region":"West","crop":"Dates"},
  {"id":"b2","farmId":"f2","timestamp":"2025-07-01T06:00:00Z","temperature":1,"soilMoisture":1,"rainfall":1,"region":"North","crop":"Rice"}
]`)

	_, err := NewFile(FileOptions{Path: path}, zerolog.Nop()).Load(context.Background())
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `row 2 (id "b1")`)
	assert.Contains(t, msg, "farmId is empty")
	assert.Contains(t, msg, `unparseable timestamp "yesterday"`)
	assert.Contains(t, msg, `unknown region "West"`)
	assert.Contains(t, msg, `row 3 (id "b2")`)
	assert.Contains(t, msg, `unknown crop "Rice"`)
}

func TestFileCSVRejectsNonFinite(t *testing.T) {
	path := writeFile(t, "nan.csv", "id,farmId,timestamp,temperature,soilMoisture,rainfall,region,crop\n"+
		"r1,f1,2025-07-01T06:00:00Z,NaN,25,0,North,Cereals\n")

	_, err := NewFile(FileOptions{Path: path}, zerolog.Nop()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature is not finite")
}

func TestFileCSVMissingColumn(t *testing.T) {
	path := writeFile(t, "short.csv", "id,farmId,timestamp\nr1,f1,2025-07-01T06:00:00Z\n")

	_, err := NewFile(FileOptions{Path: path}, zerolog.Nop()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "temperature"`)
}

func TestFileEmptyDataset(t *testing.T) {
	path := writeFile(t, "empty.json", `[]`)

	_, err := NewFile(FileOptions{Path: path}, zerolog.Nop()).Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestFileMissingPath(t *testing.T) {
	_, err := NewFile(FileOptions{}, zerolog.Nop()).Load(context.Background())
	assert.Error(t, err)
}

func TestStaticLoadCopies(t *testing.T) {
	src := Static{{ID: "r1", FarmID: "f1"}}
	out, err := src.Load(context.Background())
	require.NoError(t, err)
	out[0].FarmID = "changed"
	assert.Equal(t, "f1", src[0].FarmID)
}
