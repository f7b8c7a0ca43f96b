package calculate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metro-costs/connectors/config"
	ccsv "metro-costs/connectors/csv"
	settings "metro-costs/domain/config"
	"metro-costs/domain/pipeline"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.Default()
	c.Paths.RawDir = filepath.Join("..", "..", "testdata", "raw")
	c.Paths.OutputDir = filepath.Join(t.TempDir(), "output")
	c.Metro.Extrapolate = settings.Extrapolate{FromYear: 2017, Years: []int{2021}}
	require.NoError(t, c.Validate())
	return &c
}

func TestCalculateWritesOutputs(t *testing.T) {
	cfg := testConfig(t)
	res, err := Calculate(context.Background(), cfg, pipeline.SelectAll)
	require.NoError(t, err)
	require.Len(t, res.Frames, 7)

	for _, f := range res.Frames {
		assert.FileExists(t, cfg.OutputPath(f.Name+".csv"))
	}
	for _, name := range []string{"exclusions.csv", cfg.Sinks.Workbook, cfg.Sinks.SQLite, cfg.Sinks.Chart, cfg.Sinks.MetricsTextfile} {
		assert.FileExists(t, cfg.OutputPath(name))
	}

	metro, err := ccsv.ReadFrame(cfg.OutputPath(pipeline.OutMetro + ".csv"))
	require.NoError(t, err)
	got, _ := res.Frame(pipeline.OutMetro)
	assert.Equal(t, got.Rows, metro.Rows)

	ex, err := ccsv.ReadFrame(cfg.OutputPath("exclusions.csv"))
	require.NoError(t, err)
	assert.Contains(t, ex.Rows, []string{"track.metro", "not_metro", "1"})
}

func TestCalculateTrackOnlySkipsChart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inputs.TrackLength = "absent.csv"
	cfg.Sinks.Workbook = ""

	res, err := Calculate(context.Background(), cfg, pipeline.SelectTrack)
	require.NoError(t, err)
	assert.Len(t, res.Frames, 3)

	assert.NoFileExists(t, cfg.OutputPath(cfg.Sinks.Chart))
	assert.NoFileExists(t, cfg.OutputPath("metro_costs.xlsx"), "disabled sink is not written")
}

func TestRunRejectsUnknownPipeline(t *testing.T) {
	assert.Error(t, Run(testConfig(t), []string{"-pipeline", "buses"}))
}
