package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"metro-costs/domain/transit"
)

func metroFrame() transit.Frame {
	return transit.Frame{
		Name:   "metro_costs",
		Header: []string{"year", "uitp_region", "new_track_length", "value_usdm"},
		Rows: [][]string{
			{"2020", "Europe", "12", "1400"},
			{"2019", "Europe", "10", "1350"},
			{"2019", "MENA", "3", ""},
			{"2019", "Asia-Pacific", "20", "undefined"},
			{"2020", "Asia-Pacific", "22", "900"},
		},
	}
}

func TestSeries(t *testing.T) {
	s, err := Series(metroFrame(), YearColumn, GroupColumn, ValueColumn)
	require.NoError(t, err)

	assert.Equal(t, plotter.XYs{{X: 2019, Y: 1350}, {X: 2020, Y: 1400}}, s["Europe"])
	assert.Equal(t, plotter.XYs{{X: 2020, Y: 900}}, s["Asia-Pacific"])
	_, ok := s["MENA"]
	assert.False(t, ok, "groups without values are not plotted")

	_, err = Series(transit.Frame{Name: "x", Header: []string{"year"}}, YearColumn, GroupColumn, ValueColumn)
	assert.ErrorIs(t, err, transit.ErrMissingColumn)
}

func TestRenderMetro(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "metro_costs.png")
	require.NoError(t, RenderMetro(path, metroFrame()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(b), 8)
	assert.Equal(t, []byte("\x89PNG"), b[:4])
}
