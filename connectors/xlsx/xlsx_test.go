package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"metro-costs/domain/transit"
)

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "metro_costs.xlsx")
	frames := []transit.Frame{
		{Name: "regional_cost_track_per_km", Header: []string{"uitp_region", "distributed_year", "cost_per_km"}, Rows: [][]string{{"Europe", "2020", "62.5"}, {"MENA", "2020", "undefined"}}},
		{Name: "metro_costs", Header: []string{"year", "uitp_region", "value_usdm"}, Rows: [][]string{{"2019", "Europe", "1350"}}},
	}
	require.NoError(t, WriteWorkbook(path, frames))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"regional_cost_track_per_km", "metro_costs"}, f.GetSheetList())

	rows, err := f.GetRows("regional_cost_track_per_km")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"uitp_region", "distributed_year", "cost_per_km"},
		{"Europe", "2020", "62.5"},
		{"MENA", "2020", "undefined"},
	}, rows)

	typ, err := f.GetCellType("metro_costs", "C2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeNumber, typ)
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}
	long := "a_very_long_frame_name_that_exceeds_the_limit"
	first := sheetName(long, used)
	second := sheetName(long, used)

	assert.Len(t, first, maxSheetName)
	assert.Len(t, second, maxSheetName)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "_2", second[len(second)-2:])
	assert.Equal(t, "Sheet", sheetName("", used))
}
