package gapfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metro-costs/domain/aggregate"
	"metro-costs/domain/transit"
)

const col = "cost_per_km"

func regional() *aggregate.Table {
	row := func(region string, year int, m transit.Metric) aggregate.Row {
		return aggregate.Row{Keys: []string{region}, Year: year, Values: map[string]transit.Metric{col: m}}
	}
	return &aggregate.Table{
		Dimensions: []aggregate.Dimension{aggregate.DimUITPRegion},
		Columns:    []string{col},
		Rows: []aggregate.Row{
			row("Europe", 2020, transit.KnownValue(10)),
			row("Europe", 2021, transit.KnownValue(30)),
			row("MENA", 2020, transit.KnownValue(40)),
			row("MENA", 2021, transit.UndefinedValue()),
			row("North America", 2020, transit.Metric{}),
		},
	}
}

func TestParseChain(t *testing.T) {
	chain, err := ParseChain([]string{"global min", "global average"})
	require.NoError(t, err)
	assert.Equal(t, Chain{GlobalMin, GlobalAverage}, chain)

	_, err = ParseChain([]string{"global median"})
	assert.Error(t, err)
}

func TestFallbacks(t *testing.T) {
	src := Fallbacks(regional())
	assert.Equal(t, transit.KnownValue(10), src.Value(GlobalMin, 2020, col))
	assert.Equal(t, transit.KnownValue(25), src.Value(GlobalAverage, 2020, col))
	assert.Equal(t, transit.KnownValue(30), src.Value(GlobalMin, 2021, col), "undefined values are not observations")
	assert.Equal(t, transit.Null, src.Value(GlobalMin, 2019, col).Status)
}

func TestFillChainOrder(t *testing.T) {
	table := regional()
	src := Fallbacks(table)

	out, rep := Filler{Chain: Chain{GlobalAverage, GlobalMin}, Columns: []string{col}}.Fill(table, src, nil)
	require.Len(t, out.Rows, 6)

	na, ok := out.Lookup([]string{"North America"}, 2020)
	require.True(t, ok)
	assert.Equal(t, transit.KnownValue(25), na.Metric(col))
	assert.Equal(t, string(GlobalAverage), na.Provenance)

	inserted, ok := out.Lookup([]string{"North America"}, 2021)
	require.True(t, ok)
	assert.Equal(t, transit.KnownValue(30), inserted.Metric(col))

	eu, _ := out.Lookup([]string{"Europe"}, 2020)
	assert.Equal(t, Regional, eu.Provenance)
	assert.Equal(t, transit.KnownValue(10), eu.Metric(col), "observed values are never replaced")

	mena, _ := out.Lookup([]string{"MENA"}, 2021)
	assert.Equal(t, transit.KnownValue(30), mena.Metric(col), "undefined cells are gaps")

	assert.Equal(t, 3, rep.Filled[GlobalAverage])
	assert.Equal(t, 1, rep.Inserted)

	// input untouched
	orig, _ := table.Lookup([]string{"North America"}, 2020)
	assert.Equal(t, transit.Null, orig.Metric(col).Status)
	assert.Len(t, table.Rows, 5)
}

func TestFillIsIdempotent(t *testing.T) {
	table := regional()
	src := Fallbacks(table)
	f := Filler{Chain: Chain{GlobalMin}, Columns: []string{col}}

	once, _ := f.Fill(table, src, nil)
	twice, rep := f.Fill(once, src, nil)
	assert.Equal(t, once, twice)
	assert.Empty(t, rep.Filled)
	assert.Zero(t, rep.Inserted)
}

func TestFillEmptyChainAndUncoveredCells(t *testing.T) {
	table := regional()
	grid := Grid{{Keys: []string{"Eurasia"}, Year: 2019}, {Keys: []string{"North America"}, Year: 2020}}

	out, rep := Filler{Columns: []string{col}}.Fill(table, Fallbacks(table), grid)
	assert.Len(t, out.Rows, 5, "uncovered absent cells are not inserted")
	na, _ := out.Lookup([]string{"North America"}, 2020)
	assert.Equal(t, Unfilled, na.Provenance)
	assert.Equal(t, 2, rep.Unfilled)
}

func TestAppendGlobal(t *testing.T) {
	out := AppendGlobal(regional(), GlobalMin)
	require.Len(t, out.Rows, 7)
	last := out.Rows[len(out.Rows)-2:]
	assert.Equal(t, []string{"global min"}, last[0].Keys)
	assert.Equal(t, 2020, last[0].Year)
	assert.Equal(t, transit.KnownValue(10), last[0].Metric(col))
	assert.Equal(t, 2021, last[1].Year)

	again := AppendGlobal(out, GlobalMin)
	assert.Equal(t, out, again, "existing global rows are replaced, not duplicated")
	assert.Equal(t, Fallbacks(regional()), Fallbacks(out), "global rows do not feed the fallbacks")
}
