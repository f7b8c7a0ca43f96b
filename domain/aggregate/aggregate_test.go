package aggregate

import (
	"testing"

	lo "github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metro-costs/domain/distribute"
	"metro-costs/domain/transit"
)

func distributeAll(t *testing.T, projects []transit.Project, vars ...transit.Variable) map[transit.Variable][]transit.DistributedRow {
	t.Helper()
	sets := map[transit.Variable][]transit.DistributedRow{}
	for _, v := range vars {
		rows, err := distribute.Distributor{}.Distribute(projects, v)
		require.NoError(t, err)
		sets[v] = rows
	}
	return sets
}

func TestJoinKeepsUnmatchedRows(t *testing.T) {
	projects := []transit.Project{
		{ID: "p1", StartYear: lo.ToPtr(2019), EndYear: lo.ToPtr(2020), Length: lo.ToPtr(4.0), Cars: lo.ToPtr(2.0)},
		{ID: "p2", StartYear: lo.ToPtr(2020), EndYear: lo.ToPtr(2021), Length: lo.ToPtr(6.0)},
	}
	joined := Join(distributeAll(t, projects, transit.VarLength, transit.VarCars))
	require.Len(t, joined, 4)

	assert.Equal(t, "p1", joined[0].Project.ID)
	assert.Equal(t, 2019, joined[0].Year)
	assert.Equal(t, 2.0, *joined[0].Value(transit.VarLength))
	assert.Equal(t, 1.0, *joined[0].Value(transit.VarCars))

	p2 := lo.Filter(joined, func(r JoinedRow, _ int) bool { return r.Project.ID == "p2" })
	require.Len(t, p2, 2)
	for _, r := range p2 {
		assert.Equal(t, 3.0, *r.Value(transit.VarLength))
		assert.Nil(t, r.Value(transit.VarCars))
	}
}

func TestGroupExcludesNonPositiveProjects(t *testing.T) {
	projects := []transit.Project{
		{ID: "B", UITPRegion: "Europe", StartYear: lo.ToPtr(2020), EndYear: lo.ToPtr(2020), Cars: lo.ToPtr(10.0), Length: lo.ToPtr(5.0), RealCost: lo.ToPtr(50.0)},
		{ID: "C", UITPRegion: "Europe", StartYear: lo.ToPtr(2020), EndYear: lo.ToPtr(2020), Cars: lo.ToPtr(0.0), RealCost: lo.ToPtr(0.0)},
	}
	joined := Join(distributeAll(t, projects, transit.VarCars, transit.VarLength, transit.VarRealCost))
	table, drops := Group(joined, Spec{
		Dimensions: []Dimension{DimUITPRegion},
		Sums:       []transit.Variable{transit.VarLength, transit.VarCars, transit.VarRealCost},
		Ratios:     []Ratio{CostPerKm, CostPerCar},
	})
	assert.Empty(t, drops)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, []string{"Europe"}, row.Keys)
	assert.Equal(t, 2020, row.Year)
	assert.Equal(t, transit.KnownValue(10), row.Metric("distributed_cars"))
	assert.Equal(t, transit.KnownValue(5), row.Metric("distributed_length"))
	assert.Equal(t, transit.KnownValue(5), row.Metric("cost_per_car"))
	assert.Equal(t, transit.KnownValue(10), row.Metric("cost_per_km"))
}

func TestGroupRatioOfSums(t *testing.T) {
	projects := []transit.Project{
		{ID: "1", UITPRegion: "Asia-Pacific", StartYear: lo.ToPtr(2015), EndYear: lo.ToPtr(2015), RealCost: lo.ToPtr(100.0), Length: lo.ToPtr(1.0)},
		{ID: "2", UITPRegion: "Asia-Pacific", StartYear: lo.ToPtr(2015), EndYear: lo.ToPtr(2015), RealCost: lo.ToPtr(200.0), Length: lo.ToPtr(10.0)},
		{ID: "3", UITPRegion: "Asia-Pacific", StartYear: lo.ToPtr(2015), EndYear: lo.ToPtr(2015), RealCost: lo.ToPtr(300.0), Length: lo.ToPtr(100.0)},
	}
	joined := Join(distributeAll(t, projects, transit.VarRealCost, transit.VarLength))
	table, _ := Group(joined, Spec{
		Dimensions: []Dimension{DimUITPRegion},
		Sums:       []transit.Variable{transit.VarRealCost, transit.VarLength},
		Ratios:     []Ratio{CostPerKm},
	})
	require.Len(t, table.Rows, 1)

	got := table.Rows[0].Metric("cost_per_km")
	require.True(t, got.IsKnown())
	assert.InDelta(t, 600.0/111.0, got.Value, 1e-12)
	meanOfRatios := (100.0 + 20.0 + 3.0) / 3
	assert.NotEqual(t, meanOfRatios, got.Value)
}

func TestGroupUndefinedAndNullRatios(t *testing.T) {
	joined := []JoinedRow{
		{Project: &transit.Project{ID: "x", ISO2: "FR"}, Year: 2020, Values: map[transit.Variable]*float64{
			transit.VarRealCost: lo.ToPtr(5.0),
			transit.VarLength:   lo.ToPtr(0.0),
		}},
		{Project: &transit.Project{ID: "y", ISO2: "DE"}, Year: 2020, Values: map[transit.Variable]*float64{
			transit.VarRealCost: lo.ToPtr(5.0),
		}},
	}
	table, _ := Group(joined, Spec{
		Dimensions: []Dimension{DimCountry},
		Sums:       []transit.Variable{transit.VarRealCost, transit.VarLength},
		Ratios:     []Ratio{CostPerKm},
	})
	require.Len(t, table.Rows, 2)

	de, ok := table.Lookup([]string{"DE"}, 2020)
	require.True(t, ok)
	assert.Equal(t, transit.Null, de.Metric("cost_per_km").Status)
	assert.Equal(t, transit.Null, de.Metric("distributed_length").Status)

	fr, ok := table.Lookup([]string{"FR"}, 2020)
	require.True(t, ok)
	assert.Equal(t, transit.Undefined, fr.Metric("cost_per_km").Status)

	f := table.Frame("country")
	assert.Equal(t, []string{"iso2_code", "distributed_year", "distributed_real_cost", "distributed_length", "cost_per_km"}, f.Header)
	assert.Equal(t, []string{"DE", "2020", "5", "", ""}, f.Rows[0])
	assert.Equal(t, []string{"FR", "2020", "5", "0", "undefined"}, f.Rows[1])
}

func TestGroupCountsUnmappedKeys(t *testing.T) {
	joined := []JoinedRow{
		{Project: &transit.Project{ID: "a", UITPRegion: "Europe", DevelopmentStatus3: "Advanced Economy"}, Year: 2020, Values: map[transit.Variable]*float64{transit.VarLength: lo.ToPtr(1.0)}},
		{Project: &transit.Project{ID: "b", DevelopmentStatus3: "EMDE"}, Year: 2020, Values: map[transit.Variable]*float64{transit.VarLength: lo.ToPtr(1.0)}},
		{Project: &transit.Project{ID: "c", UITPRegion: "Europe"}, Year: 2021, Values: map[transit.Variable]*float64{transit.VarLength: lo.ToPtr(1.0)}},
	}
	table, drops := Group(joined, Spec{
		Dimensions: []Dimension{DimUITPRegion, DimDevelopmentStatus},
		Sums:       []transit.Variable{transit.VarLength},
	})
	assert.Len(t, table.Rows, 1)
	assert.Equal(t, 2, drops[transit.ReasonUnmappedGroupKey])
}

func TestTableHelpers(t *testing.T) {
	table := &Table{
		Dimensions: []Dimension{DimUITPRegion},
		Columns:    []string{"cost_per_km"},
		Rows: []Row{
			{Keys: []string{"MENA"}, Year: 2021, Values: map[string]transit.Metric{"cost_per_km": transit.KnownValue(3)}},
			{Keys: []string{"Europe"}, Year: 2021, Values: map[string]transit.Metric{"cost_per_km": transit.KnownValue(2)}},
			{Keys: []string{"Europe"}, Year: 2020, Values: map[string]transit.Metric{"cost_per_km": transit.KnownValue(1)}},
		},
	}
	table.Sort()
	assert.Equal(t, []string{"Europe"}, table.Rows[0].Keys)
	assert.Equal(t, 2020, table.Rows[0].Year)
	assert.Equal(t, [][]string{{"Europe"}, {"MENA"}}, table.Groups())
	assert.Equal(t, []int{2020, 2021}, table.Years())

	mena := table.Where(DimUITPRegion, "MENA")
	require.Len(t, mena.Rows, 1)
	assert.Len(t, table.Rows, 3, "Where returns a copy")

	clone := table.Clone()
	clone.Rows[0].Values["cost_per_km"] = transit.KnownValue(99)
	assert.Equal(t, 1.0, table.Rows[0].Metric("cost_per_km").Value)
}
