package aggregate

import (
	"sort"
	"strconv"
	"strings"

	lo "github.com/samber/lo"

	"metro-costs/domain/transit"
)

// Dimension is a categorical grouping key of a project.
type Dimension string

const (
	DimUITPRegion        Dimension = "uitp_region"
	DimDevelopmentStatus Dimension = "development_status_3"
	DimCountry           Dimension = "iso2_code"
	DimRegionCPI         Dimension = "region_cpi"
)

// Of returns the project's value for d.
func (d Dimension) Of(p *transit.Project) string {
	switch d {
	case DimUITPRegion:
		return p.UITPRegion
	case DimDevelopmentStatus:
		return p.DevelopmentStatus3
	case DimCountry:
		return p.ISO2
	case DimRegionCPI:
		return p.RegionCPI
	}
	return ""
}

// YearColumn is the output name of the year key.
const YearColumn = "distributed_year"

// ProvenanceColumn is written when at least one row carries provenance.
const ProvenanceColumn = "provenance"

// Ratio is a derived column computed from group sums.
type Ratio struct {
	Name string
	Num  transit.Variable
	Den  transit.Variable
}

var (
	CostPerKm  = Ratio{Name: "cost_per_km", Num: transit.VarRealCost, Den: transit.VarLength}
	CostPerCar = Ratio{Name: "cost_per_car", Num: transit.VarRealCost, Den: transit.VarCars}
)

// Spec describes one grouping.
type Spec struct {
	Dimensions []Dimension
	Sums       []transit.Variable
	Ratios     []Ratio
}

// Columns lists the value columns the grouping produces, sums first.
func (s Spec) Columns() []string {
	cols := lo.Map(s.Sums, func(v transit.Variable, _ int) string { return v.Column() })
	return append(cols, lo.Map(s.Ratios, func(r Ratio, _ int) string { return r.Name })...)
}

// Row is one aggregate: group keys aligned with the table dimensions, a year and its metrics.
type Row struct {
	Keys       []string
	Year       int
	Values     map[string]transit.Metric
	Provenance string
}

// Metric returns the value of column, Null when absent.
func (r Row) Metric(column string) transit.Metric { return r.Values[column] }

func (r Row) clone() Row {
	c := r
	c.Keys = append([]string(nil), r.Keys...)
	c.Values = make(map[string]transit.Metric, len(r.Values))
	for k, v := range r.Values {
		c.Values[k] = v
	}
	return c
}

// Table is a grouped result, sorted by keys then year.
type Table struct {
	Dimensions []Dimension
	Columns    []string
	Rows       []Row
}

// Group sums the joined rows per (dimensions..., year) and derives the ratios from the sums.
// Rows with an empty dimension value are not grouped and are reported as unmapped.
func Group(rows []JoinedRow, spec Spec) (*Table, transit.Drops) {
	type acc struct {
		row  Row
		sums map[transit.Variable]transit.Metric
	}
	drops := transit.Drops{}
	groups := map[string]*acc{}
	vars := sumVariables(spec)
	for _, jr := range rows {
		keys := make([]string, len(spec.Dimensions))
		mapped := true
		for i, d := range spec.Dimensions {
			keys[i] = strings.TrimSpace(d.Of(jr.Project))
			if keys[i] == "" {
				mapped = false
			}
		}
		if !mapped {
			drops.Add(transit.ReasonUnmappedGroupKey, 1)
			continue
		}
		id := CellKey(keys, jr.Year)
		a, ok := groups[id]
		if !ok {
			a = &acc{row: Row{Keys: keys, Year: jr.Year}, sums: map[transit.Variable]transit.Metric{}}
			groups[id] = a
		}
		for _, v := range vars {
			val := jr.Value(v)
			if val == nil {
				continue
			}
			cur := a.sums[v]
			if cur.IsKnown() {
				a.sums[v] = transit.KnownValue(cur.Value + *val)
			} else {
				a.sums[v] = transit.KnownValue(*val)
			}
		}
	}

	t := &Table{Dimensions: spec.Dimensions, Columns: spec.Columns()}
	for _, a := range groups {
		a.row.Values = make(map[string]transit.Metric, len(t.Columns))
		for _, v := range spec.Sums {
			a.row.Values[v.Column()] = a.sums[v]
		}
		for _, r := range spec.Ratios {
			a.row.Values[r.Name] = transit.Ratio(a.sums[r.Num], a.sums[r.Den])
		}
		t.Rows = append(t.Rows, a.row)
	}
	t.Sort()
	return t, drops
}

// sumVariables includes ratio operands that are not output as sums.
func sumVariables(spec Spec) []transit.Variable {
	vars := append([]transit.Variable(nil), spec.Sums...)
	for _, r := range spec.Ratios {
		vars = append(vars, r.Num, r.Den)
	}
	return lo.Uniq(vars)
}

// CellKey identifies a (keys, year) cell of a table.
func CellKey(keys []string, year int) string {
	return strings.Join(keys, "\x1f") + "\x1f" + strconv.Itoa(year)
}

// Sort orders rows by keys then year.
func (t *Table) Sort() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		for k := range a.Keys {
			if k >= len(b.Keys) {
				return false
			}
			if a.Keys[k] != b.Keys[k] {
				return a.Keys[k] < b.Keys[k]
			}
		}
		return a.Year < b.Year
	})
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	c := &Table{
		Dimensions: append([]Dimension(nil), t.Dimensions...),
		Columns:    append([]string(nil), t.Columns...),
		Rows:       make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		c.Rows[i] = r.clone()
	}
	return c
}

// Lookup finds the row for keys and year.
func (t *Table) Lookup(keys []string, year int) (Row, bool) {
	id := CellKey(keys, year)
	for _, r := range t.Rows {
		if CellKey(r.Keys, r.Year) == id {
			return r, true
		}
	}
	return Row{}, false
}

// Index maps CellKey to row position for repeated lookups.
func (t *Table) Index() map[string]int {
	idx := make(map[string]int, len(t.Rows))
	for i, r := range t.Rows {
		idx[CellKey(r.Keys, r.Year)] = i
	}
	return idx
}

// Groups returns the distinct key tuples in table order.
func (t *Table) Groups() [][]string {
	seen := map[string]bool{}
	var out [][]string
	for _, r := range t.Rows {
		id := strings.Join(r.Keys, "\x1f")
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, append([]string(nil), r.Keys...))
	}
	return out
}

// Years returns the distinct years, ascending.
func (t *Table) Years() []int {
	years := lo.Uniq(lo.Map(t.Rows, func(r Row, _ int) int { return r.Year }))
	sort.Ints(years)
	return years
}

// Where keeps rows whose value for d equals value.
func (t *Table) Where(d Dimension, value string) *Table {
	pos := lo.IndexOf(t.Dimensions, d)
	out := t.Clone()
	if pos < 0 {
		out.Rows = nil
		return out
	}
	out.Rows = lo.Filter(out.Rows, func(r Row, _ int) bool { return r.Keys[pos] == value })
	return out
}

// Frame renders the table with columns <dims...>, distributed_year, <columns...>[, provenance].
func (t *Table) Frame(name string) transit.Frame {
	withProvenance := lo.SomeBy(t.Rows, func(r Row) bool { return r.Provenance != "" })
	header := lo.Map(t.Dimensions, func(d Dimension, _ int) string { return string(d) })
	header = append(header, YearColumn)
	header = append(header, t.Columns...)
	if withProvenance {
		header = append(header, ProvenanceColumn)
	}

	f := transit.Frame{Name: name, Header: header}
	for _, r := range t.Rows {
		rec := append([]string(nil), r.Keys...)
		rec = append(rec, strconv.Itoa(r.Year))
		for _, c := range t.Columns {
			rec = append(rec, r.Values[c].String())
		}
		if withProvenance {
			rec = append(rec, r.Provenance)
		}
		f.Rows = append(f.Rows, rec)
	}
	return f
}
