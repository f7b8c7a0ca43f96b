package aggregate

import (
	"sort"

	"metro-costs/domain/transit"
)

// JoinedRow is one (project, year) with every distributed variable that produced a share for
// it. A variable without a share is nil.
type JoinedRow struct {
	Project *transit.Project
	Year    int
	Values  map[transit.Variable]*float64
}

// Value returns the share of v, or nil.
func (r JoinedRow) Value(v transit.Variable) *float64 { return r.Values[v] }

type joinKey struct {
	id   string
	year int
}

// Join merges per-variable distributions on (project id, year). Every pair present in any
// input appears exactly once; the result is ordered by project id then year.
func Join(sets map[transit.Variable][]transit.DistributedRow) []JoinedRow {
	index := map[joinKey]int{}
	var out []JoinedRow
	for _, v := range sortedVariables(sets) {
		for _, r := range sets[v] {
			k := joinKey{id: r.Project.ID, year: r.Year}
			i, ok := index[k]
			if !ok {
				i = len(out)
				index[k] = i
				out = append(out, JoinedRow{Project: r.Project, Year: r.Year, Values: map[transit.Variable]*float64{}})
			}
			val := r.Value
			if prev := out[i].Values[v]; prev != nil {
				// the same project listed twice under one id; keep both shares
				val += *prev
			}
			out[i].Values[v] = &val
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Project.ID != out[j].Project.ID {
			return out[i].Project.ID < out[j].Project.ID
		}
		return out[i].Year < out[j].Year
	})
	return out
}

func sortedVariables(sets map[transit.Variable][]transit.DistributedRow) []transit.Variable {
	vars := make([]transit.Variable, 0, len(sets))
	for v := range sets {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	return vars
}
