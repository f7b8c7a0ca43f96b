// Package gapfill substitutes year-level fallback statistics for aggregate cells that are absent
// or have no number, tagging each row with where its values came from.
package gapfill

import (
	"fmt"
	"sort"

	lo "github.com/samber/lo"

	"metro-costs/domain/aggregate"
	"metro-costs/domain/transit"
)

// Strategy names a fallback statistic computed across all groups of a year.
type Strategy string

const (
	GlobalMin     Strategy = "global min"
	GlobalAverage Strategy = "global average"
)

// Provenance labels besides the strategy names.
const (
	Regional = "regional"
	Unfilled = "unfilled"
)

// Chain is tried in order; the first strategy with a number wins.
type Chain []Strategy

// ParseChain validates configured strategy names.
func ParseChain(names []string) (Chain, error) {
	chain := make(Chain, 0, len(names))
	for _, n := range names {
		s := Strategy(n)
		if s != GlobalMin && s != GlobalAverage {
			return nil, fmt.Errorf("unknown fallback strategy %q", n)
		}
		chain = append(chain, s)
	}
	return chain, nil
}

// IsFallback reports whether label is a strategy name.
func IsFallback(label string) bool {
	return label == string(GlobalMin) || label == string(GlobalAverage)
}

// Source holds the fallback values: strategy -> year -> column.
type Source map[Strategy]map[int]map[string]transit.Metric

// Value returns the fallback for (strategy, year, column), Null when none.
func (s Source) Value(st Strategy, year int, column string) transit.Metric {
	return s[st][year][column]
}

// Fallbacks computes the per-year min and mean of every column over the Known values of all
// observed groups. Rows that are themselves global fallback rows are ignored.
func Fallbacks(t *aggregate.Table, strategies ...Strategy) Source {
	if len(strategies) == 0 {
		strategies = []Strategy{GlobalMin, GlobalAverage}
	}
	byYear := lo.GroupBy(lo.Filter(t.Rows, func(r aggregate.Row, _ int) bool {
		return len(r.Keys) == 0 || !IsFallback(r.Keys[0])
	}), func(r aggregate.Row) int { return r.Year })

	src := Source{}
	for _, st := range strategies {
		src[st] = map[int]map[string]transit.Metric{}
	}
	for year, rows := range byYear {
		for _, col := range t.Columns {
			known := lo.FilterMap(rows, func(r aggregate.Row, _ int) (float64, bool) {
				m := r.Metric(col)
				return m.Value, m.IsKnown()
			})
			if len(known) == 0 {
				continue
			}
			for _, st := range strategies {
				if src[st][year] == nil {
					src[st][year] = map[string]transit.Metric{}
				}
				switch st {
				case GlobalMin:
					src[st][year][col] = transit.KnownValue(lo.Min(known))
				case GlobalAverage:
					src[st][year][col] = transit.KnownValue(lo.Sum(known) / float64(len(known)))
				}
			}
		}
	}
	return src
}

// Cell addresses one expected (group, year) of a table.
type Cell struct {
	Keys []string
	Year int
}

// Grid is the set of cells a table is expected to cover.
type Grid []Cell

// CrossGrid is every group paired with every year.
func CrossGrid(groups [][]string, years []int) Grid {
	var g Grid
	for _, keys := range groups {
		for _, y := range years {
			g = append(g, Cell{Keys: keys, Year: y})
		}
	}
	return g
}

// GridOf is the cross product of a table's own groups and years, ignoring fallback rows.
func GridOf(t *aggregate.Table) Grid {
	groups := lo.Filter(t.Groups(), func(k []string, _ int) bool { return len(k) == 0 || !IsFallback(k[0]) })
	return CrossGrid(groups, t.Years())
}

// Report counts what a Fill did.
type Report struct {
	Filled   map[Strategy]int
	Inserted int
	Unfilled int
}

// Filler fills Columns of a table through Chain.
type Filler struct {
	Chain   Chain
	Columns []string
}

// Fill returns a copy of t where every grid cell that is absent, or has a Null or Undefined
// column, takes the first Known value of the chain. Known values are never replaced and a
// second run over the output changes nothing. A nil grid means GridOf(t).
func (f Filler) Fill(t *aggregate.Table, src Source, grid Grid) (*aggregate.Table, Report) {
	if grid == nil {
		grid = GridOf(t)
	}
	out := t.Clone()
	idx := out.Index()
	rep := Report{Filled: map[Strategy]int{}}

	for _, cell := range grid {
		pos, present := idx[aggregate.CellKey(cell.Keys, cell.Year)]
		var row aggregate.Row
		if present {
			row = out.Rows[pos]
		} else {
			row = aggregate.Row{
				Keys:   append([]string(nil), cell.Keys...),
				Year:   cell.Year,
				Values: map[string]transit.Metric{},
			}
		}

		var used Strategy
		missing := false
		for _, col := range f.Columns {
			// Null and Undefined (zero denominator) are both gaps: a ratio over zero track
			// says nothing about the region's cost.
			if row.Metric(col).IsKnown() {
				continue
			}
			filled := false
			for _, st := range f.Chain {
				if v := src.Value(st, cell.Year, col); v.IsKnown() {
					row.Values[col] = v
					rep.Filled[st]++
					if used == "" {
						used = st
					}
					filled = true
					break
				}
			}
			if !filled {
				missing = true
			}
		}

		switch {
		case used != "":
			row.Provenance = string(used)
		case row.Provenance != "":
			// already labelled by an earlier run
		case missing:
			row.Provenance = Unfilled
		default:
			row.Provenance = Regional
		}
		if missing {
			rep.Unfilled++
		}

		if present {
			out.Rows[pos] = row
			continue
		}
		if used == "" {
			// nothing to add for a cell no strategy could cover
			continue
		}
		idx[aggregate.CellKey(cell.Keys, cell.Year)] = len(out.Rows)
		out.Rows = append(out.Rows, row)
		rep.Inserted++
	}
	out.Sort()
	return out, rep
}

// AppendGlobal adds one row per year keyed by the strategy name, holding that year's fallback
// value for every column. Existing fallback rows for the strategy are replaced.
func AppendGlobal(t *aggregate.Table, st Strategy) *aggregate.Table {
	src := Fallbacks(t, st)
	out := t.Clone()
	out.Rows = lo.Filter(out.Rows, func(r aggregate.Row, _ int) bool {
		return len(r.Keys) == 0 || r.Keys[0] != string(st)
	})
	years := lo.Keys(src[st])
	sort.Ints(years)
	for _, y := range years {
		keys := make([]string, len(out.Dimensions))
		if len(keys) > 0 {
			keys[0] = string(st)
		}
		vals := map[string]transit.Metric{}
		for col, m := range src[st][y] {
			vals[col] = m
		}
		out.Rows = append(out.Rows, aggregate.Row{Keys: keys, Year: y, Values: vals})
	}
	return out
}
