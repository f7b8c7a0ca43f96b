package transit

import (
	"sort"

	lo "github.com/samber/lo"
)

// Drops counts excluded rows by reason for a single operation.
type Drops map[Reason]int

// Add records n excluded rows for reason. n <= 0 is ignored.
func (d Drops) Add(reason Reason, n int) {
	if n <= 0 {
		return
	}
	d[reason] += n
}

// Total is the number of excluded rows across all reasons.
func (d Drops) Total() int {
	return lo.Sum(lo.Values(d))
}

// Exclusion is one ledger line.
type Exclusion struct {
	Stage  string
	Reason Reason
	Count  int
}

// Ledger accumulates exclusions across the stages of a pipeline run so the caller can report
// how many rows were left out and why.
type Ledger struct {
	entries map[string]Drops
}

func NewLedger() *Ledger {
	return &Ledger{entries: map[string]Drops{}}
}

// Record merges d under stage.
func (l *Ledger) Record(stage string, d Drops) {
	if len(d) == 0 {
		return
	}
	cur, ok := l.entries[stage]
	if !ok {
		cur = Drops{}
		l.entries[stage] = cur
	}
	for r, n := range d {
		cur.Add(r, n)
	}
}

// Merge folds other into l.
func (l *Ledger) Merge(other *Ledger) {
	if other == nil {
		return
	}
	for stage, d := range other.entries {
		l.Record(stage, d)
	}
}

// Entries returns the ledger sorted by stage then reason.
func (l *Ledger) Entries() []Exclusion {
	var out []Exclusion
	for stage, d := range l.entries {
		for r, n := range d {
			out = append(out, Exclusion{Stage: stage, Reason: r, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stage != out[j].Stage {
			return out[i].Stage < out[j].Stage
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// Count returns the exclusions recorded for stage and reason.
func (l *Ledger) Count(stage string, reason Reason) int {
	return l.entries[stage][reason]
}

// Total is the number of excluded rows across every stage.
func (l *Ledger) Total() int {
	return lo.SumBy(l.Entries(), func(e Exclusion) int { return e.Count })
}
