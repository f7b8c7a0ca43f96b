// Package distribute spreads lump-sum project quantities evenly over the calendar years each
// project spans.
//
// A project running from start to end (inclusive) contributes value/(end-start+1) to every
// year in that range. Only strictly positive shares are emitted, so a zero or negative value
// and an inverted range (end < start) both produce no rows.
package distribute

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"metro-costs/domain/transit"
)

// YearRange limits the emitted years. A nil bound is open.
type YearRange struct {
	From *int
	To   *int
}

func (r *YearRange) contains(y int) bool {
	if r == nil {
		return true
	}
	if r.From != nil && y < *r.From {
		return false
	}
	if r.To != nil && y > *r.To {
		return false
	}
	return true
}

// Distributor pro-rates project variables. The zero value has no year window.
type Distributor struct {
	Window *YearRange
}

// Distribute emits one row per (project, year) for variable v, in input order with years
// ascending. A project without a start or end year is a caller bug and fails the call.
func (d Distributor) Distribute(projects []transit.Project, v transit.Variable) ([]transit.DistributedRow, error) {
	return d.distribute(context.Background(), projects, v)
}

func (d Distributor) distribute(ctx context.Context, projects []transit.Project, v transit.Variable) ([]transit.DistributedRow, error) {
	var out []transit.DistributedRow
	for i := range projects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := &projects[i]
		if p.StartYear == nil {
			return nil, &transit.MissingBoundsError{ProjectID: p.ID, City: p.City, Field: "start_year"}
		}
		if p.EndYear == nil {
			return nil, &transit.MissingBoundsError{ProjectID: p.ID, City: p.City, Field: "end_year"}
		}
		raw := p.Value(v)
		if raw == nil || *raw <= 0 {
			continue
		}
		span, _ := p.Span()
		if span <= 0 {
			continue
		}
		share := *raw / float64(span)
		if share <= 0 {
			// subnormal values underflow to zero
			continue
		}
		for y := *p.StartYear; y <= *p.EndYear; y++ {
			if !d.Window.contains(y) {
				continue
			}
			out = append(out, transit.DistributedRow{Project: p, Year: y, Variable: v, Value: share})
		}
	}
	return out, nil
}

// DistributeAll runs one pass per variable concurrently and returns once every pass is done.
// The passes only read projects. A failed pass or a cancelled ctx stops the others.
func (d Distributor) DistributeAll(ctx context.Context, projects []transit.Project, vars ...transit.Variable) (map[transit.Variable][]transit.DistributedRow, error) {
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[transit.Variable][]transit.DistributedRow, len(vars))
	for _, v := range vars {
		v := v
		g.Go(func() error {
			rows, err := d.distribute(gctx, projects, v)
			if err != nil {
				return fmt.Errorf("distribute %s: %w", v, err)
			}
			mu.Lock()
			out[v] = rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Total sums the emitted shares.
func Total(rows []transit.DistributedRow) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.Value
	}
	return sum
}
