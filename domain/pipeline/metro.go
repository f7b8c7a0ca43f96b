package pipeline

import (
	"fmt"
	"log/slog"
	"strconv"

	"metro-costs/domain/aggregate"
	"metro-costs/domain/config"
	"metro-costs/domain/gapfill"
	"metro-costs/domain/transit"
	"metro-costs/domain/uitp"
)

// Metro output columns.
const (
	ColYear               = "year"
	ColRegion             = "uitp_region"
	ColRollingStockDesc   = "rolling_stock_cost_desc"
	ColNewTrackLength     = "new_track_length"
	ColNewTrackTrackCosts = "new_track_track_costs"
	ColNewTrackRolling    = "new_track_rolling_stock_costs"
	ColValueUSDm          = "value_usdm"
)

// NewTrackSeries melts the UITP track-length table, differences it and extrapolates it.
func NewTrackSeries(wide transit.Frame, ex config.Extrapolate) ([]uitp.NewTrackRow, error) {
	obs, err := uitp.Melt(wide)
	if err != nil {
		return nil, err
	}
	rows := uitp.NewTrack(obs)
	if len(ex.Years) > 0 {
		rows = uitp.Extrapolate(rows, ex.FromYear, ex.Years)
	}
	return rows, nil
}

func trackGrid(rows []uitp.NewTrackRow) gapfill.Grid {
	grid := make(gapfill.Grid, 0, len(rows))
	for _, r := range rows {
		grid = append(grid, gapfill.Cell{Keys: []string{r.Region}, Year: r.Year})
	}
	return grid
}

func fillRegional(t *aggregate.Table, names []string, grid gapfill.Grid, what string) (*aggregate.Table, error) {
	chain, err := gapfill.ParseChain(names)
	if err != nil {
		return nil, fmt.Errorf("%s fallback: %w", what, err)
	}
	filled, rep := gapfill.Filler{Chain: chain, Columns: []string{aggregate.CostPerKm.Name}}.Fill(t, gapfill.Fallbacks(t), grid)
	for st, n := range rep.Filled {
		slog.Info("pipeline.metro.gapfill", "table", what, "strategy", st, "cells", n)
	}
	if rep.Unfilled > 0 {
		slog.Warn("pipeline.metro.gapfill.unfilled", "table", what, "cells", rep.Unfilled)
	}
	return filled, nil
}

// Metro prices each region's yearly new track with the regional track cost per km and the
// regional rolling stock cost per km of track, each gap-filled through its configured chain.
func Metro(newTrack []uitp.NewTrackRow, track *TrackOutput, rolling *RollingStockOutput, s config.Metro) (transit.Frame, error) {
	if track == nil || rolling == nil {
		return transit.Frame{}, fmt.Errorf("metro needs the track and rolling stock outputs")
	}
	grid := trackGrid(newTrack)
	trackCosts, err := fillRegional(track.Regional, s.TrackFallback, grid, "track")
	if err != nil {
		return transit.Frame{}, err
	}
	rollingCosts, err := fillRegional(rolling.Regional, s.RollingStockFallback, grid, "rolling_stock")
	if err != nil {
		return transit.Frame{}, err
	}
	trackIdx, rollingIdx := trackCosts.Index(), rollingCosts.Index()

	f := transit.Frame{
		Name:   OutMetro,
		Header: []string{ColYear, ColRegion, ColRollingStockDesc, ColNewTrackLength, ColNewTrackTrackCosts, ColNewTrackRolling, ColValueUSDm},
	}
	for _, nt := range newTrack {
		key := aggregate.CellKey([]string{nt.Region}, nt.Year)

		trackPerKm := transit.Metric{}
		if i, ok := trackIdx[key]; ok {
			trackPerKm = trackCosts.Rows[i].Metric(aggregate.CostPerKm.Name)
		}
		rollingPerKm, desc := transit.Metric{}, gapfill.Unfilled
		if i, ok := rollingIdx[key]; ok {
			rollingPerKm = rollingCosts.Rows[i].Metric(aggregate.CostPerKm.Name)
			desc = rollingCosts.Rows[i].Provenance
		}

		trackCost := transit.Mul(nt.Length, trackPerKm)
		rollingCost := transit.Mul(nt.Length, rollingPerKm)
		f.Rows = append(f.Rows, []string{
			strconv.Itoa(nt.Year),
			nt.Region,
			desc,
			nt.Length.String(),
			trackCost.String(),
			rollingCost.String(),
			transit.Add(trackCost, rollingCost).String(),
		})
	}
	slog.Info("pipeline.metro.done", "rows", len(f.Rows))
	return f, nil
}

// MetroBenchmark prices every region's new track with the costs of a single development
// status group (metro.benchmark), keyed by year only. With a cars-per-km table the rolling
// stock is priced per car, otherwise per km of track.
func MetroBenchmark(newTrack []uitp.NewTrackRow, track *TrackOutput, rolling *RollingStockOutput, cars uitp.CarsPerKm, s config.Metro) transit.Frame {
	f := transit.Frame{
		Name:   OutMetroBenchmark,
		Header: []string{ColYear, ColRegion, ColNewTrackLength, ColNewTrackTrackCosts, ColNewTrackRolling, ColValueUSDm},
	}
	if track == nil || rolling == nil {
		return f
	}
	bench := []string{s.Benchmark}
	for _, nt := range newTrack {
		trackCost := transit.Metric{}
		if row, ok := track.DevStatus.Lookup(bench, nt.Year); ok {
			trackCost = transit.Mul(nt.Length, row.Metric(aggregate.CostPerKm.Name))
		}
		rollingCost := transit.Metric{}
		if row, ok := rolling.DevStatus.Lookup(bench, nt.Year); ok {
			if cars != nil {
				rollingCost = transit.Mul(nt.Length, cars.Lookup(nt.Year, nt.Region), row.Metric(aggregate.CostPerCar.Name))
			} else {
				rollingCost = transit.Mul(nt.Length, row.Metric(aggregate.CostPerKm.Name))
			}
		}
		f.Rows = append(f.Rows, []string{
			strconv.Itoa(nt.Year),
			nt.Region,
			nt.Length.String(),
			trackCost.String(),
			rollingCost.String(),
			transit.Add(trackCost, rollingCost).String(),
		})
	}
	slog.Info("pipeline.metro_benchmark.done", "benchmark", s.Benchmark, "rows", len(f.Rows), "per_car", cars != nil)
	return f
}
