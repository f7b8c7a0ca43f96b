// Package pipeline composes normalization, currency conversion, distribution, aggregation and
// gap filling into the named cost pipelines.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"metro-costs/domain/config"
	"metro-costs/domain/reference"
	"metro-costs/domain/transit"
	"metro-costs/domain/uitp"
)

// Output names.
const (
	OutDevStatusTrack   = "dev_status_cost_of_track_per_km"
	OutRegionalTrack    = "regional_cost_track_per_km"
	OutCountryTrack     = "country_cost_of_track_per_km"
	OutDevStatusRolling = "dev_status_cost_per_car"
	OutRegionalRolling  = "regional_cars_cost_per_km"
	OutMetro            = "metro_costs"
	OutMetroBenchmark   = "metro_costs_emde_cost_average"
)

// Selection picks which pipelines Run executes.
type Selection string

const (
	SelectAll          Selection = "all"
	SelectTrack        Selection = "track"
	SelectRollingStock Selection = "rolling_stock"
	SelectMetro        Selection = "metro"
)

// ParseSelection validates a selection name.
func ParseSelection(s string) (Selection, error) {
	switch sel := Selection(s); sel {
	case SelectAll, SelectTrack, SelectRollingStock, SelectMetro:
		return sel, nil
	case "":
		return SelectAll, nil
	}
	return "", fmt.Errorf("unknown pipeline %q", s)
}

// Needs lists the pipelines a selection executes.
type Needs struct {
	Track        bool
	RollingStock bool
	Metro        bool
}

// Needs reports which pipelines run for s. Metro needs both cost pipelines.
func (s Selection) Needs() Needs {
	all := s == SelectAll || s == ""
	return Needs{
		Track:        all || s == SelectTrack || s == SelectMetro,
		RollingStock: all || s == SelectRollingStock || s == SelectMetro,
		Metro:        all || s == SelectMetro,
	}
}

// Inputs are the whole-table snapshots read before any computation.
type Inputs struct {
	Track        transit.Frame
	RollingStock transit.Frame
	Reference    *reference.Tables
	TrackLength  transit.Frame
	// CarsPerKm is optional; without it the benchmark prices rolling stock per km of track.
	CarsPerKm uitp.CarsPerKm
}

// Result holds every frame produced by a run, in output order, and the exclusion ledger.
type Result struct {
	Frames []transit.Frame
	Ledger *transit.Ledger
}

// Frame returns the frame called name.
func (r *Result) Frame(name string) (transit.Frame, bool) {
	for _, f := range r.Frames {
		if f.Name == name {
			return f, true
		}
	}
	return transit.Frame{}, false
}

// Run executes the selected pipelines.
func Run(ctx context.Context, in Inputs, s config.Settings, sel Selection) (*Result, error) {
	if in.Reference == nil {
		return nil, fmt.Errorf("reference tables: %w", transit.ErrMissingTable)
	}
	res := &Result{Ledger: transit.NewLedger()}
	needs := sel.Needs()

	var track *TrackOutput
	if needs.Track {
		out, err := Track(ctx, in, s, res.Ledger)
		if err != nil {
			return nil, fmt.Errorf("track pipeline: %w", err)
		}
		track = out
		res.Frames = append(res.Frames, out.Frames()...)
	}

	var rolling *RollingStockOutput
	if needs.RollingStock {
		out, err := RollingStock(ctx, in, s, res.Ledger)
		if err != nil {
			return nil, fmt.Errorf("rolling stock pipeline: %w", err)
		}
		rolling = out
		res.Frames = append(res.Frames, out.Frames()...)
	}

	if needs.Metro {
		newTrack, err := NewTrackSeries(in.TrackLength, s.Metro.Extrapolate)
		if err != nil {
			return nil, fmt.Errorf("metro pipeline: %w", err)
		}
		metro, err := Metro(newTrack, track, rolling, s.Metro)
		if err != nil {
			return nil, fmt.Errorf("metro pipeline: %w", err)
		}
		res.Frames = append(res.Frames, metro, MetroBenchmark(newTrack, track, rolling, in.CarsPerKm, s.Metro))
	}

	for _, e := range res.Ledger.Entries() {
		slog.Info("pipeline.excluded", "stage", e.Stage, "reason", e.Reason, "count", e.Count)
	}
	slog.Info("pipeline.done", "selection", sel, "frames", len(res.Frames), "excluded", res.Ledger.Total())
	return res, nil
}

// record logs and stores a stage's exclusions.
func record(ledger *transit.Ledger, stage string, d transit.Drops) {
	if d.Total() == 0 {
		return
	}
	slog.Debug("pipeline.stage.dropped", "stage", stage, "count", d.Total())
	ledger.Record(stage, d)
}
