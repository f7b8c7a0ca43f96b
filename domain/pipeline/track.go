package pipeline

import (
	"context"
	"log/slog"

	lo "github.com/samber/lo"

	"metro-costs/domain/aggregate"
	"metro-costs/domain/config"
	"metro-costs/domain/currency"
	"metro-costs/domain/distribute"
	"metro-costs/domain/normalize"
	"metro-costs/domain/transit"
)

// TrackOutput are the track cost aggregates.
type TrackOutput struct {
	Projects  []transit.Project
	DevStatus *aggregate.Table
	Regional  *aggregate.Table
	Country   *aggregate.Table
}

// Frames renders the track outputs.
func (o *TrackOutput) Frames() []transit.Frame {
	return []transit.Frame{
		o.DevStatus.Frame(OutDevStatusTrack),
		o.Regional.Frame(OutRegionalTrack),
		o.Country.Frame(OutCountryTrack),
	}
}

var trackSums = []transit.Variable{transit.VarRealCost, transit.VarLength}

// PrepareTrack normalizes the raw track table into priced metro projects with year bounds.
func PrepareTrack(in Inputs, s config.Settings, ledger *transit.Ledger) ([]transit.Project, error) {
	projects, err := normalize.Build(normalize.TrackSchema(), in.Track)
	if err != nil {
		return nil, err
	}
	raw := len(projects)
	projects = normalize.ApplyCorrections(projects, append(normalize.BuiltinCorrections(), s.Corrections...))
	projects = in.Reference.Enrich(projects)

	var drops transit.Drops
	projects, drops = normalize.FilterMetro(projects)
	record(ledger, "track.metro", drops)
	projects, drops = normalize.RequireYearBounds(projects, nil)
	record(ledger, "track.year_bounds", drops)
	projects, drops = currency.ToUSD(projects, in.Reference, s.Track.CostScale)
	record(ledger, "track.currency", drops)

	slog.Info("pipeline.track.prepared", "raw", raw, "kept", len(projects))
	return projects, nil
}

// Track produces cost per km of track by development status, UITP region and country. Flows
// before track.min_year are left out after distribution.
func Track(ctx context.Context, in Inputs, s config.Settings, ledger *transit.Ledger) (*TrackOutput, error) {
	projects, err := PrepareTrack(in, s, ledger)
	if err != nil {
		return nil, err
	}

	d := distribute.Distributor{Window: &distribute.YearRange{From: lo.ToPtr(s.Track.MinYear)}}
	sets, err := d.DistributeAll(ctx, projects, trackSums...)
	if err != nil {
		return nil, err
	}
	joined := aggregate.Join(sets)

	out := &TrackOutput{Projects: projects}
	var drops transit.Drops
	out.DevStatus, drops = aggregate.Group(joined, aggregate.Spec{
		Dimensions: []aggregate.Dimension{aggregate.DimDevelopmentStatus},
		Sums:       trackSums,
		Ratios:     []aggregate.Ratio{aggregate.CostPerKm},
	})
	record(ledger, "track.group."+string(aggregate.DimDevelopmentStatus), drops)
	out.Regional, drops = aggregate.Group(joined, aggregate.Spec{
		Dimensions: []aggregate.Dimension{aggregate.DimUITPRegion},
		Sums:       trackSums,
		Ratios:     []aggregate.Ratio{aggregate.CostPerKm},
	})
	record(ledger, "track.group."+string(aggregate.DimUITPRegion), drops)
	out.Country, drops = aggregate.Group(joined, aggregate.Spec{
		Dimensions: []aggregate.Dimension{aggregate.DimCountry, aggregate.DimDevelopmentStatus},
		Sums:       trackSums,
		Ratios:     []aggregate.Ratio{aggregate.CostPerKm},
	})
	record(ledger, "track.group."+string(aggregate.DimCountry), drops)

	slog.Info("pipeline.track.done", "projects", len(projects), "rows", len(joined), "regions", len(out.Regional.Groups()))
	return out, nil
}
