package pipeline

import (
	"context"
	"log/slog"

	lo "github.com/samber/lo"

	"metro-costs/domain/aggregate"
	"metro-costs/domain/config"
	"metro-costs/domain/currency"
	"metro-costs/domain/distribute"
	"metro-costs/domain/gapfill"
	"metro-costs/domain/normalize"
	"metro-costs/domain/transit"
)

// RollingStockOutput are the rolling stock cost aggregates. Regional holds observed regions
// only; the global rows are added when rendering.
type RollingStockOutput struct {
	Projects   []transit.Project
	DevStatus  *aggregate.Table
	Regional   *aggregate.Table
	GlobalRows []gapfill.Strategy
}

// Frames renders the rolling stock outputs.
func (o *RollingStockOutput) Frames() []transit.Frame {
	regional := o.Regional
	for _, st := range o.GlobalRows {
		regional = gapfill.AppendGlobal(regional, st)
	}
	return []transit.Frame{
		o.DevStatus.Frame(OutDevStatusRolling),
		regional.Frame(OutRegionalRolling),
	}
}

var (
	rollingSums   = []transit.Variable{transit.VarLength, transit.VarCars, transit.VarRealCost}
	rollingRatios = []aggregate.Ratio{aggregate.CostPerKm, aggregate.CostPerCar}
)

// PrepareRollingStock normalizes the raw rolling stock table into priced metro orders that
// finish on or after rolling_stock.min_end_year and report a car count.
func PrepareRollingStock(in Inputs, s config.Settings, ledger *transit.Ledger) ([]transit.Project, error) {
	projects, err := normalize.Build(normalize.RollingStockSchema(s.RollingStock.LengthDivisor), in.RollingStock)
	if err != nil {
		return nil, err
	}
	raw := len(projects)
	projects = normalize.ApplyCorrections(projects, append(normalize.BuiltinCorrections(), s.Corrections...))

	var drops transit.Drops
	projects, drops = normalize.FilterMetro(projects)
	record(ledger, "rolling_stock.metro", drops)
	projects = in.Reference.Enrich(projects)
	projects, drops = normalize.RequireYearBounds(projects, lo.ToPtr(s.RollingStock.MinEndYear))
	record(ledger, "rolling_stock.year_bounds", drops)
	projects, drops = normalize.RequireValue(projects, transit.VarCars)
	record(ledger, "rolling_stock.cars", drops)
	projects, drops = currency.ToUSD(projects, in.Reference, s.RollingStock.CostScale)
	record(ledger, "rolling_stock.currency", drops)

	slog.Info("pipeline.rolling_stock.prepared", "raw", raw, "kept", len(projects))
	return projects, nil
}

// RollingStock produces cost per car and cost of cars per km of track by development status
// and UITP region.
func RollingStock(ctx context.Context, in Inputs, s config.Settings, ledger *transit.Ledger) (*RollingStockOutput, error) {
	globals, err := gapfill.ParseChain(s.RollingStock.GlobalRows)
	if err != nil {
		return nil, err
	}
	projects, err := PrepareRollingStock(in, s, ledger)
	if err != nil {
		return nil, err
	}

	sets, err := distribute.Distributor{}.DistributeAll(ctx, projects, rollingSums...)
	if err != nil {
		return nil, err
	}
	joined := aggregate.Join(sets)

	out := &RollingStockOutput{Projects: projects, GlobalRows: globals}
	var drops transit.Drops
	out.DevStatus, drops = aggregate.Group(joined, aggregate.Spec{
		Dimensions: []aggregate.Dimension{aggregate.DimDevelopmentStatus},
		Sums:       rollingSums,
		Ratios:     rollingRatios,
	})
	record(ledger, "rolling_stock.group."+string(aggregate.DimDevelopmentStatus), drops)
	out.Regional, drops = aggregate.Group(joined, aggregate.Spec{
		Dimensions: []aggregate.Dimension{aggregate.DimUITPRegion},
		Sums:       rollingSums,
		Ratios:     rollingRatios,
	})
	record(ledger, "rolling_stock.group."+string(aggregate.DimUITPRegion), drops)

	slog.Info("pipeline.rolling_stock.done", "projects", len(projects), "rows", len(joined), "regions", len(out.Regional.Groups()))
	return out, nil
}
