package currency

import (
	"metro-costs/domain/transit"
)

// RateSource resolves the local-currency-to-USD multiplier for a (year, currency) pair.
type RateSource interface {
	Rate(year int, currency string) (float64, bool)
}

// ToUSD sets RealCost = Cost × rate(PriceYear, Currency) × scale. Rows that cannot be priced
// are left out and counted by reason; the input slice is not modified.
func ToUSD(projects []transit.Project, rates RateSource, scale float64) ([]transit.Project, transit.Drops) {
	drops := transit.Drops{}
	out := make([]transit.Project, 0, len(projects))
	for _, p := range projects {
		switch {
		case p.Cost == nil:
			drops.Add(transit.ReasonMissingCost, 1)
			continue
		case p.PriceYear == nil:
			drops.Add(transit.ReasonMissingPriceYear, 1)
			continue
		}
		rate, ok := rates.Rate(*p.PriceYear, p.Currency)
		if !ok {
			drops.Add(transit.ReasonUnmappedRate, 1)
			continue
		}
		usd := *p.Cost * rate * scale
		p.RealCost = &usd
		out = append(out, p)
	}
	return out, drops
}
