package normalize

import (
	lo "github.com/samber/lo"

	"metro-costs/domain/transit"
)

// FilterMetro keeps metro projects. Light rail and commuter rail rows are dropped.
func FilterMetro(projects []transit.Project) ([]transit.Project, transit.Drops) {
	kept := lo.Filter(projects, func(p transit.Project, _ int) bool { return p.IsMetro() })
	drops := transit.Drops{}
	drops.Add(transit.ReasonNotMetro, len(projects)-len(kept))
	return kept, drops
}

// RequireYearBounds drops rows missing a start or end year, rows with a year outside the
// plausible range and, when cutoff is set, rows ending before it.
func RequireYearBounds(projects []transit.Project, cutoff *int) ([]transit.Project, transit.Drops) {
	drops := transit.Drops{}
	kept := make([]transit.Project, 0, len(projects))
	for _, p := range projects {
		switch {
		case p.StartYear == nil:
			drops.Add(transit.ReasonMissingStartYear, 1)
		case p.EndYear == nil:
			drops.Add(transit.ReasonMissingEndYear, 1)
		case !plausibleYear(*p.StartYear) || !plausibleYear(*p.EndYear):
			drops.Add(transit.ReasonImplausibleYear, 1)
		case cutoff != nil && *p.EndYear < *cutoff:
			drops.Add(transit.ReasonEndBeforeCutoff, 1)
		default:
			kept = append(kept, p)
		}
	}
	return kept, drops
}

// RequireValue drops rows where variable v is missing.
func RequireValue(projects []transit.Project, v transit.Variable) ([]transit.Project, transit.Drops) {
	kept := lo.Filter(projects, func(p transit.Project, _ int) bool { return p.Value(v) != nil })
	drops := transit.Drops{}
	drops.Add(transit.ReasonMissingValue, len(projects)-len(kept))
	return kept, drops
}

func plausibleYear(y int) bool {
	return y >= transit.MinPlausibleYear && y <= transit.MaxPlausibleYear
}
