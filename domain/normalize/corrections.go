package normalize

import (
	lo "github.com/samber/lo"

	"metro-costs/domain/config"
	"metro-costs/domain/transit"
)

// BuiltinCorrections are the known data-entry fixes in the published TCP tables.
func BuiltinCorrections() []config.CorrectionRule {
	return []config.CorrectionRule{
		{
			Name:  "london-iso2",
			Match: config.RuleMatch{City: "London"},
			Set:   config.RuleChange{ISO2: "GB"},
		},
		{
			Name:  "santo-domingo-iso2",
			Match: config.RuleMatch{Dataset: string(transit.DatasetTrack), City: "Santo Domingo"},
			Set:   config.RuleChange{ISO2: "DO"},
		},
		{
			Name:  "bahraini-dinar-code",
			Match: config.RuleMatch{Currency: "BD"},
			Set:   config.RuleChange{Currency: "BHD"},
		},
		{
			// start year 2027 was entered with end year 2026
			Name: "calsta-end-year",
			Match: config.RuleMatch{
				Dataset:   string(transit.DatasetRollingStock),
				ISO2:      "US",
				City:      "CalSTA",
				Reference: "https://dot.ca.gov/news-releases/news-release-2024-007",
			},
			Set: config.RuleChange{EndYear: lo.ToPtr(2027)},
		},
	}
}

func matches(m config.RuleMatch, p transit.Project) bool {
	return (m.Dataset == "" || m.Dataset == string(p.Dataset)) &&
		(m.ISO2 == "" || m.ISO2 == p.ISO2) &&
		(m.City == "" || m.City == p.City) &&
		(m.Reference == "" || m.Reference == p.Reference) &&
		(m.Currency == "" || m.Currency == p.Currency)
}

func apply(c config.RuleChange, p transit.Project) transit.Project {
	if c.ISO2 != "" {
		p.ISO2 = c.ISO2
	}
	if c.Currency != "" {
		p.Currency = c.Currency
	}
	if c.StartYear != nil {
		p.StartYear = lo.ToPtr(*c.StartYear)
	}
	if c.EndYear != nil {
		p.EndYear = lo.ToPtr(*c.EndYear)
	}
	return p
}

// ApplyCorrections runs every rule, in order, against every project. Rules only set constant
// values, so applying them twice gives the same result as once.
func ApplyCorrections(projects []transit.Project, rules []config.CorrectionRule) []transit.Project {
	return lo.Map(projects, func(p transit.Project, _ int) transit.Project {
		for _, r := range rules {
			if matches(r.Match, p) {
				p = apply(r.Set, p)
			}
		}
		return p
	})
}
