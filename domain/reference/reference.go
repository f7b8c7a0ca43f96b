package reference

import (
	"strings"

	"metro-costs/domain/transit"
)

// Development status labels.
const (
	AdvancedEconomy = "Advanced Economy"
	EMDE            = "EMDE"
)

// Country is one row of the reference table.
type Country struct {
	ISO2               string
	ISO3               string
	Name               string
	RegionCPI          string
	DevelopmentStatus2 string
}

// RateKey addresses an exchange rate.
type RateKey struct {
	Year     int
	Currency string
}

// Tables are the static lookups shared read-only by every pipeline stage.
type Tables struct {
	Countries   map[string]Country // by iso2
	UITPRegions map[string]string  // iso3 -> UITP region
	Rates       map[RateKey]float64
}

// Country looks up a country by ISO2 code.
func (t *Tables) Country(iso2 string) (Country, bool) {
	c, ok := t.Countries[strings.ToUpper(strings.TrimSpace(iso2))]
	return c, ok
}

// Rate returns the local-currency-to-USD multiplier for (year, currency).
func (t *Tables) Rate(year int, currency string) (float64, bool) {
	r, ok := t.Rates[RateKey{Year: year, Currency: strings.ToUpper(strings.TrimSpace(currency))}]
	return r, ok
}

// DevelopmentStatus3 collapses the two-tier classification into advanced economies versus
// everything else (EMDEs, China and LDCs).
func DevelopmentStatus3(status2 string) string {
	s := strings.TrimSpace(status2)
	switch {
	case s == "":
		return ""
	case strings.EqualFold(s, AdvancedEconomy), strings.EqualFold(s, "Advanced Economies"):
		return AdvancedEconomy
	}
	return EMDE
}

// Enrich attaches country attributes, the collapsed development status and the UITP region.
// Unmapped keys leave the fields empty; grouping later counts them.
func (t *Tables) Enrich(projects []transit.Project) []transit.Project {
	out := make([]transit.Project, len(projects))
	for i, p := range projects {
		if c, ok := t.Country(p.ISO2); ok {
			p.ISO3 = c.ISO3
			p.Country = c.Name
			p.RegionCPI = c.RegionCPI
			p.DevelopmentStatus2 = c.DevelopmentStatus2
		}
		p.DevelopmentStatus3 = DevelopmentStatus3(p.DevelopmentStatus2)
		if p.ISO3 != "" {
			p.UITPRegion = t.UITPRegions[p.ISO3]
		}
		out[i] = p
	}
	return out
}
