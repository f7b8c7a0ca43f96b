package csv

import (
	"fmt"
	"strings"

	"metro-costs/domain/normalize"
	"metro-costs/domain/reference"
	"metro-costs/domain/transit"
)

// ReferencePaths locates the lookup tables.
type ReferencePaths struct {
	Countries   string
	UITPRegions string
	Rates       string
}

// LoadReference reads the country reference table, the UITP country-region mapping and the
// long-format exchange-rate table.
func LoadReference(p ReferencePaths) (*reference.Tables, error) {
	countries, err := ReadFrame(p.Countries)
	if err != nil {
		return nil, err
	}
	regions, err := ReadFrame(p.UITPRegions)
	if err != nil {
		return nil, err
	}
	rates, err := ReadFrame(p.Rates)
	if err != nil {
		return nil, err
	}

	t := &reference.Tables{}
	if t.Countries, err = ParseCountries(countries); err != nil {
		return nil, err
	}
	if t.UITPRegions, err = ParseUITPRegions(regions); err != nil {
		return nil, err
	}
	if t.Rates, err = ParseRates(rates); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseCountries keys reference_tables.csv by iso2_code.
func ParseCountries(f transit.Frame) (map[string]reference.Country, error) {
	idx := indexMap(f.Header)
	if err := requireColumns(f.Name, idx, "iso2_code", "iso3_code", "region_cpi", "development_status_2"); err != nil {
		return nil, err
	}
	out := make(map[string]reference.Country, len(f.Rows))
	for _, rec := range f.Rows {
		iso2 := strings.ToUpper(field(rec, idx, "iso2_code"))
		if iso2 == "" {
			continue
		}
		out[iso2] = reference.Country{
			ISO2:               iso2,
			ISO3:               strings.ToUpper(field(rec, idx, "iso3_code")),
			Name:               field(rec, idx, "country_cpi"),
			RegionCPI:          field(rec, idx, "region_cpi"),
			DevelopmentStatus2: field(rec, idx, "development_status_2"),
		}
	}
	return out, nil
}

// ParseUITPRegions keys the UITP mapping by iso3_code.
func ParseUITPRegions(f transit.Frame) (map[string]string, error) {
	idx := indexMap(f.Header)
	if err := requireColumns(f.Name, idx, "iso3_code", "uitp_region"); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(f.Rows))
	for _, rec := range f.Rows {
		iso3 := strings.ToUpper(field(rec, idx, "iso3_code"))
		region := field(rec, idx, "uitp_region")
		if iso3 == "" || region == "" {
			continue
		}
		out[iso3] = region
	}
	return out, nil
}

// ParseRates reads (year, currency, rate) rows. Unparseable rows are skipped.
func ParseRates(f transit.Frame) (map[reference.RateKey]float64, error) {
	idx := indexMap(f.Header)
	if err := requireColumns(f.Name, idx, "year", "currency", "rate"); err != nil {
		return nil, err
	}
	out := make(map[reference.RateKey]float64, len(f.Rows))
	for _, rec := range f.Rows {
		year := normalize.CleanYear(field(rec, idx, "year"))
		rate := normalize.CleanNumeric(field(rec, idx, "rate"))
		cur := strings.ToUpper(field(rec, idx, "currency"))
		if year == nil || rate == nil || cur == "" {
			continue
		}
		key := reference.RateKey{Year: *year, Currency: cur}
		if prev, dup := out[key]; dup && prev != *rate {
			return nil, fmt.Errorf("%s: conflicting rates for %s %d", f.Name, cur, *year)
		}
		out[key] = *rate
	}
	return out, nil
}
