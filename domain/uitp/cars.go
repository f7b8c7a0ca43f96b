package uitp

import (
	"fmt"
	"strings"

	"metro-costs/domain/normalize"
	"metro-costs/domain/transit"
)

type carsKey struct {
	year   int
	region string
}

// CarsPerKm is the number of new cars delivered per km of new track, by year and region.
type CarsPerKm map[carsKey]float64

// Lookup returns the cars per km for (year, region), Null when not published.
func (c CarsPerKm) Lookup(year int, region string) transit.Metric {
	v, ok := c[carsKey{year, region}]
	if !ok {
		return transit.Metric{}
	}
	return transit.KnownValue(v)
}

// ParseCarsPerKm reads a long table with year, uitp_region and cars_per_km columns.
func ParseCarsPerKm(f transit.Frame) (CarsPerKm, error) {
	idx := map[string]int{}
	for i, h := range f.Header {
		idx[normalize.NormalizeHeader(h)] = i
	}
	for _, col := range []string{"year", "uitp_region", "cars_per_km"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%s: %w %s", f.Name, transit.ErrMissingColumn, col)
		}
	}
	out := CarsPerKm{}
	for _, rec := range f.Rows {
		get := func(col string) string {
			if j := idx[col]; j < len(rec) {
				return rec[j]
			}
			return ""
		}
		year := normalize.CleanYear(get("year"))
		v := normalize.CleanNumeric(get("cars_per_km"))
		region := strings.TrimSpace(get("uitp_region"))
		if year == nil || v == nil || region == "" {
			continue
		}
		if r, ok := regionRenames[region]; ok {
			region = r
		}
		out[carsKey{*year, region}] = *v
	}
	return out, nil
}
