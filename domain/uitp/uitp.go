// Package uitp turns the UITP World Metro Figures regional track-length series into yearly
// new-track estimates.
package uitp

import (
	"fmt"
	"sort"
	"strings"

	lo "github.com/samber/lo"

	"metro-costs/domain/normalize"
	"metro-costs/domain/transit"
)

// The published series labels the Middle East region "MENA-Africa" although it excludes Africa.
var regionRenames = map[string]string{"MENA-Africa": "MENA"}

const totalColumn = "Total"

// Observation is the cumulative track length of a region at the end of a year.
type Observation struct {
	Year   int
	Region string
	Length transit.Metric
}

// NewTrackRow is the track added in a region during a year.
type NewTrackRow struct {
	Year         int
	Region       string
	Length       transit.Metric
	Extrapolated bool
}

// Melt reads the wide table (a Year column then one column per region) into long form. The
// Total column is dropped. Rows are ordered by region then year.
func Melt(wide transit.Frame) ([]Observation, error) {
	yearCol := -1
	for i, h := range wide.Header {
		if normalize.NormalizeHeader(h) == "year" {
			yearCol = i
			break
		}
	}
	if yearCol < 0 {
		return nil, fmt.Errorf("%s: %w year", wide.Name, transit.ErrMissingColumn)
	}

	var out []Observation
	for _, rec := range wide.Rows {
		if yearCol >= len(rec) {
			continue
		}
		year := normalize.CleanYear(rec[yearCol])
		if year == nil {
			continue
		}
		for i, h := range wide.Header {
			region := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			if i == yearCol || region == "" || strings.EqualFold(region, totalColumn) {
				continue
			}
			if r, ok := regionRenames[region]; ok {
				region = r
			}
			var m transit.Metric
			if i < len(rec) {
				m = transit.FromPtr(normalize.CleanNumeric(rec[i]))
			}
			out = append(out, Observation{Year: *year, Region: region, Length: m})
		}
	}
	sortRows(out, func(o Observation) (string, int) { return o.Region, o.Year })
	return out, nil
}

// NewTrack differences each region's cumulative length against the prior year. The earliest
// year has no prior and is dropped; a year whose prior is missing gets a Null length.
func NewTrack(obs []Observation) []NewTrackRow {
	if len(obs) == 0 {
		return nil
	}
	type key struct {
		region string
		year   int
	}
	length := make(map[key]transit.Metric, len(obs))
	for _, o := range obs {
		length[key{o.Region, o.Year}] = o.Length
	}
	first := lo.MinBy(obs, func(a, b Observation) bool { return a.Year < b.Year }).Year

	var out []NewTrackRow
	for _, o := range obs {
		if o.Year == first {
			continue
		}
		prior, ok := length[key{o.Region, o.Year - 1}]
		diff := transit.Metric{}
		if ok {
			diff = transit.Add(o.Length, transit.Mul(prior, transit.KnownValue(-1)))
		}
		out = append(out, NewTrackRow{Year: o.Year, Region: o.Region, Length: diff})
	}
	sortRows(out, func(r NewTrackRow) (string, int) { return r.Region, r.Year })
	return out
}

// Extrapolate carries each region's mean yearly new track since from into years the series
// does not cover yet.
func Extrapolate(rows []NewTrackRow, from int, years []int) []NewTrackRow {
	out := append([]NewTrackRow(nil), rows...)
	byRegion := lo.GroupBy(rows, func(r NewTrackRow) string { return r.Region })
	for _, region := range sortedKeys(byRegion) {
		series := byRegion[region]
		known := lo.FilterMap(series, func(r NewTrackRow, _ int) (float64, bool) {
			return r.Length.Value, r.Year >= from && r.Length.IsKnown()
		})
		avg := transit.Metric{}
		if len(known) > 0 {
			avg = transit.KnownValue(lo.Sum(known) / float64(len(known)))
		}
		present := lo.SliceToMap(series, func(r NewTrackRow) (int, bool) { return r.Year, true })
		for _, y := range years {
			if present[y] {
				continue
			}
			present[y] = true
			out = append(out, NewTrackRow{Year: y, Region: region, Length: avg, Extrapolated: true})
		}
	}
	sortRows(out, func(r NewTrackRow) (string, int) { return r.Region, r.Year })
	return out
}

// Regions lists the distinct regions of a series, sorted.
func Regions(rows []NewTrackRow) []string {
	regions := lo.Uniq(lo.Map(rows, func(r NewTrackRow, _ int) string { return r.Region }))
	sort.Strings(regions)
	return regions
}

func sortRows[T any](rows []T, key func(T) (string, int)) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, yi := key(rows[i])
		rj, yj := key(rows[j])
		if ri != rj {
			return ri < rj
		}
		return yi < yj
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
