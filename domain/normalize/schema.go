package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"metro-costs/domain/transit"
)

// projectNamespace seeds the SHA-1 project ids so they are stable across runs.
var projectNamespace = uuid.MustParse("6f1c1a52-8d0e-4f43-9a57-2b1d9b4c7e10")

// Schema describes how a raw TCP table maps onto projects.
type Schema struct {
	Dataset transit.Dataset
	// Aliases rename normalized headers to canonical names.
	Aliases  map[string]string
	Required []string
	// LengthDivisor converts the raw length column into km.
	LengthDivisor float64
	// PriceYearColumns are tried in order to find the year the cost is priced in.
	PriceYearColumns []string
}

// TrackSchema reads the TCP transit line cost table. Its "year" column is the project midpoint.
func TrackSchema() Schema {
	return Schema{
		Dataset:          transit.DatasetTrack,
		Aliases:          map[string]string{"country": "iso2_code", "year": "midpoint_year"},
		Required:         []string{"iso2_code", "city", "start_year", "end_year", "currency", "cost", "length", "metro"},
		LengthDivisor:    1,
		PriceYearColumns: []string{"midpoint_year"},
	}
}

// RollingStockSchema reads the TCP rolling stock table, whose lengths are in metres by default.
func RollingStockSchema(lengthDivisor float64) Schema {
	return Schema{
		Dataset:          transit.DatasetRollingStock,
		Aliases:          map[string]string{"country": "iso2_code"},
		Required:         []string{"iso2_code", "city", "start_year", "end_year", "currency", "cost", "cars", "length", "metro"},
		LengthDivisor:    lengthDivisor,
		PriceYearColumns: []string{"contract_year", "start_year"},
	}
}

// Columns normalizes a raw header and returns the canonical column index.
func (s Schema) Columns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := NormalizeHeader(h)
		if alias, ok := s.Aliases[name]; ok {
			name = alias
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, col := range s.Required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%s: %w %s", s.Dataset, transit.ErrMissingColumn, col)
		}
	}
	return idx, nil
}

// Build canonicalizes raw rows into projects. A missing required column aborts; bad cells
// become missing values.
func Build(s Schema, raw transit.Frame) ([]transit.Project, error) {
	idx, err := s.Columns(raw.Header)
	if err != nil {
		return nil, err
	}
	divisor := s.LengthDivisor
	if divisor == 0 {
		divisor = 1
	}

	out := make([]transit.Project, 0, len(raw.Rows))
	for i, rec := range raw.Rows {
		get := func(col string) string {
			j, ok := idx[col]
			if !ok || j >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[j])
		}
		first := func(cols ...string) string {
			for _, c := range cols {
				if v := get(c); v != "" {
					return v
				}
			}
			return ""
		}

		p := transit.Project{
			ID:        projectID(s.Dataset, i, rec),
			Dataset:   s.Dataset,
			SourceRow: i + 1,
			ISO2:      strings.ToUpper(get("iso2_code")),
			City:      get("city"),
			Line:      first("line", "trainset"),
			Phase:     get("phase"),
			Reference: first("reference", "reference1", "source1"),
			Metro:     get("metro"),
			Currency:  strings.ToUpper(get("currency")),
			StartYear: CleanYear(get("start_year")),
			EndYear:   CleanYear(get("end_year")),
			Cost:      CleanNumeric(get("cost")),
			PPPRate:   CleanNumeric(get("ppp_rate")),
			Cars:      CleanNumeric(get("cars")),
		}
		if l := CleanNumeric(get("length")); l != nil {
			km := *l / divisor
			p.Length = &km
		}
		for _, col := range s.PriceYearColumns {
			if y := CleanYear(get(col)); y != nil {
				p.PriceYear = y
				break
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func projectID(ds transit.Dataset, row int, rec []string) string {
	key := string(ds) + "\x1f" + strconv.Itoa(row) + "\x1f" + strings.Join(rec, "\x1f")
	return uuid.NewSHA1(projectNamespace, []byte(key)).String()
}
