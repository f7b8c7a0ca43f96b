package transit

import "strings"

// Dataset identifies which TCP table a project came from.
type Dataset string

const (
	DatasetTrack        Dataset = "track"
	DatasetRollingStock Dataset = "rolling_stock"
)

// Variable names a pro-ratable quantity of a project.
type Variable string

const (
	VarRealCost Variable = "real_cost"
	VarLength   Variable = "length"
	VarCars     Variable = "cars"
)

// Column is the output column name of the distributed variable.
func (v Variable) Column() string { return "distributed_" + string(v) }

// Project is one capital project (a line build or a rolling stock order).
// Optional numeric fields are nil when the source value is missing or unparseable.
type Project struct {
	ID        string
	Dataset   Dataset
	SourceRow int

	ISO2      string
	ISO3      string
	Country   string
	City      string
	Line      string
	Phase     string
	Reference string
	Metro     string
	Currency  string

	StartYear *int
	EndYear   *int
	PriceYear *int

	Cost     *float64 // nominal, local currency units
	PPPRate  *float64
	RealCost *float64 // USD after currency conversion
	Length   *float64 // km
	Cars     *float64

	RegionCPI          string
	DevelopmentStatus2 string
	DevelopmentStatus3 string
	UITPRegion         string
}

// IsMetro reports whether the project is flagged as metro transit.
func (p Project) IsMetro() bool {
	return strings.EqualFold(strings.TrimSpace(p.Metro), "metro")
}

// Value returns the pro-ratable quantity named by v.
func (p Project) Value(v Variable) *float64 {
	switch v {
	case VarRealCost:
		return p.RealCost
	case VarLength:
		return p.Length
	case VarCars:
		return p.Cars
	}
	return nil
}

// Span is the inclusive number of years the project covers. ok is false when a bound is missing.
func (p Project) Span() (span int, ok bool) {
	if p.StartYear == nil || p.EndYear == nil {
		return 0, false
	}
	return *p.EndYear - *p.StartYear + 1, true
}

// DistributedRow is one (project, year) share of a single variable.
type DistributedRow struct {
	Project  *Project
	Year     int
	Variable Variable
	Value    float64
}
