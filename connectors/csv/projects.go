package csv

import (
	"strconv"

	"metro-costs/domain/transit"
)

// ProjectHeader is the column order of a normalized project snapshot.
var ProjectHeader = []string{
	"project_id", "dataset", "source_row", "iso2_code", "iso3_code", "country_cpi", "city", "line", "phase",
	"reference", "metro", "currency", "start_year", "end_year", "price_year", "cost", "ppp_rate", "real_cost",
	"length", "cars", "region_cpi", "development_status_2", "development_status_3", "uitp_region",
}

// WriteProjects writes a complete snapshot of normalized projects.
func WriteProjects(path string, projects []transit.Project) error {
	return WriteFrame(path, ProjectsFrame(projects))
}

// ProjectsFrame renders projects in ProjectHeader order.
func ProjectsFrame(projects []transit.Project) transit.Frame {
	f := transit.Frame{Name: "projects", Header: ProjectHeader, Rows: make([][]string, 0, len(projects))}
	for _, p := range projects {
		f.Rows = append(f.Rows, []string{
			p.ID,
			string(p.Dataset),
			strconv.Itoa(p.SourceRow),
			p.ISO2,
			p.ISO3,
			p.Country,
			p.City,
			p.Line,
			p.Phase,
			p.Reference,
			p.Metro,
			p.Currency,
			intOrEmpty(p.StartYear),
			intOrEmpty(p.EndYear),
			intOrEmpty(p.PriceYear),
			floatOrEmpty(p.Cost),
			floatOrEmpty(p.PPPRate),
			floatOrEmpty(p.RealCost),
			floatOrEmpty(p.Length),
			floatOrEmpty(p.Cars),
			p.RegionCPI,
			p.DevelopmentStatus2,
			p.DevelopmentStatus3,
			p.UITPRegion,
		})
	}
	return f
}

// ExclusionsFrame renders the ledger as stage, reason, count.
func ExclusionsFrame(entries []transit.Exclusion) transit.Frame {
	f := transit.Frame{Name: "exclusions", Header: []string{"stage", "reason", "count"}}
	for _, e := range entries {
		f.Rows = append(f.Rows, []string{e.Stage, string(e.Reason), strconv.Itoa(e.Count)})
	}
	return f
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
