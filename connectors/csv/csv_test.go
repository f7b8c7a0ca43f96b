package csv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	lo "github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metro-costs/connectors/config"
	"metro-costs/domain/pipeline"
	"metro-costs/domain/reference"
	"metro-costs/domain/transit"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadFrame(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "track_cost_tcp_raw.csv", "\ufeffCountry,City,Cost\nGB,London,\"1,000\"\n,,\nIN,Delhi\n")

	f, err := ReadFrame(path)
	require.NoError(t, err)
	assert.Equal(t, "track_cost_tcp_raw", f.Name)
	assert.Equal(t, []string{"\ufeffCountry", "City", "Cost"}, f.Header)
	assert.Equal(t, [][]string{{"GB", "London", "1,000"}, {"IN", "Delhi"}}, f.Rows, "blank rows skipped, ragged rows kept")

	_, err = ReadFrame(filepath.Join(dir, "missing.csv"))
	assert.True(t, errors.Is(err, transit.ErrMissingTable))
}

func TestWriteAllCSVsRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	frames := []transit.Frame{
		{Name: "regional_cost_track_per_km", Header: []string{"uitp_region", "distributed_year", "cost_per_km"}, Rows: [][]string{{"Europe", "2020", "62.5"}, {"MENA", "2020", "undefined"}}},
		{Name: "empty", Header: []string{"a"}},
	}
	require.NoError(t, WriteAllCSVs(dir, frames))

	got, err := ReadFrame(filepath.Join(dir, "regional_cost_track_per_km.csv"))
	require.NoError(t, err)
	assert.Equal(t, frames[0], got)

	empty, err := ReadFrame(filepath.Join(dir, "empty.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, empty.Header)
	assert.Empty(t, empty.Rows)
}

func TestLoadReference(t *testing.T) {
	dir := t.TempDir()
	paths := ReferencePaths{
		Countries:   write(t, dir, "reference_tables.csv", "country_cpi,region_cpi,development_status_2,iso2_code,iso3_code,extra\nUnited Kingdom,Western Europe,Advanced Economies,GB,GBR,x\nIndia,South Asia,EMDEs,in,ind,y\n"),
		UITPRegions: write(t, dir, "UITP country-region mapping.csv", "Country,iso3_code,uitp_region\nUK,GBR,Europe\nIndia,IND,Asia-Pacific\nNowhere,,\n"),
		Rates:       write(t, dir, "exchange_rates.csv", "year,currency,rate\n2020,GBP,1.28\n2020,inr,0.0135\nbad,GBP,1\n"),
	}
	tables, err := LoadReference(paths)
	require.NoError(t, err)

	gb, ok := tables.Country("gb")
	require.True(t, ok)
	assert.Equal(t, reference.Country{ISO2: "GB", ISO3: "GBR", Name: "United Kingdom", RegionCPI: "Western Europe", DevelopmentStatus2: "Advanced Economies"}, gb)
	assert.Equal(t, "IND", tables.Countries["IN"].ISO3)
	assert.Equal(t, map[string]string{"GBR": "Europe", "IND": "Asia-Pacific"}, tables.UITPRegions)

	rate, ok := tables.Rate(2020, "INR")
	require.True(t, ok)
	assert.Equal(t, 0.0135, rate)
	assert.Len(t, tables.Rates, 2)
}

func TestLoadReferenceStructuralErrors(t *testing.T) {
	dir := t.TempDir()
	paths := ReferencePaths{
		Countries:   write(t, dir, "reference_tables.csv", "iso2_code,iso3_code\nGB,GBR\n"),
		UITPRegions: write(t, dir, "uitp.csv", "iso3_code,uitp_region\n"),
		Rates:       write(t, dir, "rates.csv", "year,currency,rate\n"),
	}
	_, err := LoadReference(paths)
	require.Error(t, err)
	assert.True(t, errors.Is(err, transit.ErrMissingColumn))
	assert.Contains(t, err.Error(), "region_cpi")

	_, err = ParseRates(transit.Frame{Name: "rates", Header: []string{"year", "currency", "rate"}, Rows: [][]string{{"2020", "GBP", "1"}, {"2020", "gbp", "2"}}})
	assert.ErrorContains(t, err, "conflicting rates")
}

func TestWriteProjectsAndExclusions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staging", "projects_track.csv")
	projects := []transit.Project{{
		ID: "id-1", Dataset: transit.DatasetTrack, SourceRow: 3, ISO2: "GB", City: "London", Metro: "Metro",
		StartYear: lo.ToPtr(2018), EndYear: lo.ToPtr(2022), Cost: lo.ToPtr(500.0), Length: lo.ToPtr(10.5),
	}}
	require.NoError(t, WriteProjects(path, projects))

	f, err := ReadFrame(path)
	require.NoError(t, err)
	require.Len(t, f.Rows, 1)
	assert.Equal(t, ProjectHeader, f.Header)
	row := f.Rows[0]
	assert.Equal(t, "id-1", row[f.Column("project_id")])
	assert.Equal(t, "2018", row[f.Column("start_year")])
	assert.Equal(t, "", row[f.Column("price_year")])
	assert.Equal(t, "10.5", row[f.Column("length")])

	pf := ProjectsFrame(projects)
	assert.Equal(t, ProjectHeader, pf.Header)
	assert.Equal(t, f.Rows, pf.Rows, "the snapshot is the rendered frame")

	ex := ExclusionsFrame([]transit.Exclusion{{Stage: "track.metro", Reason: transit.ReasonNotMetro, Count: 4}})
	assert.Equal(t, [][]string{{"track.metro", "not_metro", "4"}}, ex.Rows)
}

func TestLoadInputs(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "reference_tables.csv", "country_cpi,region_cpi,development_status_2,iso2_code,iso3_code\nUnited Kingdom,Western Europe,Advanced Economies,GB,GBR\n")
	write(t, dir, "UITP country-region mapping.csv", "iso3_code,uitp_region\nGBR,Europe\n")
	write(t, dir, "exchange_rates.csv", "year,currency,rate\n2020,GBP,1.28\n")
	write(t, dir, "track_cost_tcp_raw.csv", "Country,City\nGB,London\n")
	write(t, dir, "uitp_track_length_data.csv", "Year,Europe\n2019,100\n")

	c := config.Default()
	c.Paths.RawDir = dir

	in, err := LoadInputs(&c, pipeline.Needs{Track: true})
	require.NoError(t, err)
	assert.Len(t, in.Track.Rows, 1)
	assert.Empty(t, in.RollingStock.Rows)
	assert.Contains(t, in.Reference.UITPRegions, "GBR")

	_, err = LoadInputs(&c, pipeline.Needs{RollingStock: true})
	assert.ErrorIs(t, err, transit.ErrMissingTable)

	c.Inputs.CarsPerKm = "cars_per_km.csv"
	in, err = LoadInputs(&c, pipeline.Needs{Metro: true})
	require.NoError(t, err, "cars per km is optional")
	assert.Nil(t, in.CarsPerKm)
	assert.Len(t, in.TrackLength.Rows, 1)

	write(t, dir, "cars_per_km.csv", "year,uitp_region,cars_per_km\n2019,Europe,8\n")
	in, err = LoadInputs(&c, pipeline.Needs{Metro: true})
	require.NoError(t, err)
	assert.Equal(t, 8.0, in.CarsPerKm.Lookup(2019, "Europe").Value)
}
