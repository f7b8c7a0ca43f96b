package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ccsv "metro-costs/connectors/csv"
	"metro-costs/domain/pipeline"
	"metro-costs/domain/transit"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServeOutputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ccsv.WriteFrame(filepath.Join(dir, pipeline.OutMetro+".csv"), transit.Frame{
		Header: []string{"year", "uitp_region", "value_usdm"},
		Rows:   [][]string{{"2019", "Europe", "1350"}, {"2018", "MENA", ""}},
	}))
	e := newServer(dir, filepath.Join(dir, "no-ui"))

	rec := get(t, e, "/api/"+pipeline.OutMetro)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Equal(t, []map[string]string{
		{"year": "2019", "uitp_region": "Europe", "value_usdm": "1350"},
		{"year": "2018", "uitp_region": "MENA", "value_usdm": ""},
	}, rows)

	rec = get(t, e, "/api/outputs")
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{pipeline.OutMetro}, names)

	rec = get(t, e, "/api/exclusions")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "file not found")
}

func TestServeSPAFallback(t *testing.T) {
	dir := t.TempDir()
	ui := filepath.Join(dir, "ui")
	require.NoError(t, os.MkdirAll(ui, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ui, "index.html"), []byte("<html>metro</html>"), 0o644))
	e := newServer(dir, ui)

	rec := get(t, e, "/charts/europe")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "metro")

	rec = get(t, e, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
