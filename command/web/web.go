package web

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"metro-costs/connectors/config"
	ccsv "metro-costs/connectors/csv"
	"metro-costs/domain/pipeline"
	"metro-costs/domain/transit"
)

// Outputs served under /api/<name>, in pipeline order.
var Outputs = []string{
	pipeline.OutDevStatusTrack,
	pipeline.OutRegionalTrack,
	pipeline.OutCountryTrack,
	pipeline.OutDevStatusRolling,
	pipeline.OutRegionalRolling,
	pipeline.OutMetro,
	pipeline.OutMetroBenchmark,
	"exclusions",
}

// Run starts a small Echo web server exposing the output CSVs as JSON and an optional SPA
// dashboard.
//
// Usage:
//
//	metro-costs web [-addr :8080] [-data <output_dir>] [-ui ./ui/dist]
//
// Endpoints:
//
//	GET /api/outputs              -> names of the outputs present in <data>
//	GET /api/<output>             -> <data>/<output>.csv as an array of objects
//
// When -ui points to a built Vite app (index.html exists), static files are served at / and
// unknown routes fall back to index.html for SPA routing.
func Run(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Web.Addr, "http listen address (host:port)")
	dataDir := fs.String("data", cfg.Paths.OutputDir, "directory containing output CSV files")
	uiDir := fs.String("ui", "./ui/dist", "directory containing built UI (Vite dist)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return newServer(*dataDir, *uiDir).Start(*addr)
}

func newServer(dataDir, uiDir string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.GET("/api/outputs", func(c echo.Context) error {
		present := make([]string, 0, len(Outputs))
		for _, name := range Outputs {
			if fi, err := os.Stat(filepath.Join(dataDir, name+".csv")); err == nil && !fi.IsDir() {
				present = append(present, name)
			}
		}
		return c.JSON(http.StatusOK, present)
	})

	// Helper to register a GET endpoint serving a specific CSV file
	serveCSV := func(route string, filename string) {
		e.GET(route, func(c echo.Context) error {
			path := filepath.Join(dataDir, filename)
			frame, err := ccsv.ReadFrame(path)
			if err != nil {
				if errors.Is(err, transit.ErrMissingTable) {
					return c.JSON(http.StatusNotFound, map[string]any{
						"error":   "file not found",
						"path":    path,
						"message": "CSV file is missing, run calculate first",
					})
				}
				return c.JSON(http.StatusInternalServerError, map[string]any{
					"error":   err.Error(),
					"path":    path,
					"message": "failed to read CSV",
				})
			}
			return c.JSON(http.StatusOK, records(frame))
		})
	}
	for _, name := range Outputs {
		serveCSV("/api/"+name, name+".csv")
	}

	// Static UI (optional)
	indexPath := filepath.Join(uiDir, "index.html")
	if fi, err := os.Stat(indexPath); err == nil && !fi.IsDir() {
		e.Static("/", uiDir)
		e.GET("/", func(c echo.Context) error { return c.File(indexPath) })

		// non-API 404s fall back to index.html so client-side routes resolve
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			var he *echo.HTTPError
			if errors.As(err, &he) && he.Code == http.StatusNotFound {
				if !strings.HasPrefix(c.Request().URL.Path, "/api") {
					_ = c.File(indexPath)
					return
				}
			}
			e.DefaultHTTPErrorHandler(err, c)
		}
	}
	return e
}

// records turns a frame into objects keyed by header. Values stay strings so blanks and the
// undefined marker survive unchanged.
func records(f transit.Frame) []map[string]string {
	res := make([]map[string]string, 0, len(f.Rows))
	for _, row := range f.Rows {
		obj := make(map[string]string, len(f.Header))
		for j := 0; j < len(f.Header) && j < len(row); j++ {
			obj[f.Header[j]] = row[j]
		}
		res = append(res, obj)
	}
	return res
}
