// Package chart renders the metro cost series as a PNG line chart.
package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"metro-costs/domain/transit"
)

// Columns read from the metro frame.
const (
	YearColumn   = "year"
	GroupColumn  = "uitp_region"
	ValueColumn  = "value_usdm"
	defaultTitle = "Metro network costs (USD m)"
)

// Series returns the points of valueCol over yearCol for every group, skipping blank and
// undefined cells. Points are sorted by year.
func Series(f transit.Frame, yearCol, groupCol, valueCol string) (map[string]plotter.XYs, error) {
	yi, gi, vi := f.Column(yearCol), f.Column(groupCol), f.Column(valueCol)
	for _, col := range []string{yearCol, groupCol, valueCol} {
		if f.Column(col) < 0 {
			return nil, fmt.Errorf("%s: %w %s", f.Name, transit.ErrMissingColumn, col)
		}
	}
	out := map[string]plotter.XYs{}
	for _, row := range f.Rows {
		if len(row) <= max(yi, gi, vi) {
			continue
		}
		year, err := strconv.Atoi(row[yi])
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(row[vi], 64)
		if err != nil {
			continue
		}
		out[row[gi]] = append(out[row[gi]], plotter.XY{X: float64(year), Y: v})
	}
	for _, xys := range out {
		sort.Slice(xys, func(i, j int) bool { return xys[i].X < xys[j].X })
	}
	return out, nil
}

// RenderMetro plots value_usdm by UITP region over years and saves it to path.
func RenderMetro(path string, f transit.Frame) error {
	series, err := Series(f, YearColumn, GroupColumn, ValueColumn)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = defaultTitle
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "USD m"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	groups := make([]string, 0, len(series))
	for g := range series {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for i, g := range groups {
		line, points, err := plotter.NewLinePoints(series[g])
		if err != nil {
			return fmt.Errorf("series %s: %w", g, err)
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(g, line, points)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}
