package calculate

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"metro-costs/connectors/chart"
	"metro-costs/connectors/config"
	ccsv "metro-costs/connectors/csv"
	"metro-costs/connectors/metrics"
	"metro-costs/connectors/sqlite"
	"metro-costs/connectors/xlsx"
	"metro-costs/domain/pipeline"
)

// Run executes the calculate subcommand.
//
// Usage:
//
//	metro-costs calculate [-pipeline all|track|rolling_stock|metro]
//
// Every output frame is written to <output_dir>/<name>.csv, followed by exclusions.csv and the
// enabled sinks (workbook, SQLite database, chart and metrics textfile).
func Run(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	name := fs.String("pipeline", string(pipeline.SelectAll), "pipeline to run: all, track, rolling_stock or metro")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sel, err := pipeline.ParseSelection(*name)
	if err != nil {
		return err
	}
	_, err = Calculate(context.Background(), cfg, sel)
	return err
}

// Calculate loads the inputs, runs the selected pipelines and writes every output.
func Calculate(ctx context.Context, cfg *config.Config, sel pipeline.Selection) (*pipeline.Result, error) {
	start := time.Now()
	in, err := ccsv.LoadInputs(cfg, sel.Needs())
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Run(ctx, in, cfg.Settings, sel)
	if err != nil {
		return nil, err
	}

	if err := ccsv.WriteAllCSVs(cfg.Paths.OutputDir, res.Frames); err != nil {
		return nil, err
	}
	ex := ccsv.ExclusionsFrame(res.Ledger.Entries())
	if err := ccsv.WriteFrame(cfg.OutputPath(ex.Name+".csv"), ex); err != nil {
		return nil, err
	}
	if err := writeSinks(ctx, cfg, res, time.Since(start)); err != nil {
		return nil, err
	}
	slog.Info("calculate.done", "selection", sel, "frames", len(res.Frames), "output_dir", cfg.Paths.OutputDir, "took", time.Since(start))
	return res, nil
}

func writeSinks(ctx context.Context, cfg *config.Config, res *pipeline.Result, took time.Duration) error {
	all := append(slices.Clone(res.Frames), ccsv.ExclusionsFrame(res.Ledger.Entries()))

	if name := cfg.Sinks.Workbook; name != "" {
		path := cfg.OutputPath(name)
		if err := xlsx.WriteWorkbook(path, all); err != nil {
			return fmt.Errorf("workbook: %w", err)
		}
		slog.Info("sink.written", "sink", "workbook", "path", path)
	}
	if name := cfg.Sinks.SQLite; name != "" {
		path := cfg.OutputPath(name)
		if err := sqlite.WriteDatabase(ctx, path, all); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		slog.Info("sink.written", "sink", "sqlite", "path", path)
	}
	if name := cfg.Sinks.Chart; name != "" {
		// the chart only exists when the metro pipeline ran
		if metro, ok := res.Frame(pipeline.OutMetro); ok {
			path := cfg.OutputPath(name)
			if err := chart.RenderMetro(path, metro); err != nil {
				return fmt.Errorf("chart: %w", err)
			}
			slog.Info("sink.written", "sink", "chart", "path", path)
		}
	}
	if name := cfg.Sinks.MetricsTextfile; name != "" {
		path := cfg.OutputPath(name)
		run := metrics.NewRun()
		run.Observe(res.Frames, res.Ledger.Entries(), took)
		if err := run.WriteTextfile(path); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		slog.Info("sink.written", "sink", "metrics", "path", path)
	}
	return nil
}
