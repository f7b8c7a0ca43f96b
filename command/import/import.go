package cmdimport

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"metro-costs/connectors/config"
	ccsv "metro-costs/connectors/csv"
	"metro-costs/domain/pipeline"
	"metro-costs/domain/transit"
)

// Datasets accepted by -dataset.
const (
	DatasetTrack        = "track"
	DatasetRollingStock = "rolling_stock"
	DatasetAll          = "all"
)

// Run executes the import subcommand: raw project tables are normalized, corrected, filtered and
// converted to USD, then written to the output directory as staging snapshots together with the
// exclusion ledger.
//
// Usage:
//
//	metro-costs import [-dataset track|rolling_stock|all]
func Run(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dataset := fs.String("dataset", DatasetAll, "dataset to import: track, rolling_stock or all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var needs pipeline.Needs
	switch *dataset {
	case DatasetTrack:
		needs.Track = true
	case DatasetRollingStock:
		needs.RollingStock = true
	case DatasetAll:
		needs.Track, needs.RollingStock = true, true
	default:
		return fmt.Errorf("unknown dataset %q", *dataset)
	}

	return Import(cfg, needs)
}

// Import stages the datasets selected by needs. Needs.Metro is ignored.
func Import(cfg *config.Config, needs pipeline.Needs) error {
	in, err := ccsv.LoadInputs(cfg, pipeline.Needs{Track: needs.Track, RollingStock: needs.RollingStock})
	if err != nil {
		return err
	}
	ledger := transit.NewLedger()

	if needs.Track {
		projects, err := pipeline.PrepareTrack(in, cfg.Settings, ledger)
		if err != nil {
			return fmt.Errorf("track: %w", err)
		}
		if err := stage(cfg, transit.DatasetTrack, projects); err != nil {
			return err
		}
	}
	if needs.RollingStock {
		projects, err := pipeline.PrepareRollingStock(in, cfg.Settings, ledger)
		if err != nil {
			return fmt.Errorf("rolling stock: %w", err)
		}
		if err := stage(cfg, transit.DatasetRollingStock, projects); err != nil {
			return err
		}
	}

	ex := ccsv.ExclusionsFrame(ledger.Entries())
	if err := ccsv.WriteFrame(cfg.OutputPath(ex.Name+".csv"), ex); err != nil {
		return err
	}
	slog.Info("import.done", "excluded", ledger.Total(), "output_dir", cfg.Paths.OutputDir)
	return nil
}

func stage(cfg *config.Config, dataset transit.Dataset, projects []transit.Project) error {
	path := cfg.OutputPath(fmt.Sprintf("projects_%s.csv", dataset))
	if err := ccsv.WriteProjects(path, projects); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("import.staged", "dataset", dataset, "projects", len(projects), "path", path)
	return nil
}
