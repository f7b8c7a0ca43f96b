package csv

import (
	"errors"
	"log/slog"

	"metro-costs/connectors/config"
	"metro-costs/domain/pipeline"
	"metro-costs/domain/transit"
	"metro-costs/domain/uitp"
)

// LoadInputs reads the tables the selected pipelines need from the configured raw directory.
// The cars-per-km table is optional: an unset name or a missing file leaves it empty.
func LoadInputs(c *config.Config, needs pipeline.Needs) (pipeline.Inputs, error) {
	var in pipeline.Inputs
	ref, err := LoadReference(ReferencePaths{
		Countries:   c.RawPath(c.Inputs.Reference),
		UITPRegions: c.RawPath(c.Inputs.UITPRegions),
		Rates:       c.RawPath(c.Inputs.Rates),
	})
	if err != nil {
		return in, err
	}
	in.Reference = ref

	if needs.Track {
		if in.Track, err = ReadFrame(c.RawPath(c.Inputs.Track)); err != nil {
			return in, err
		}
	}
	if needs.RollingStock {
		if in.RollingStock, err = ReadFrame(c.RawPath(c.Inputs.RollingStock)); err != nil {
			return in, err
		}
	}
	if needs.Metro {
		if in.TrackLength, err = ReadFrame(c.RawPath(c.Inputs.TrackLength)); err != nil {
			return in, err
		}
		if in.CarsPerKm, err = loadCarsPerKm(c); err != nil {
			return in, err
		}
	}
	slog.Info("inputs.loaded", "raw_dir", c.Paths.RawDir, "track_rows", len(in.Track.Rows),
		"rolling_stock_rows", len(in.RollingStock.Rows), "track_length_rows", len(in.TrackLength.Rows))
	return in, nil
}

func loadCarsPerKm(c *config.Config) (uitp.CarsPerKm, error) {
	if c.Inputs.CarsPerKm == "" {
		return nil, nil
	}
	f, err := ReadFrame(c.RawPath(c.Inputs.CarsPerKm))
	if errors.Is(err, transit.ErrMissingTable) {
		slog.Info("inputs.optional_missing", "table", c.Inputs.CarsPerKm)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return uitp.ParseCarsPerKm(f)
}
