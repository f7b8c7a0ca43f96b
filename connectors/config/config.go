package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"metro-costs/domain/config"
)

const (
	// PathEnv selects the YAML file.
	PathEnv     = "CONFIG_PATH"
	DefaultPath = "./config.yml"
	// EnvPrefix prefixes every environment override, e.g. METRO_TRACK_MIN_YEAR.
	EnvPrefix = "METRO"
)

// Config represents config.yml. Pipeline settings are inlined at the top level.
type Config struct {
	Log             Log    `yaml:"log" envconfig:"LOG"`
	Paths           Paths  `yaml:"paths" envconfig:"PATHS"`
	Inputs          Inputs `yaml:"inputs" envconfig:"INPUTS"`
	Sinks           Sinks  `yaml:"sinks" envconfig:"SINKS"`
	Web             Web    `yaml:"web" envconfig:"WEB"`
	config.Settings `yaml:",inline"`
	// Source is the file the configuration was read from, empty for built-in defaults.
	Source string `yaml:"-" ignored:"true"`
}

type Log struct {
	Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
}

type Paths struct {
	RawDir    string `yaml:"raw_dir" envconfig:"RAW_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// Inputs are file names relative to paths.raw_dir.
type Inputs struct {
	Track        string `yaml:"track" envconfig:"TRACK" validate:"required"`
	RollingStock string `yaml:"rolling_stock" envconfig:"ROLLING_STOCK" validate:"required"`
	Reference    string `yaml:"reference" envconfig:"REFERENCE" validate:"required"`
	UITPRegions  string `yaml:"uitp_regions" envconfig:"UITP_REGIONS" validate:"required"`
	Rates        string `yaml:"exchange_rates" envconfig:"EXCHANGE_RATES" validate:"required"`
	TrackLength  string `yaml:"track_length" envconfig:"TRACK_LENGTH" validate:"required"`
	// CarsPerKm is optional: an empty name or a missing file disables it.
	CarsPerKm string `yaml:"cars_per_km" envconfig:"CARS_PER_KM"`
}

// Sinks are file names relative to paths.output_dir. An empty name disables the sink.
type Sinks struct {
	Workbook        string `yaml:"workbook" envconfig:"WORKBOOK" validate:"omitempty,endswith=.xlsx"`
	SQLite          string `yaml:"sqlite" envconfig:"SQLITE"`
	Chart           string `yaml:"chart" envconfig:"CHART" validate:"omitempty,endswith=.png"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE" validate:"omitempty,endswith=.prom"`
}

type Web struct {
	Addr string `yaml:"addr" envconfig:"ADDR" validate:"required"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Log:   Log{Level: "info"},
		Paths: Paths{RawDir: "data/raw", OutputDir: "data/output"},
		Inputs: Inputs{
			Track:        "track_cost_tcp_raw.csv",
			RollingStock: "rolling_stock_cost_tcp_raw.csv",
			Reference:    "reference_tables.csv",
			UITPRegions:  "UITP country-region mapping.csv",
			Rates:        "exchange_rates.csv",
			TrackLength:  "uitp_track_length_data.csv",
			CarsPerKm:    "uitp_cars_per_km.csv",
		},
		Sinks: Sinks{
			Workbook:        "metro_costs.xlsx",
			SQLite:          "metro_costs.db",
			Chart:           "metro_costs.png",
			MetricsTextfile: "metro_costs.prom",
		},
		Web:      Web{Addr: ":8080"},
		Settings: config.Default(),
	}
}

// Load parses the YAML configuration file at path over the defaults, applies METRO_*
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := finish(&c); err != nil {
		return nil, err
	}
	c.Source = path
	return &c, nil
}

// FromEnv loads CONFIG_PATH, or ./config.yml when unset. A missing default file falls back
// to the built-in defaults (Source is then empty); a missing explicit file is an error.
func FromEnv() (*Config, error) {
	path := os.Getenv(PathEnv)
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	c, err := Load(path)
	if err == nil {
		return c, nil
	}
	if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	d := Default()
	if err := finish(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func finish(c *Config) error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return c.Validate()
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level maps log.level onto slog.
func (c *Config) Level() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// RawPath resolves an input file name.
func (c *Config) RawPath(name string) string { return filepath.Join(c.Paths.RawDir, name) }

// OutputPath resolves an output file name.
func (c *Config) OutputPath(name string) string { return filepath.Join(c.Paths.OutputDir, name) }
