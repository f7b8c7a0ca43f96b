package config

// Settings holds the pipeline-level knobs. connectors/config fills it from YAML and the
// environment; the pipelines receive it explicitly.
type Settings struct {
	Track        Track            `yaml:"track" envconfig:"TRACK"`
	RollingStock RollingStock     `yaml:"rolling_stock" envconfig:"ROLLING_STOCK"`
	Metro        Metro            `yaml:"metro" envconfig:"METRO"`
	Corrections  []CorrectionRule `yaml:"corrections" ignored:"true" validate:"dive"`
}

type Track struct {
	// MinYear drops distributed flows before this year.
	MinYear int `yaml:"min_year" envconfig:"MIN_YEAR" validate:"gte=1800,lte=2200"`
	// CostScale converts the converted cost into the reporting unit (TCP track costs are already in millions).
	CostScale float64 `yaml:"cost_scale" envconfig:"COST_SCALE" validate:"gt=0"`
}

type RollingStock struct {
	// MinEndYear drops orders finishing before this year.
	MinEndYear int `yaml:"min_end_year" envconfig:"MIN_END_YEAR" validate:"gte=1800,lte=2200"`
	// CostScale converts currency units into millions.
	CostScale float64 `yaml:"cost_scale" envconfig:"COST_SCALE" validate:"gt=0"`
	// LengthDivisor converts the raw length column into km.
	LengthDivisor float64 `yaml:"length_divisor" envconfig:"LENGTH_DIVISOR" validate:"gt=0"`
	// GlobalRows lists the global fallback rows appended to the regional output.
	GlobalRows []string `yaml:"global_rows" envconfig:"GLOBAL_ROWS" validate:"dive,oneof='global min' 'global average'"`
}

type Metro struct {
	TrackFallback        []string    `yaml:"track_fallback" envconfig:"TRACK_FALLBACK" validate:"dive,oneof='global min' 'global average'"`
	RollingStockFallback []string    `yaml:"rolling_stock_fallback" envconfig:"ROLLING_STOCK_FALLBACK" validate:"dive,oneof='global min' 'global average'"`
	Extrapolate          Extrapolate `yaml:"extrapolate" envconfig:"EXTRAPOLATE"`
	// Benchmark is the development status group used by the benchmark variant.
	Benchmark string `yaml:"benchmark" envconfig:"BENCHMARK" validate:"required"`
}

// Extrapolate repeats the average yearly track growth since FromYear into Years.
type Extrapolate struct {
	FromYear int   `yaml:"from_year" envconfig:"FROM_YEAR"`
	Years    []int `yaml:"years" envconfig:"YEARS"`
}

// CorrectionRule overrides fields of every project matching all non-empty Match fields.
type CorrectionRule struct {
	Name  string     `yaml:"name" validate:"required"`
	Match RuleMatch  `yaml:"match"`
	Set   RuleChange `yaml:"set"`
}

type RuleMatch struct {
	Dataset   string `yaml:"dataset" validate:"omitempty,oneof=track rolling_stock"`
	ISO2      string `yaml:"iso2_code"`
	City      string `yaml:"city"`
	Reference string `yaml:"reference"`
	Currency  string `yaml:"currency"`
}

type RuleChange struct {
	ISO2      string `yaml:"iso2_code"`
	Currency  string `yaml:"currency"`
	StartYear *int   `yaml:"start_year"`
	EndYear   *int   `yaml:"end_year"`
}

// Default mirrors the published methodology.
func Default() Settings {
	return Settings{
		Track: Track{MinYear: 2010, CostScale: 1},
		RollingStock: RollingStock{
			MinEndYear:    2010,
			CostScale:     1e-6,
			LengthDivisor: 1000,
			GlobalRows:    []string{"global min"},
		},
		Metro: Metro{
			RollingStockFallback: []string{"global min"},
			Extrapolate:          Extrapolate{FromYear: 2017, Years: []int{2021, 2022, 2023}},
			Benchmark:            "EMDE",
		},
	}
}
