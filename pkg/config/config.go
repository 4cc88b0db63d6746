package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/anrid/japan-census/pkg/census"
)

// DefaultPath is where the commands look for an optional config file.
const DefaultPath = "census.yaml"

// Config holds all settings of the census preparation tools.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Rules   census.Rules  `yaml:"rules"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig locates the raw census exports and the reference data.
type InputConfig struct {
	CensusDir           string `yaml:"census_dir"`
	DesignatedCityFile  string `yaml:"designated_city_file"`
	DesignatedCitySheet int    `yaml:"designated_city_sheet"` // 0-based
	AreaFile            string `yaml:"area_file"`
	AreaCodeColumn      string `yaml:"area_code_column"`
	AreaColumn          string `yaml:"area_column"`
}

// OutputConfig locates the generated files.
type OutputConfig struct {
	CSV         string `yaml:"csv"`
	ShiftJISCSV string `yaml:"shift_jis_csv"`
	Database    string `yaml:"database"` // empty disables the database
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			CensusDir:           "../0.input_data/kokusei_research/",
			DesignatedCityFile:  "../0.input_data/sub_data/政令指定都市区データ.xlsx",
			DesignatedCitySheet: 1,
			AreaFile:            "../0.input_data/sub_data/R1_R4_all_mencho.csv",
			AreaCodeColumn:      "標準地域コード",
			AreaColumn:          "令和4年10月1日(k㎡)",
		},
		Output: OutputConfig{
			CSV:         "../2.output_data/data_population_1980to2020.csv",
			ShiftJISCSV: "../2.output_data/data_population_1980to2020_shift_jis.csv",
			Database:    "../2.output_data/data_population_1980to2020.db",
		},
		Rules: census.DefaultRules(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	required := map[string]string{
		"input.census_dir":           c.Input.CensusDir,
		"input.designated_city_file": c.Input.DesignatedCityFile,
		"input.area_file":            c.Input.AreaFile,
		"input.area_code_column":     c.Input.AreaCodeColumn,
		"input.area_column":          c.Input.AreaColumn,
		"output.csv":                 c.Output.CSV,
		"output.shift_jis_csv":       c.Output.ShiftJISCSV,
	}
	for key, v := range required {
		if v == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	if c.Input.DesignatedCitySheet < 0 {
		return fmt.Errorf("input.designated_city_sheet must not be negative")
	}
	return c.Rules.Validate()
}

// PipelineOptions converts the file settings into pipeline options.
func (c *Config) PipelineOptions() census.Options {
	return census.Options{
		CensusDir:           c.Input.CensusDir,
		DesignatedCityFile:  c.Input.DesignatedCityFile,
		DesignatedCitySheet: c.Input.DesignatedCitySheet,
		AreaFile:            c.Input.AreaFile,
		AreaCodeColumn:      c.Input.AreaCodeColumn,
		AreaColumn:          c.Input.AreaColumn,
		OutputCSV:           c.Output.CSV,
		OutputShiftJISCSV:   c.Output.ShiftJISCSV,
		Database:            c.Output.Database,
	}
}

// NewLogger builds the zap logger described by the logging settings.
func NewLogger(c LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if c.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level '%s': %w", c.Level, err)
		}
		zc.Level = level
	}
	return zc.Build()
}
