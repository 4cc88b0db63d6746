package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/anrid/japan-census/pkg/census"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "../0.input_data/kokusei_research/", cfg.Input.CensusDir)
	assert.Equal(t, 1, cfg.Input.DesignatedCitySheet)
	assert.Equal(t, "令和4年10月1日(k㎡)", cfg.Input.AreaColumn)
	assert.Equal(t, "../2.output_data/data_population_1980to2020.csv", cfg.Output.CSV)
	assert.Len(t, cfg.Rules.Partitions, 9)
	assert.Len(t, cfg.Rules.SpecialWards23, 23)
	assert.Len(t, cfg.Rules.SpecialWards5, 5)
	assert.Equal(t, "特別区部", cfg.Rules.AggregateLabel)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "census.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "census.yaml")
	data := `
input:
  census_dir: data/census
output:
  database: ""
rules:
  partitions:
    - city: 仙台市
      year: 1990
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/census", cfg.Input.CensusDir)
	assert.Equal(t, "../0.input_data/sub_data/R1_R4_all_mencho.csv", cfg.Input.AreaFile)
	assert.Empty(t, cfg.Output.Database)
	assert.Equal(t, []census.Partition{{City: "仙台市", Year: 1990}}, cfg.Rules.Partitions)
	assert.Len(t, cfg.Rules.SpecialWards23, 23)
	assert.Equal(t, "debug", cfg.Logging.Level)

	opts := cfg.PipelineOptions()
	assert.Equal(t, "data/census", opts.CensusDir)
	assert.Equal(t, cfg.Output.ShiftJISCSV, opts.OutputShiftJISCSV)
	assert.Empty(t, opts.Database)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("input: [unclosed"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("output:\n  csv: \"\"\n"), 0644))
	_, err = Load(empty)
	assert.Error(t, err)

	wards := filepath.Join(dir, "wards.yaml")
	require.NoError(t, os.WriteFile(wards, []byte("rules:\n  special_wards_5: [梅田区]\n"), 0644))
	_, err = Load(wards)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger, err = NewLogger(LoggingConfig{Development: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
