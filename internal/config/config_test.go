package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv-sizing/internal/model"
)

const scenarioYAML = `
data:
  step_hours: 0.25
  load_csv: load.csv
  pv_csv: /data/pv.csv
  column: value_kw

technologies:
  - name: grid
    variable_per_kwh: 0.30
  - name: backup-gen
    fixed_per_kw_year: 60
    variable_per_kwh: 0.12

pv:
  cost_per_kw_year: 110

battery:
  cost_per_kwh_year: 35
  round_trip_efficiency: 0.9
  power_ratio_kw_per_kwh: 0.5

feed_in_per_kwh: 0.08

search:
  pv_max_kw: 10
  pv_step_kw: 0.5
  battery_max_kwh: 20
  battery_step_kwh: 1
  workers: 4

sensitivity:
  - name: cheap-storage
    battery_cost_per_kwh_year: 20
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, scenarioYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Data.StepHours)
	// Relative paths resolve against the config directory; absolute ones stay.
	assert.Equal(t, filepath.Join(filepath.Dir(path), "load.csv"), cfg.Data.LoadCSV)
	assert.Equal(t, "/data/pv.csv", cfg.Data.PVCSV)
	assert.Equal(t, "value_kw", cfg.Data.Column)

	require.Len(t, cfg.Technologies, 2)
	assert.Equal(t, "grid", cfg.Technologies[0].Name)
	assert.Equal(t, 0.30, cfg.Technologies[0].Variable)
	assert.Equal(t, 60.0, cfg.Technologies[1].Fixed)

	assert.Equal(t, 110.0, cfg.PV.CostPerKWYear)
	assert.Equal(t, 0.9, cfg.Battery.RoundTripEfficiency)
	assert.Equal(t, 0.08, cfg.FeedInPerKWh)
	assert.Equal(t, 4, cfg.Search.Workers)

	require.Len(t, cfg.Sensitivity, 1)
	assert.Equal(t, "cheap-storage", cfg.Sensitivity[0].Name)
	require.NotNil(t, cfg.Sensitivity[0].BatteryCostPerKWhYear)
	assert.Equal(t, 20.0, *cfg.Sensitivity[0].BatteryCostPerKWhYear)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
technologies:
  - name: grid
    variable_per_kwh: 0.30
`))
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Data.StepHours)
	assert.Equal(t, 1.0, cfg.Battery.RoundTripEfficiency)
	assert.Equal(t, 0.5, cfg.Battery.PowerRatioKWPerKWh)
}

func TestLoadRejectsEmptyTechnologies(t *testing.T) {
	_, err := Load(writeConfig(t, `
pv:
  cost_per_kw_year: 110
`))
	require.ErrorIs(t, err, model.ErrNoFeasibleMix)
}

func TestLoadRejectsUnnamedTechnology(t *testing.T) {
	_, err := Load(writeConfig(t, `
technologies:
  - variable_per_kwh: 0.30
`))
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestLoadRejectsBadBattery(t *testing.T) {
	_, err := Load(writeConfig(t, `
technologies:
  - name: grid
    variable_per_kwh: 0.30
battery:
  round_trip_efficiency: 1.4
`))
	require.ErrorIs(t, err, model.ErrBatteryConfig)
}

func TestLoadRejectsBadGrid(t *testing.T) {
	_, err := Load(writeConfig(t, `
technologies:
  - name: grid
    variable_per_kwh: 0.30
search:
  pv_max_kw: -1
`))
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestLoadUncheckedSkipsValidation(t *testing.T) {
	cfg, err := LoadUnchecked(writeConfig(t, `battery: {round_trip_efficiency: 1.4}`))
	require.NoError(t, err)
	assert.Equal(t, 1.4, cfg.Battery.RoundTripEfficiency)
}

func TestToSearchConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, scenarioYAML))
	require.NoError(t, err)

	load := model.TimeSeries{StepHours: 0.25, Samples: []float64{1, 2}}
	pv := model.TimeSeries{StepHours: 0.25, Samples: []float64{0.5, 0}}
	sc := cfg.ToSearchConfig(load, pv)

	assert.Equal(t, load, sc.Load)
	assert.Equal(t, pv, sc.PVUnit)
	assert.Equal(t, 110.0, sc.PVCostPerKWYear)
	assert.Equal(t, 35.0, sc.BatteryCostPerKWhYear)
	assert.Equal(t, 0.9, sc.Battery.RoundTripEfficiency)
	assert.Equal(t, 0.08, sc.FeedInPerKWh)
	assert.Equal(t, 10.0, sc.Grid.PVMaxKW)
	assert.Equal(t, 4, sc.Workers)

	// The search config owns its own technology slice.
	sc.Technologies[0].Variable = 99
	assert.Equal(t, 0.30, cfg.Technologies[0].Variable)
}
