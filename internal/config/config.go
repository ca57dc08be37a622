package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pv-sizing/internal/model"
	"pv-sizing/internal/scm"
	"pv-sizing/internal/search"
)

// Config is the on-disk scenario shape (YAML). One file describes the input
// series, the technology cost table, unit costs, the search grid and an
// optional list of sensitivity overrides.
type Config struct {
	// Data points at the input series; the engine itself never touches files.
	Data DataConfig `yaml:"data"`

	Technologies []scm.ScreeningLine `yaml:"technologies"`

	PV      PVConfig      `yaml:"pv"`
	Battery BatteryConfig `yaml:"battery"`

	FeedInPerKWh float64 `yaml:"feed_in_per_kwh"`

	// AnnualWeight scales energy costs up to a full year; 0 derives it from
	// the series horizon (8760 / horizon hours).
	AnnualWeight float64 `yaml:"annual_weight"`

	Search SearchConfig `yaml:"search"`

	Sensitivity []search.Override `yaml:"sensitivity"`
}

type DataConfig struct {
	StepHours float64 `yaml:"step_hours"`
	LoadCSV   string  `yaml:"load_csv"`
	PVCSV     string  `yaml:"pv_csv"`
	// Column selects the value column by header name; empty means the last
	// column.
	Column string `yaml:"column"`
}

type PVConfig struct {
	CostPerKWYear float64 `yaml:"cost_per_kw_year"`
}

type BatteryConfig struct {
	CostPerKWhYear      float64 `yaml:"cost_per_kwh_year"`
	CostPerKWYear       float64 `yaml:"cost_per_kw_year"`
	RoundTripEfficiency float64 `yaml:"round_trip_efficiency"`
	PowerRatioKWPerKWh  float64 `yaml:"power_ratio_kw_per_kwh"`
	InitialSOCFraction  float64 `yaml:"initial_soc_fraction"`
}

type SearchConfig struct {
	PVMinKW  float64 `yaml:"pv_min_kw"`
	PVMaxKW  float64 `yaml:"pv_max_kw"`
	PVStepKW float64 `yaml:"pv_step_kw"`

	BatteryMinKWh  float64 `yaml:"battery_min_kwh"`
	BatteryMaxKWh  float64 `yaml:"battery_max_kwh"`
	BatteryStepKWh float64 `yaml:"battery_step_kwh"`

	Workers int `yaml:"workers"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the config without defaults or validation.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// Interpret relative data paths as relative to the config file directory.
	dir := filepath.Dir(path)
	if c.Data.LoadCSV != "" && !filepath.IsAbs(c.Data.LoadCSV) {
		c.Data.LoadCSV = filepath.Join(dir, c.Data.LoadCSV)
	}
	if c.Data.PVCSV != "" && !filepath.IsAbs(c.Data.PVCSV) {
		c.Data.PVCSV = filepath.Join(dir, c.Data.PVCSV)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Data.StepHours == 0 {
		c.Data.StepHours = 1.0
	}
	if c.Battery.RoundTripEfficiency == 0 {
		c.Battery.RoundTripEfficiency = 1.0
	}
	if c.Battery.PowerRatioKWPerKWh == 0 {
		c.Battery.PowerRatioKWPerKWh = 0.5
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.Technologies) == 0 {
		return fmt.Errorf("%w: at least one technology is required", model.ErrNoFeasibleMix)
	}
	for _, l := range c.Technologies {
		if l.Name == "" {
			return fmt.Errorf("%w: technology without a name", model.ErrInvalidInput)
		}
		if err := l.Validate(); err != nil {
			return err
		}
	}
	// Validate the battery template by instantiating a candidate.
	params := c.Battery.Template().Params(1.0)
	if err := params.Validate(); err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	if err := c.Search.GridSpec().Validate(); err != nil {
		return err
	}
	return nil
}

func (b BatteryConfig) Template() search.BatteryTemplate {
	return search.BatteryTemplate{
		RoundTripEfficiency: b.RoundTripEfficiency,
		PowerRatioKWPerKWh:  b.PowerRatioKWPerKWh,
		InitialSOCFraction:  b.InitialSOCFraction,
	}
}

func (s SearchConfig) GridSpec() search.GridSpec {
	return search.GridSpec{
		PVMinKW:        s.PVMinKW,
		PVMaxKW:        s.PVMaxKW,
		PVStepKW:       s.PVStepKW,
		BatteryMinKWh:  s.BatteryMinKWh,
		BatteryMaxKWh:  s.BatteryMaxKWh,
		BatteryStepKWh: s.BatteryStepKWh,
	}
}

// ToSearchConfig binds the scenario to loaded series. The caller owns reading
// the series (see internal/data); the engine stays ingestion-free.
func (c *Config) ToSearchConfig(load, pvUnit model.TimeSeries) search.Config {
	return search.Config{
		Load:                  load,
		PVUnit:                pvUnit,
		Technologies:          append([]scm.ScreeningLine(nil), c.Technologies...),
		PVCostPerKWYear:       c.PV.CostPerKWYear,
		BatteryCostPerKWhYear: c.Battery.CostPerKWhYear,
		BatteryCostPerKWYear:  c.Battery.CostPerKWYear,
		Battery:               c.Battery.Template(),
		FeedInPerKWh:          c.FeedInPerKWh,
		Grid:                  c.Search.GridSpec(),
		AnnualWeight:          c.AnnualWeight,
		Workers:               c.Search.Workers,
	}
}
