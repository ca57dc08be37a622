package models

import (
	"pv-sizing/internal/model"
	"pv-sizing/internal/scm"
	"pv-sizing/internal/search"
)

// SizeRequest is the request body for running a capacity search. The series
// come inline: data ingestion is a caller concern, the API only sizes.
type SizeRequest struct {
	Label     string    `json:"label,omitempty"`
	StepHours float64   `json:"step_hours" binding:"required"`
	LoadKW    []float64 `json:"load_kw" binding:"required"`
	PVPerKW   []float64 `json:"pv_per_kw" binding:"required"`

	Scenario Scenario    `json:"scenario" binding:"required"`
	Options  SizeOptions `json:"options,omitempty"`
}

// Scenario mirrors the YAML scenario shape for JSON clients.
type Scenario struct {
	Technologies []scm.ScreeningLine `json:"technologies" binding:"required"`
	PV           PVSpec              `json:"pv"`
	Battery      BatterySpec         `json:"battery"`
	FeedInPerKWh float64             `json:"feed_in_per_kwh,omitempty"`
	AnnualWeight float64             `json:"annual_weight,omitempty"`
	Search       GridRange           `json:"search" binding:"required"`
}

type PVSpec struct {
	CostPerKWYear float64 `json:"cost_per_kw_year"`
}

type BatterySpec struct {
	CostPerKWhYear      float64 `json:"cost_per_kwh_year"`
	CostPerKWYear       float64 `json:"cost_per_kw_year,omitempty"`
	RoundTripEfficiency float64 `json:"round_trip_efficiency,omitempty"` // default 1.0
	PowerRatioKWPerKWh  float64 `json:"power_ratio_kw_per_kwh,omitempty"` // default 0.5
	InitialSOCFraction  float64 `json:"initial_soc_fraction,omitempty"`
}

type GridRange struct {
	PVMinKW  float64 `json:"pv_min_kw"`
	PVMaxKW  float64 `json:"pv_max_kw"`
	PVStepKW float64 `json:"pv_step_kw"`

	BatteryMinKWh  float64 `json:"battery_min_kwh"`
	BatteryMaxKWh  float64 `json:"battery_max_kwh"`
	BatteryStepKWh float64 `json:"battery_step_kwh"`

	Workers int `json:"workers,omitempty"`
}

type SizeOptions struct {
	IncludeSurface bool `json:"include_surface,omitempty"`
	IncludeCurve   bool `json:"include_curve,omitempty"`
	IncludeLedger  bool `json:"include_ledger,omitempty"`
}

// SensitivityRequest re-runs the search once per override.
type SensitivityRequest struct {
	SizeRequest
	Overrides []search.Override `json:"overrides" binding:"required"`
}

// ToSearchConfig builds the engine configuration from the request,
// applying the same defaults as the YAML loader.
func (r SizeRequest) ToSearchConfig() search.Config {
	b := r.Scenario.Battery
	if b.RoundTripEfficiency == 0 {
		b.RoundTripEfficiency = 1.0
	}
	if b.PowerRatioKWPerKWh == 0 {
		b.PowerRatioKWPerKWh = 0.5
	}
	g := r.Scenario.Search
	return search.Config{
		Load:                  model.TimeSeries{StepHours: r.StepHours, Samples: r.LoadKW},
		PVUnit:                model.TimeSeries{StepHours: r.StepHours, Samples: r.PVPerKW},
		Technologies:          r.Scenario.Technologies,
		PVCostPerKWYear:       r.Scenario.PV.CostPerKWYear,
		BatteryCostPerKWhYear: b.CostPerKWhYear,
		BatteryCostPerKWYear:  b.CostPerKWYear,
		Battery: search.BatteryTemplate{
			RoundTripEfficiency: b.RoundTripEfficiency,
			PowerRatioKWPerKWh:  b.PowerRatioKWPerKWh,
			InitialSOCFraction:  b.InitialSOCFraction,
		},
		FeedInPerKWh: r.Scenario.FeedInPerKWh,
		Grid: search.GridSpec{
			PVMinKW:        g.PVMinKW,
			PVMaxKW:        g.PVMaxKW,
			PVStepKW:       g.PVStepKW,
			BatteryMinKWh:  g.BatteryMinKWh,
			BatteryMaxKWh:  g.BatteryMaxKWh,
			BatteryStepKWh: g.BatteryStepKWh,
		},
		AnnualWeight: r.Scenario.AnnualWeight,
		Workers:      g.Workers,
	}
}
