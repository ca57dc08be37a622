package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pv-sizing/internal/scm"
)

// Override is one sensitivity entry: a named set of parameter changes applied
// over a base Config. Nil fields leave the base value untouched (same overlay
// idea as config merging).
type Override struct {
	Name string `json:"name" yaml:"name"`

	PVCostPerKWYear       *float64 `json:"pv_cost_per_kw_year,omitempty" yaml:"pv_cost_per_kw_year,omitempty"`
	BatteryCostPerKWhYear *float64 `json:"battery_cost_per_kwh_year,omitempty" yaml:"battery_cost_per_kwh_year,omitempty"`
	BatteryCostPerKWYear  *float64 `json:"battery_cost_per_kw_year,omitempty" yaml:"battery_cost_per_kw_year,omitempty"`
	FeedInPerKWh          *float64 `json:"feed_in_per_kwh,omitempty" yaml:"feed_in_per_kwh,omitempty"`
	RoundTripEfficiency   *float64 `json:"round_trip_efficiency,omitempty" yaml:"round_trip_efficiency,omitempty"`

	// Profile perturbations: multipliers on the demand and PV series.
	LoadScale *float64 `json:"load_scale,omitempty" yaml:"load_scale,omitempty"`
	PVScale   *float64 `json:"pv_scale,omitempty" yaml:"pv_scale,omitempty"`

	// VariableCostScale multiplies every technology's variable cost,
	// e.g. an electricity-price scenario.
	VariableCostScale *float64 `json:"variable_cost_scale,omitempty" yaml:"variable_cost_scale,omitempty"`
}

// Apply returns a copy of base with the override laid on top. Slices the
// override touches are copied, so runs never share mutable state.
func (o Override) Apply(base Config) Config {
	cfg := base
	if o.PVCostPerKWYear != nil {
		cfg.PVCostPerKWYear = *o.PVCostPerKWYear
	}
	if o.BatteryCostPerKWhYear != nil {
		cfg.BatteryCostPerKWhYear = *o.BatteryCostPerKWhYear
	}
	if o.BatteryCostPerKWYear != nil {
		cfg.BatteryCostPerKWYear = *o.BatteryCostPerKWYear
	}
	if o.FeedInPerKWh != nil {
		cfg.FeedInPerKWh = *o.FeedInPerKWh
	}
	if o.RoundTripEfficiency != nil {
		cfg.Battery.RoundTripEfficiency = *o.RoundTripEfficiency
	}
	if o.LoadScale != nil {
		cfg.Load = cfg.Load.Scale(*o.LoadScale)
	}
	if o.PVScale != nil {
		cfg.PVUnit = cfg.PVUnit.Scale(*o.PVScale)
	}
	if o.VariableCostScale != nil {
		lines := make([]scm.ScreeningLine, len(cfg.Technologies))
		for i, l := range cfg.Technologies {
			l.Variable *= *o.VariableCostScale
			lines[i] = l
		}
		cfg.Technologies = lines
	}
	return cfg
}

// SensitivityResult is one completed (or failed) run. Runs are independent;
// one failing entry does not affect the others.
type SensitivityResult struct {
	Name   string
	Result *Result
	Err    error
}

// RunSensitivity re-executes the capacity search once per override, in
// parallel. The base configuration is validated first so shared-input errors
// surface before any run starts.
func RunSensitivity(ctx context.Context, base Config, overrides []Override) ([]SensitivityResult, error) {
	if err := validate(base); err != nil {
		return nil, err
	}

	out := make([]SensitivityResult, len(overrides))
	var g errgroup.Group
	for i, o := range overrides {
		i, o := i, o
		g.Go(func() error {
			out[i].Name = o.Name
			out[i].Result, out[i].Err = Run(ctx, o.Apply(base))
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}
