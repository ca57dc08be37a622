package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv-sizing/internal/model"
	"pv-sizing/internal/scm"
)

// shiftScenario has evening demand and morning sun, so neither PV nor battery
// helps alone: only the pair beats buying everything from the grid.
func shiftScenario() Config {
	return Config{
		Load:   model.TimeSeries{StepHours: 1, Samples: []float64{0, 0, 10, 10}},
		PVUnit: model.TimeSeries{StepHours: 1, Samples: []float64{1, 1, 0, 0}},
		Technologies: []scm.ScreeningLine{
			{Name: "grid", Fixed: 0, Variable: 1},
		},
		PVCostPerKWYear:       0.5,
		BatteryCostPerKWhYear: 0.25,
		Battery: BatteryTemplate{
			RoundTripEfficiency: 1,
			PowerRatioKWPerKWh:  1,
		},
		Grid: GridSpec{
			PVMaxKW: 10, PVStepKW: 10,
			BatteryMaxKWh: 20, BatteryStepKWh: 20,
		},
		AnnualWeight: 1,
	}
}

func TestRunFindsJointOptimum(t *testing.T) {
	res, err := Run(context.Background(), shiftScenario())
	require.NoError(t, err)

	require.Len(t, res.Surface, 4)
	assert.Empty(t, res.Failed)

	// Buying everything costs 20; PV or battery alone cost 25 because the sun
	// and the demand never overlap. Together they shift the morning surplus
	// into the evening for 10.
	assert.Equal(t, 10.0, res.Best.PVCapacityKW)
	assert.Equal(t, 20.0, res.Best.BatteryCapacityKWh)
	assert.InDelta(t, 5.0, res.Best.PVCost, 1e-9)
	assert.InDelta(t, 5.0, res.Best.BatteryCost, 1e-9)
	assert.InDelta(t, 0.0, res.Best.ResidualCost, 1e-9)
	assert.InDelta(t, 10.0, res.Best.TotalCost, 1e-9)

	for _, c := range res.Surface {
		assert.GreaterOrEqual(t, c.TotalCost, res.Best.TotalCost-1e-9)
	}

	// Optimum artifacts: a fully flattened residual and a full charge cycle.
	require.Len(t, res.BestLedger, 4)
	assert.Equal(t, model.ActionCharging, res.BestLedger[0].Action)
	assert.Equal(t, model.ActionDischarging, res.BestLedger[2].Action)
	assert.InDelta(t, 0.0, res.BestMix.TotalCost, 1e-9)
	for _, m := range res.BestCurve.Magnitudes {
		assert.InDelta(t, 0.0, m, 1e-9)
	}
}

func TestRunTieBreaksTowardSmallerSystem(t *testing.T) {
	// Free PV and battery that never help: every grid point costs the same, so
	// the deterministic preference for less hardware must win.
	cfg := Config{
		Load:         model.TimeSeries{StepHours: 1, Samples: []float64{1, 1}},
		PVUnit:       model.TimeSeries{StepHours: 1, Samples: []float64{0, 0}},
		Technologies: []scm.ScreeningLine{{Name: "grid", Variable: 1}},
		Battery:      BatteryTemplate{RoundTripEfficiency: 1, PowerRatioKWPerKWh: 1},
		Grid: GridSpec{
			PVMaxKW: 2, PVStepKW: 1,
			BatteryMaxKWh: 2, BatteryStepKWh: 1,
		},
		AnnualWeight: 1,
	}
	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, res.Surface, 9)
	assert.Equal(t, 0.0, res.Best.PVCapacityKW)
	assert.Equal(t, 0.0, res.Best.BatteryCapacityKWh)
	assert.InDelta(t, 2.0, res.Best.TotalCost, 1e-9)
}

func TestRunCreditsFeedIn(t *testing.T) {
	cfg := Config{
		Load:            model.TimeSeries{StepHours: 1, Samples: []float64{0}},
		PVUnit:          model.TimeSeries{StepHours: 1, Samples: []float64{1}},
		Technologies:    []scm.ScreeningLine{{Name: "grid", Variable: 1}},
		PVCostPerKWYear: 0.3,
		Battery:         BatteryTemplate{RoundTripEfficiency: 1},
		FeedInPerKWh:    0.5,
		Grid:            GridSpec{PVMinKW: 2, PVMaxKW: 2},
		AnnualWeight:    1,
	}
	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	// 2 kW of PV against no load: 2 kWh exported at 0.5, minus 0.6 of PV cost.
	assert.InDelta(t, 1.0, res.Best.ExportCredit, 1e-9)
	assert.InDelta(t, -0.4, res.Best.TotalCost, 1e-9)
	assert.InDelta(t, 0.0, res.Best.ResidualCost, 1e-9)
}

func TestRunAppliesAnnualWeightDefault(t *testing.T) {
	// 2h of data stands in for a year: energy terms scale by 8760/2.
	cfg := Config{
		Load:         model.TimeSeries{StepHours: 1, Samples: []float64{1, 1}},
		PVUnit:       model.TimeSeries{StepHours: 1, Samples: []float64{0, 0}},
		Technologies: []scm.ScreeningLine{{Name: "grid", Variable: 1}},
		Battery:      BatteryTemplate{RoundTripEfficiency: 1},
		Grid:         GridSpec{},
	}
	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.InDelta(t, 8760.0, res.Best.ResidualCost, 1e-6)
}

func TestRunAllPointsFailing(t *testing.T) {
	cfg := shiftScenario()
	cfg.Technologies = nil // every envelope solve fails the same way
	_, err := Run(context.Background(), cfg)
	require.ErrorIs(t, err, model.ErrNoFeasibleMix)
}

func TestRunValidatesSharedInputs(t *testing.T) {
	cfg := shiftScenario()
	cfg.PVUnit = model.TimeSeries{StepHours: 1, Samples: []float64{1}}
	_, err := Run(context.Background(), cfg)
	require.ErrorIs(t, err, model.ErrInvalidInput)

	cfg = shiftScenario()
	cfg.Battery.RoundTripEfficiency = 1.5
	_, err = Run(context.Background(), cfg)
	require.ErrorIs(t, err, model.ErrBatteryConfig)

	cfg = shiftScenario()
	cfg.Grid.PVStepKW = -1
	_, err = Run(context.Background(), cfg)
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestRunHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, shiftScenario())
	require.ErrorIs(t, err, context.Canceled)
}

func TestGridSpecLevels(t *testing.T) {
	g := GridSpec{PVMaxKW: 1, PVStepKW: 0.25, BatteryMinKWh: 5, BatteryMaxKWh: 5}
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, g.PVLevels())
	assert.Equal(t, []float64{5}, g.BatteryLevels())

	// Step that does not divide the range evenly stops below the max.
	h := GridSpec{BatteryMaxKWh: 1, BatteryStepKWh: 0.4}
	assert.Equal(t, []float64{0, 0.4, 0.8}, h.BatteryLevels())
}

func TestBatteryTemplateParams(t *testing.T) {
	tpl := BatteryTemplate{RoundTripEfficiency: 0.9, PowerRatioKWPerKWh: 0.5, InitialSOCFraction: 0.2}
	p := tpl.Params(10)
	assert.Equal(t, 10.0, p.CapacityKWh)
	assert.Equal(t, 5.0, p.PowerKW)
	assert.Equal(t, 0.9, p.RoundTripEfficiency)
	assert.Equal(t, 2.0, p.InitialSOCKWh)
	require.NoError(t, p.Validate())
}
