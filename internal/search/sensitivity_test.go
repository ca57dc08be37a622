package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv-sizing/internal/model"
)

func ptr(v float64) *float64 { return &v }

func TestOverrideApplyLeavesBaseUntouched(t *testing.T) {
	base := shiftScenario()
	o := Override{
		Name:                  "expensive-storage",
		BatteryCostPerKWhYear: ptr(100),
		LoadScale:             ptr(2),
		VariableCostScale:     ptr(3),
	}
	cfg := o.Apply(base)

	assert.Equal(t, 100.0, cfg.BatteryCostPerKWhYear)
	assert.Equal(t, []float64{0, 0, 20, 20}, cfg.Load.Samples)
	assert.Equal(t, 3.0, cfg.Technologies[0].Variable)

	// The base keeps its own slices and values.
	assert.Equal(t, 0.25, base.BatteryCostPerKWhYear)
	assert.Equal(t, []float64{0, 0, 10, 10}, base.Load.Samples)
	assert.Equal(t, 1.0, base.Technologies[0].Variable)
}

func TestOverrideApplyNilFieldsAreIdentity(t *testing.T) {
	base := shiftScenario()
	cfg := Override{Name: "baseline"}.Apply(base)
	assert.Equal(t, base, cfg)
}

func TestRunSensitivity(t *testing.T) {
	base := shiftScenario()
	overrides := []Override{
		{Name: "baseline"},
		// Storage at 100/kWh-year makes the shift uneconomic: buying all four
		// evening kWh from the grid wins again.
		{Name: "expensive-storage", BatteryCostPerKWhYear: ptr(100)},
	}

	results, err := RunSensitivity(context.Background(), base, overrides)
	require.NoError(t, err)
	require.Len(t, results, 2)

	baseline := results[0]
	require.NoError(t, baseline.Err)
	assert.Equal(t, "baseline", baseline.Name)
	assert.Equal(t, 20.0, baseline.Result.Best.BatteryCapacityKWh)
	assert.InDelta(t, 10.0, baseline.Result.Best.TotalCost, 1e-9)

	pricey := results[1]
	require.NoError(t, pricey.Err)
	assert.Equal(t, "expensive-storage", pricey.Name)
	assert.Equal(t, 0.0, pricey.Result.Best.BatteryCapacityKWh)
	assert.Equal(t, 0.0, pricey.Result.Best.PVCapacityKW)
	assert.InDelta(t, 20.0, pricey.Result.Best.TotalCost, 1e-9)
}

func TestRunSensitivityIsolatesEntryFailures(t *testing.T) {
	base := shiftScenario()
	overrides := []Override{
		{Name: "bad-efficiency", RoundTripEfficiency: ptr(2)},
		{Name: "ok"},
	}

	results, err := RunSensitivity(context.Background(), base, overrides)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.ErrorIs(t, results[0].Err, model.ErrBatteryConfig)
	assert.Nil(t, results[0].Result)
	require.NoError(t, results[1].Err)
	assert.NotNil(t, results[1].Result)
}

func TestRunSensitivityRejectsBadBase(t *testing.T) {
	base := shiftScenario()
	base.Battery.RoundTripEfficiency = 0
	_, err := RunSensitivity(context.Background(), base, []Override{{Name: "x"}})
	require.ErrorIs(t, err, model.ErrBatteryConfig)
}
