package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pv-sizing/internal/model"
)

func point(pv, batt, total float64) model.CostResult {
	return model.CostResult{PVCapacityKW: pv, BatteryCapacityKWh: batt, TotalCost: total}
}

func TestComputePotential(t *testing.T) {
	surface := []model.CostResult{
		point(0, 0, 2000),
		point(0, 10, 2100),
		point(6, 10, 1100),
	}
	p := ComputePotential(surface, point(6, 10, 1100))

	assert.True(t, p.BaselineExact)
	assert.Equal(t, 2000.0, p.Baseline.TotalCost)
	assert.InDelta(t, 900.0, p.SavingsPerYear, 1e-9)
	assert.InDelta(t, 0.45, p.SavingsFraction, 1e-9)
}

func TestComputePotentialWithoutZeroPoint(t *testing.T) {
	surface := []model.CostResult{
		point(0, 5, 1900),
		point(0, 10, 2100),
		point(6, 10, 1100),
	}
	p := ComputePotential(surface, point(6, 10, 1100))

	assert.False(t, p.BaselineExact)
	assert.Equal(t, 1900.0, p.Baseline.TotalCost)
	assert.InDelta(t, 800.0, p.SavingsPerYear, 1e-9)
}

func TestComputePotentialBaselineOptimal(t *testing.T) {
	surface := []model.CostResult{point(0, 0, 500), point(4, 0, 900)}
	p := ComputePotential(surface, point(0, 0, 500))

	assert.Zero(t, p.SavingsPerYear)
	assert.Zero(t, p.SavingsFraction)
}

func TestRank(t *testing.T) {
	surface := []model.CostResult{
		point(4, 10, 1200),
		point(2, 0, 1100),
		point(2, 5, 1100),
		point(0, 0, 2000),
	}

	top := Rank(surface, 3)
	assert.Equal(t, []model.CostResult{
		point(2, 0, 1100),
		point(2, 5, 1100),
		point(4, 10, 1200),
	}, top)

	// The input order is untouched.
	assert.Equal(t, point(4, 10, 1200), surface[0])

	all := Rank(surface, 0)
	assert.Len(t, all, 4)
}
