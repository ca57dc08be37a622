package analysis

import (
	"pv-sizing/internal/model"
)

// SavingsPotential summarizes how much the cost-optimal system saves against
// the do-nothing baseline (no PV, no battery) on the same cost surface. It
// does not depend on which technologies make up the residual mix.
type SavingsPotential struct {
	// Baseline is the annualized cost at (0 kW PV, 0 kWh battery). If the grid
	// did not include that point, the cheapest zero-PV point stands in and
	// BaselineExact is false.
	Baseline      model.CostResult
	BaselineExact bool

	Best model.CostResult

	// SavingsPerYear is Baseline.TotalCost - Best.TotalCost; zero when the
	// baseline itself is optimal.
	SavingsPerYear float64
	// SavingsFraction is the relative saving, zero when the baseline cost is
	// not positive.
	SavingsFraction float64
}

// ComputePotential derives the savings summary from a completed search
// surface and its arg-min.
func ComputePotential(surface []model.CostResult, best model.CostResult) SavingsPotential {
	p := SavingsPotential{Best: best}
	if len(surface) == 0 {
		return p
	}

	found := false
	for _, c := range surface {
		exact := c.PVCapacityKW == 0 && c.BatteryCapacityKWh == 0
		if exact {
			p.Baseline = c
			p.BaselineExact = true
			found = true
			break
		}
		if c.PVCapacityKW == 0 && (!found || c.TotalCost < p.Baseline.TotalCost) {
			p.Baseline = c
			found = true
		}
	}
	if !found {
		// Grid starts above zero PV; fall back to the worst point so the
		// numbers stay conservative rather than flattering.
		p.Baseline = surface[0]
		for _, c := range surface[1:] {
			if c.TotalCost > p.Baseline.TotalCost {
				p.Baseline = c
			}
		}
	}

	p.SavingsPerYear = p.Baseline.TotalCost - p.Best.TotalCost
	if p.SavingsPerYear < 0 {
		p.SavingsPerYear = 0
	}
	if p.Baseline.TotalCost > 0 {
		p.SavingsFraction = p.SavingsPerYear / p.Baseline.TotalCost
	}
	return p
}
