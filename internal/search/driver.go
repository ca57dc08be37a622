package search

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"pv-sizing/internal/dispatch"
	"pv-sizing/internal/model"
	"pv-sizing/internal/scm"
)

// Config is everything one capacity search needs, passed explicitly so grid
// points can be evaluated in parallel without shared mutable state.
type Config struct {
	Load   model.TimeSeries // household demand, kW
	PVUnit model.TimeSeries // PV generation per kW installed, kW/kW

	// Technologies are the remaining supply options (grid purchase, backup
	// generation) the lower-envelope solver sizes against the residual curve.
	Technologies []scm.ScreeningLine

	PVCostPerKWYear       float64
	BatteryCostPerKWhYear float64
	BatteryCostPerKWYear  float64

	Battery BatteryTemplate

	// FeedInPerKWh credits residual surplus exported to the grid.
	FeedInPerKWh float64

	Grid GridSpec

	// AnnualWeight scales energy-proportional cost terms up to a full year
	// when the series covers less than one. Zero derives 8760/horizon.
	AnnualWeight float64

	// Workers bounds parallel grid-point evaluations. Zero means GOMAXPROCS.
	Workers int
}

// BatteryTemplate instantiates BatteryParams for each candidate energy
// capacity. The power limit scales with capacity so the search grid stays
// one-dimensional in battery energy.
type BatteryTemplate struct {
	RoundTripEfficiency float64
	PowerRatioKWPerKWh  float64
	InitialSOCFraction  float64
}

func (t BatteryTemplate) Params(capacityKWh float64) model.BatteryParams {
	return model.BatteryParams{
		CapacityKWh:         capacityKWh,
		PowerKW:             capacityKWh * t.PowerRatioKWPerKWh,
		RoundTripEfficiency: t.RoundTripEfficiency,
		InitialSOCKWh:       capacityKWh * t.InitialSOCFraction,
	}
}

// GridSpec is a discretized search grid over both capacities. Grid search is
// deliberate: the inner pipeline (dispatch + envelope solve) is piecewise and
// non-smooth in capacity, so gradient-based search is unreliable here.
type GridSpec struct {
	PVMinKW  float64
	PVMaxKW  float64
	PVStepKW float64

	BatteryMinKWh  float64
	BatteryMaxKWh  float64
	BatteryStepKWh float64
}

func (g GridSpec) Validate() error {
	if g.PVMinKW < 0 || g.BatteryMinKWh < 0 {
		return fmt.Errorf("%w: grid bounds must be >= 0", model.ErrInvalidInput)
	}
	if g.PVMaxKW < g.PVMinKW || g.BatteryMaxKWh < g.BatteryMinKWh {
		return fmt.Errorf("%w: grid max below min", model.ErrInvalidInput)
	}
	if g.PVStepKW <= 0 && g.PVMaxKW > g.PVMinKW {
		return fmt.Errorf("%w: pv step must be > 0", model.ErrInvalidInput)
	}
	if g.BatteryStepKWh <= 0 && g.BatteryMaxKWh > g.BatteryMinKWh {
		return fmt.Errorf("%w: battery step must be > 0", model.ErrInvalidInput)
	}
	return nil
}

func (g GridSpec) PVLevels() []float64 {
	return levels(g.PVMinKW, g.PVMaxKW, g.PVStepKW)
}

func (g GridSpec) BatteryLevels() []float64 {
	return levels(g.BatteryMinKWh, g.BatteryMaxKWh, g.BatteryStepKWh)
}

func levels(min, max, step float64) []float64 {
	if max < min {
		return nil
	}
	if step <= 0 || max == min {
		return []float64{min}
	}
	n := int(math.Floor((max-min)/step+1e-9)) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, min+float64(i)*step)
	}
	return out
}

// FailedPoint records a grid point whose evaluation failed. Completed points
// stay valid; a search only fails outright on shared-input errors.
type FailedPoint struct {
	PVCapacityKW       float64
	BatteryCapacityKWh float64
	Err                error
}

// Result is the full cost surface plus the arg-min and the artifacts
// downstream plotting wants at the optimum.
type Result struct {
	Surface []model.CostResult // PV-major order, one per completed grid point
	Best    model.CostResult

	BestCurve  scm.DurationCurve   // residual duration curve at the optimum
	BestMix    scm.Mix             // technology mix at the optimum
	BestLedger []dispatch.LedgerRow // per-step battery trace at the optimum

	Failed []FailedPoint
}

// Run evaluates every (PV, battery) grid point and returns the surface and
// the cost-minimizing configuration. Ties within floating tolerance break
// deterministically: lower battery capacity, then lower PV capacity.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	pvLevels := cfg.Grid.PVLevels()
	battLevels := cfg.Grid.BatteryLevels()
	if len(pvLevels) == 0 || len(battLevels) == 0 {
		return nil, fmt.Errorf("%w: empty search grid", model.ErrNoFeasibleMix)
	}

	type slot struct {
		cost model.CostResult
		err  error
	}
	slots := make([]slot, len(pvLevels)*len(battLevels))

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)

	for i, pvKW := range pvLevels {
		for j, battKWh := range battLevels {
			idx := i*len(battLevels) + j
			pvKW, battKWh := pvKW, battKWh
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					slots[idx].err = err
					return nil
				}
				cost, _, _, err := evaluate(cfg, pvKW, battKWh)
				slots[idx] = slot{cost: cost, err: err}
				return nil
			})
		}
	}
	// Workers never return errors; failures are per-slot so completed grid
	// points survive a late failure.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Surface: make([]model.CostResult, 0, len(slots))}
	haveBest := false
	for idx, s := range slots {
		if s.err != nil {
			res.Failed = append(res.Failed, FailedPoint{
				PVCapacityKW:       pvLevels[idx/len(battLevels)],
				BatteryCapacityKWh: battLevels[idx%len(battLevels)],
				Err:                s.err,
			})
			continue
		}
		res.Surface = append(res.Surface, s.cost)
		if !haveBest || better(s.cost, res.Best) {
			res.Best = s.cost
			haveBest = true
		}
	}
	if !haveBest {
		if len(res.Failed) > 0 {
			return nil, fmt.Errorf("all grid points failed: %w", res.Failed[0].Err)
		}
		return nil, fmt.Errorf("%w: empty search grid", model.ErrNoFeasibleMix)
	}

	// Re-run the winning point to capture the curve, mix and ledger for
	// downstream consumers. Cheap relative to the grid sweep.
	_, curve, mix, err := evaluate(cfg, res.Best.PVCapacityKW, res.Best.BatteryCapacityKWh)
	if err != nil {
		return nil, err
	}
	res.BestCurve = curve
	res.BestMix = mix
	res.BestLedger, err = bestLedger(cfg, res.Best)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func validate(cfg Config) error {
	if err := cfg.Load.Validate(); err != nil {
		return err
	}
	if err := cfg.PVUnit.Validate(); err != nil {
		return err
	}
	if !cfg.Load.Aligned(cfg.PVUnit) {
		return fmt.Errorf("%w: load and pv series are misaligned", model.ErrInvalidInput)
	}
	if cfg.PVCostPerKWYear < 0 || cfg.BatteryCostPerKWhYear < 0 || cfg.BatteryCostPerKWYear < 0 {
		return fmt.Errorf("%w: unit costs must be >= 0", model.ErrInvalidInput)
	}
	if cfg.FeedInPerKWh < 0 {
		return fmt.Errorf("%w: feed-in rate must be >= 0", model.ErrInvalidInput)
	}
	if cfg.AnnualWeight < 0 {
		return fmt.Errorf("%w: annual weight must be >= 0", model.ErrInvalidInput)
	}
	if cfg.Battery.PowerRatioKWPerKWh < 0 {
		return fmt.Errorf("%w: power ratio must be >= 0", model.ErrBatteryConfig)
	}
	if cfg.Battery.InitialSOCFraction < 0 || cfg.Battery.InitialSOCFraction > 1 {
		return fmt.Errorf("%w: initial SOC fraction must be in [0, 1]", model.ErrBatteryConfig)
	}
	// Efficiency bounds are checked by BatteryParams.Validate per candidate,
	// but a bad template should fail before the sweep starts.
	if e := cfg.Battery.RoundTripEfficiency; e <= 0 || e > 1 {
		return fmt.Errorf("%w: round-trip efficiency must be in (0, 1], got %g", model.ErrBatteryConfig, e)
	}
	if err := cfg.Grid.Validate(); err != nil {
		return err
	}
	return nil
}

func (c Config) annualWeight() float64 {
	if c.AnnualWeight > 0 {
		return c.AnnualWeight
	}
	return 8760.0 / c.Load.HorizonHours()
}

// evaluate runs the full pipeline for one candidate: scale PV, net load,
// dispatch, duration curve, envelope solve, cost aggregation.
func evaluate(cfg Config, pvKW, battKWh float64) (model.CostResult, scm.DurationCurve, scm.Mix, error) {
	net, err := cfg.Load.Sub(cfg.PVUnit.Scale(pvKW))
	if err != nil {
		return model.CostResult{}, scm.DurationCurve{}, scm.Mix{}, err
	}
	sim, err := dispatch.Simulate(net, cfg.Battery.Params(battKWh))
	if err != nil {
		return model.CostResult{}, scm.DurationCurve{}, scm.Mix{}, err
	}
	curve, err := scm.BuildDurationCurve(sim.Residual)
	if err != nil {
		return model.CostResult{}, scm.DurationCurve{}, scm.Mix{}, err
	}
	mix, err := scm.SolveEnvelope(curve, cfg.Technologies)
	if err != nil {
		return model.CostResult{}, scm.DurationCurve{}, scm.Mix{}, err
	}

	w := cfg.annualWeight()
	cost := model.CostResult{
		PVCapacityKW:       pvKW,
		BatteryCapacityKWh: battKWh,
		PVCost:             pvKW * cfg.PVCostPerKWYear,
		BatteryCost:        battKWh*cfg.BatteryCostPerKWhYear + battKWh*cfg.Battery.PowerRatioKWPerKWh*cfg.BatteryCostPerKWYear,
		ResidualCost:       mix.FixedCost + w*mix.VariableCost,
		ExportCredit:       w * cfg.FeedInPerKWh * sim.Residual.SurplusKWh(),
	}
	cost.TotalCost = cost.PVCost + cost.BatteryCost + cost.ResidualCost - cost.ExportCredit
	return cost, curve, mix, nil
}

func bestLedger(cfg Config, best model.CostResult) ([]dispatch.LedgerRow, error) {
	net, err := cfg.Load.Sub(cfg.PVUnit.Scale(best.PVCapacityKW))
	if err != nil {
		return nil, err
	}
	_, ledger, err := dispatch.SimulateLedger(net, cfg.Battery.Params(best.BatteryCapacityKWh))
	return ledger, err
}

// better implements the deterministic preference order: strictly lower cost,
// then (within floating tolerance) lower battery capacity, then lower PV.
func better(a, b model.CostResult) bool {
	tol := 1e-9 * math.Max(1, math.Max(math.Abs(a.TotalCost), math.Abs(b.TotalCost)))
	if a.TotalCost < b.TotalCost-tol {
		return true
	}
	if a.TotalCost > b.TotalCost+tol {
		return false
	}
	if a.BatteryCapacityKWh != b.BatteryCapacityKWh {
		return a.BatteryCapacityKWh < b.BatteryCapacityKWh
	}
	return a.PVCapacityKW < b.PVCapacityKW
}
