package dispatch

import (
	"math"

	"pv-sizing/internal/model"
)

// Result captures one simulation run: the post-battery residual series and
// aggregate energy flows. The internal battery state is discarded.
type Result struct {
	Residual model.TimeSeries
	Summary  Summary
}

type Summary struct {
	// EnergyChargedKWh is energy absorbed from surplus, measured at the meter
	// (before the charge-leg loss).
	EnergyChargedKWh float64
	// EnergyDischargedKWh is energy delivered to load, measured at the meter
	// (after the discharge-leg loss).
	EnergyDischargedKWh float64
	FinalSOCKWh         float64
	// EquivalentCycles is total throughput over twice the capacity; zero for
	// a zero-capacity battery.
	EquivalentCycles float64
}

// Simulate walks a net-load series in time order and applies a fixed,
// strictly causal dispatch policy: discharge into deficits (net load > 0),
// charge from surpluses (net load < 0), both limited by the power rating and
// the state of charge. A single forward pass, O(len(net)).
//
// The round-trip efficiency is split symmetrically, sqrt(eta) on each leg, so
// a full charge-discharge cycle loses exactly (1-eta) of throughput energy.
// The state of charge is clamped to [0, capacity] after every step; that
// clamping, not an error, is how curtailment and unmet demand show up in the
// residual series.
//
// The policy has no look-ahead: surplus occurring after a deficit in the
// series cannot serve it. This matches simple rule-based self-consumption
// dispatch and is a documented modeling limitation, not a bug.
func Simulate(net model.TimeSeries, batt model.BatteryParams) (Result, error) {
	res, _, err := run(net, batt, false)
	return res, err
}

// SimulateLedger is Simulate plus a per-step trace for export and plotting.
func SimulateLedger(net model.TimeSeries, batt model.BatteryParams) (Result, []LedgerRow, error) {
	return run(net, batt, true)
}

func run(net model.TimeSeries, batt model.BatteryParams, keepLedger bool) (Result, []LedgerRow, error) {
	if err := net.Validate(); err != nil {
		return Result{}, nil, err
	}
	if err := batt.Validate(); err != nil {
		return Result{}, nil, err
	}

	h := net.StepHours
	legEff := math.Sqrt(batt.RoundTripEfficiency)
	soc := batt.InitialSOCKWh

	residual := make([]float64, len(net.Samples))
	var ledger []LedgerRow
	if keepLedger {
		ledger = make([]LedgerRow, 0, len(net.Samples))
	}

	sum := Summary{}
	for i, v := range net.Samples {
		socStart := soc
		out := v
		powerKW := 0.0

		switch {
		case v > 0 && soc > 0:
			// Deficit: discharge up to the power limit, the deliverable
			// inventory, and the deficit itself.
			deliverable := math.Min(batt.PowerKW*h, soc*legEff)
			e := math.Min(deliverable, v*h)
			out = v - e/h
			powerKW = e / h
			soc -= e / legEff
			sum.EnergyDischargedKWh += e
		case v < 0 && soc < batt.CapacityKWh:
			// Surplus: charge up to the power limit, the remaining headroom,
			// and the surplus itself.
			absorbable := math.Min(batt.PowerKW*h, (batt.CapacityKWh-soc)/legEff)
			e := math.Min(absorbable, -v*h)
			out = v + e/h
			powerKW = -e / h
			soc += e * legEff
			sum.EnergyChargedKWh += e
		}

		// Clamp numeric drift.
		if soc < 0 {
			soc = 0
		}
		if soc > batt.CapacityKWh {
			soc = batt.CapacityKWh
		}

		residual[i] = out
		if keepLedger {
			ledger = append(ledger, LedgerRow{
				Index:       i,
				NetLoadKW:   v,
				ResidualKW:  out,
				PowerKW:     powerKW,
				Action:      model.ActionFromPowerKW(powerKW),
				SOCStartKWh: socStart,
				SOCEndKWh:   soc,
			})
		}
	}

	sum.FinalSOCKWh = soc
	if batt.CapacityKWh > 0 {
		sum.EquivalentCycles = (sum.EnergyChargedKWh + sum.EnergyDischargedKWh) / (2 * batt.CapacityKWh)
	}

	return Result{
		Residual: model.TimeSeries{StepHours: h, Samples: residual},
		Summary:  sum,
	}, ledger, nil
}
