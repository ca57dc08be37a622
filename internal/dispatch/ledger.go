package dispatch

import "pv-sizing/internal/model"

// LedgerRow is one step of per-interval output.
// This is the primary artifact for "what the battery did" in a run.
// Power convention: positive = discharging, negative = charging.
type LedgerRow struct {
	Index int

	NetLoadKW  float64
	ResidualKW float64
	PowerKW    float64

	Action model.Action

	SOCStartKWh float64
	SOCEndKWh   float64
}
