package models

import (
	"time"

	"pv-sizing/internal/analysis"
	"pv-sizing/internal/dispatch"
	"pv-sizing/internal/model"
	"pv-sizing/internal/scm"
)

// SizeResponse is the result of one capacity search.
type SizeResponse struct {
	RunID string           `json:"run_id,omitempty"`
	Best  model.CostResult `json:"best"`

	// Savings compares the optimum against the no-system baseline point.
	Savings Savings `json:"savings"`

	// Breakpoints and Mix describe the technology assignment at the optimum.
	Breakpoints []float64     `json:"breakpoints,omitempty"`
	Mix         []scm.Segment `json:"mix"`

	Surface []model.CostResult `json:"surface,omitempty"`
	Curve   []scm.Point        `json:"curve,omitempty"`
	Ledger  []LedgerRow        `json:"ledger,omitempty"`
}

// Savings mirrors analysis.SavingsPotential for JSON output.
type Savings struct {
	BaselineTotalCost float64 `json:"baseline_total_cost"`
	BaselineExact     bool    `json:"baseline_exact"`
	PerYear           float64 `json:"per_year"`
	Fraction          float64 `json:"fraction"`
}

func SavingsFromPotential(p analysis.SavingsPotential) Savings {
	return Savings{
		BaselineTotalCost: p.Baseline.TotalCost,
		BaselineExact:     p.BaselineExact,
		PerYear:           p.SavingsPerYear,
		Fraction:          p.SavingsFraction,
	}
}

// LedgerRow mirrors dispatch.LedgerRow for JSON output.
type LedgerRow struct {
	Index       int     `json:"index"`
	NetLoadKW   float64 `json:"net_load_kw"`
	ResidualKW  float64 `json:"residual_kw"`
	PowerKW     float64 `json:"power_kw"`
	Action      string  `json:"action"`
	SOCStartKWh float64 `json:"soc_start_kwh"`
	SOCEndKWh   float64 `json:"soc_end_kwh"`
}

func LedgerFromDispatch(rows []dispatch.LedgerRow) []LedgerRow {
	out := make([]LedgerRow, len(rows))
	for i, r := range rows {
		out[i] = LedgerRow{
			Index:       r.Index,
			NetLoadKW:   r.NetLoadKW,
			ResidualKW:  r.ResidualKW,
			PowerKW:     r.PowerKW,
			Action:      string(r.Action),
			SOCStartKWh: r.SOCStartKWh,
			SOCEndKWh:   r.SOCEndKWh,
		}
	}
	return out
}

// SensitivityResponse holds one entry per override, in request order.
type SensitivityResponse struct {
	Results []SensitivityEntry `json:"results"`
}

type SensitivityEntry struct {
	Name  string            `json:"name"`
	Best  *model.CostResult `json:"best,omitempty"`
	Error string            `json:"error,omitempty"`
}

// RunSummary is one stored run in a listing.
type RunSummary struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Label     string           `json:"label,omitempty"`
	Best      model.CostResult `json:"best"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
