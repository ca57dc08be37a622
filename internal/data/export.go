package data

import (
	"encoding/csv"
	"os"
	"strconv"

	"pv-sizing/internal/dispatch"
	"pv-sizing/internal/model"
	"pv-sizing/internal/scm"
)

// CSV writers for the search outputs. Persistence and rendering are external
// collaborator concerns; these files are what plotting scripts consume.

// WriteSurfaceCSV writes one row per grid point of the cost surface.
func WriteSurfaceCSV(path string, surface []model.CostResult) error {
	return writeCSV(path, []string{
		"pv_capacity_kw",
		"battery_capacity_kwh",
		"pv_cost",
		"battery_cost",
		"residual_cost",
		"export_credit",
		"total_cost",
	}, len(surface), func(i int) []string {
		r := surface[i]
		return []string{
			fmtFloat(r.PVCapacityKW),
			fmtFloat(r.BatteryCapacityKWh),
			fmtFloat(r.PVCost),
			fmtFloat(r.BatteryCost),
			fmtFloat(r.ResidualCost),
			fmtFloat(r.ExportCredit),
			fmtFloat(r.TotalCost),
		}
	})
}

// WriteDurationCurveCSV writes (duration, magnitude) pairs.
func WriteDurationCurveCSV(path string, curve scm.DurationCurve) error {
	points := curve.Points()
	return writeCSV(path, []string{"duration_hours", "magnitude_kw"}, len(points), func(i int) []string {
		return []string{fmtFloat(points[i].DurationHours), fmtFloat(points[i].MagnitudeKW)}
	})
}

// WriteMixCSV writes the technology-mix segments of a lower envelope.
func WriteMixCSV(path string, mix scm.Mix) error {
	return writeCSV(path, []string{
		"technology",
		"start_hours",
		"end_hours",
		"capacity_kw",
		"energy_kwh",
		"fixed_cost",
		"variable_cost",
	}, len(mix.Segments), func(i int) []string {
		s := mix.Segments[i]
		return []string{
			s.Line.Name,
			fmtFloat(s.StartHours),
			fmtFloat(s.EndHours),
			fmtFloat(s.CapacityKW),
			fmtFloat(s.EnergyKWh),
			fmtFloat(s.FixedCost),
			fmtFloat(s.VariableCost),
		}
	})
}

// WriteLedgerCSV writes the per-step battery trace of a dispatch run.
func WriteLedgerCSV(path string, ledger []dispatch.LedgerRow) error {
	return writeCSV(path, []string{
		"index",
		"net_load_kw",
		"residual_kw",
		"power_kw",
		"action",
		"soc_start_kwh",
		"soc_end_kwh",
	}, len(ledger), func(i int) []string {
		r := ledger[i]
		return []string{
			strconv.Itoa(r.Index),
			fmtFloat(r.NetLoadKW),
			fmtFloat(r.ResidualKW),
			fmtFloat(r.PowerKW),
			string(r.Action),
			fmtFloat(r.SOCStartKWh),
			fmtFloat(r.SOCEndKWh),
		}
	})
}

func writeCSV(path string, header []string, n int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return err
		}
	}
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
