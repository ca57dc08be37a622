package main

import (
	"context"
	"flag"
	"fmt"
	"math"

	"pv-sizing/internal/model"
	"pv-sizing/internal/scm"
	"pv-sizing/internal/search"
)

// Demo:
// - Build a synthetic week of hourly household load and per-kW PV output
// - Run the capacity search with a small technology table
// - Print the optimum and the technology mix at the optimum
func main() {
	days := flag.Int("days", 7, "Number of synthetic days to simulate")
	flag.Parse()

	load, pv := syntheticWeek(*days)

	cfg := search.Config{
		Load:   load,
		PVUnit: pv,
		Technologies: []scm.ScreeningLine{
			{Name: "grid", Fixed: 0, Variable: 0.25},
			{Name: "backup-gen", Fixed: 60, Variable: 0.10},
		},
		PVCostPerKWYear:       110,
		BatteryCostPerKWhYear: 35,
		BatteryCostPerKWYear:  10,
		Battery: search.BatteryTemplate{
			RoundTripEfficiency: 0.9,
			PowerRatioKWPerKWh:  0.5,
		},
		FeedInPerKWh: 0.06,
		Grid: search.GridSpec{
			PVMinKW: 0, PVMaxKW: 10, PVStepKW: 0.5,
			BatteryMinKWh: 0, BatteryMaxKWh: 20, BatteryStepKWh: 1,
		},
	}

	res, err := search.Run(context.Background(), cfg)
	if err != nil {
		panic(err)
	}

	best := res.Best
	fmt.Printf("Grid points evaluated: %d\n", len(res.Surface))
	fmt.Printf("Optimal PV capacity:      %.2f kW\n", best.PVCapacityKW)
	fmt.Printf("Optimal battery capacity: %.2f kWh\n", best.BatteryCapacityKWh)
	fmt.Printf("Total annualized cost:    %.2f\n", best.TotalCost)
	fmt.Println()
	fmt.Printf("%-12s %10s %10s %12s %12s\n", "technology", "from_h", "to_h", "capacity_kw", "energy_kwh")
	for _, s := range res.BestMix.Segments {
		fmt.Printf("%-12s %10.1f %10.1f %12.2f %12.1f\n",
			s.Line.Name, s.StartHours, s.EndHours, s.CapacityKW, s.EnergyKWh)
	}
}

// syntheticWeek builds an hourly evening-peaking load profile and a midday
// PV bell, both repeated over the requested number of days.
func syntheticWeek(days int) (model.TimeSeries, model.TimeSeries) {
	n := days * 24
	load := make([]float64, n)
	pv := make([]float64, n)
	for i := 0; i < n; i++ {
		h := float64(i % 24)
		// Base load with a morning bump and an evening peak.
		load[i] = 0.4 +
			0.5*math.Exp(-sq(h-7.5)/4) +
			1.2*math.Exp(-sq(h-19)/6)
		// Per-kW PV output: daylight bell centered on noon.
		if h > 5 && h < 19 {
			pv[i] = 0.9 * math.Exp(-sq(h-12)/8)
		}
	}
	return model.TimeSeries{StepHours: 1, Samples: load},
		model.TimeSeries{StepHours: 1, Samples: pv}
}

func sq(x float64) float64 { return x * x }
