package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"pv-sizing/internal/analysis"
	"pv-sizing/internal/config"
	"pv-sizing/internal/data"
	"pv-sizing/internal/search"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "size":
		cmdSize(os.Args[2:])
	case "sensitivity":
		cmdSensitivity(os.Args[2:])
	case "curves":
		cmdCurves(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli size --config scenario.yaml --out results")
	fmt.Println("  cli sensitivity --config scenario.yaml")
	fmt.Println("  cli curves --config scenario.yaml --pv 5 --battery 10 --out results")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - size writes surface.csv, duration_curve.csv, mix.csv and ledger.csv")
	fmt.Println("  - sensitivity runs every override listed in the scenario file")
	fmt.Println("  - curves evaluates one fixed (pv, battery) configuration")
}

func cmdSize(args []string) {
	fs := flag.NewFlagSet("size", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML scenario")
	outDir := fs.String("out", "results", "Output directory for CSVs")
	_ = fs.Parse(args)

	_, sc := loadScenario(*cfgPath)

	res, err := search.Run(context.Background(), sc)
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		panic(err)
	}
	writeOrPanic(data.WriteSurfaceCSV(filepath.Join(*outDir, "surface.csv"), res.Surface))
	writeOrPanic(data.WriteDurationCurveCSV(filepath.Join(*outDir, "duration_curve.csv"), res.BestCurve))
	writeOrPanic(data.WriteMixCSV(filepath.Join(*outDir, "mix.csv"), res.BestMix))
	writeOrPanic(data.WriteLedgerCSV(filepath.Join(*outDir, "ledger.csv"), res.BestLedger))

	best := res.Best
	fmt.Printf("Optimal PV capacity:      %.2f kW\n", best.PVCapacityKW)
	fmt.Printf("Optimal battery capacity: %.2f kWh\n", best.BatteryCapacityKWh)
	fmt.Printf("Total annualized cost:    %.2f\n", best.TotalCost)
	fmt.Printf("  PV %.2f | battery %.2f | residual %.2f | export credit %.2f\n",
		best.PVCost, best.BatteryCost, best.ResidualCost, best.ExportCredit)
	pot := analysis.ComputePotential(res.Surface, res.Best)
	fmt.Printf("Savings vs no system:     %.2f/year (%.0f%%)\n", pot.SavingsPerYear, pot.SavingsFraction*100)

	fmt.Println("Top configurations:")
	for i, c := range analysis.Rank(res.Surface, 5) {
		fmt.Printf("  %d. pv %6.2f kW, battery %6.2f kWh -> %.2f\n",
			i+1, c.PVCapacityKW, c.BatteryCapacityKWh, c.TotalCost)
	}

	fmt.Printf("Wrote %d surface points to %s\n", len(res.Surface), *outDir)
	if len(res.Failed) > 0 {
		fmt.Printf("WARNING: %d grid points failed (first: %v)\n", len(res.Failed), res.Failed[0].Err)
	}
}

func cmdSensitivity(args []string) {
	fs := flag.NewFlagSet("sensitivity", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML scenario")
	_ = fs.Parse(args)

	cfg, sc := loadScenario(*cfgPath)
	if len(cfg.Sensitivity) == 0 {
		fmt.Println("scenario has no sensitivity overrides")
		os.Exit(2)
	}

	results, err := search.RunSensitivity(context.Background(), sc, cfg.Sensitivity)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%-24s %-10s %-12s %-12s\n", "scenario", "pv_kw", "battery_kwh", "total_cost")
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%-24s failed: %v\n", r.Name, r.Err)
			continue
		}
		b := r.Result.Best
		fmt.Printf("%-24s %-10.2f %-12.2f %-12.2f\n", r.Name, b.PVCapacityKW, b.BatteryCapacityKWh, b.TotalCost)
	}
}

func cmdCurves(args []string) {
	fs := flag.NewFlagSet("curves", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML scenario")
	pvKW := fs.Float64("pv", 0, "PV capacity in kW")
	battKWh := fs.Float64("battery", 0, "Battery capacity in kWh")
	outDir := fs.String("out", "results", "Output directory for CSVs")
	_ = fs.Parse(args)

	_, sc := loadScenario(*cfgPath)

	// Pin the grid to the single requested configuration and reuse the driver.
	sc.Grid = search.GridSpec{
		PVMinKW: *pvKW, PVMaxKW: *pvKW, PVStepKW: 1,
		BatteryMinKWh: *battKWh, BatteryMaxKWh: *battKWh, BatteryStepKWh: 1,
	}

	res, err := search.Run(context.Background(), sc)
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		panic(err)
	}
	writeOrPanic(data.WriteDurationCurveCSV(filepath.Join(*outDir, "duration_curve.csv"), res.BestCurve))
	writeOrPanic(data.WriteMixCSV(filepath.Join(*outDir, "mix.csv"), res.BestMix))
	writeOrPanic(data.WriteLedgerCSV(filepath.Join(*outDir, "ledger.csv"), res.BestLedger))

	fmt.Printf("Cost at pv=%.2f kW, battery=%.2f kWh: %.2f\n", *pvKW, *battKWh, res.Best.TotalCost)
	for _, s := range res.BestMix.Segments {
		fmt.Printf("  %-12s %8.1fh..%-8.1fh capacity %.2f kW, energy %.1f kWh\n",
			s.Line.Name, s.StartHours, s.EndHours, s.CapacityKW, s.EnergyKWh)
	}
}

func loadScenario(cfgPath string) (*config.Config, search.Config) {
	if cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}
	load, err := data.LoadSeriesCSV(cfg.Data.LoadCSV, cfg.Data.Column, cfg.Data.StepHours)
	if err != nil {
		panic(err)
	}
	pv, err := data.LoadSeriesCSV(cfg.Data.PVCSV, cfg.Data.Column, cfg.Data.StepHours)
	if err != nil {
		panic(err)
	}
	return cfg, cfg.ToSearchConfig(load, pv)
}

func writeOrPanic(err error) {
	if err != nil {
		panic(err)
	}
}
