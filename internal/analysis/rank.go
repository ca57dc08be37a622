package analysis

import (
	"sort"

	"pv-sizing/internal/model"
)

// Rank sorts a copy of the cost surface cheapest-first and keeps the top n
// entries (n <= 0 keeps all). Ties order by smaller battery, then smaller PV,
// so the ranking is stable across runs.
func Rank(surface []model.CostResult, n int) []model.CostResult {
	out := append([]model.CostResult(nil), surface...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalCost != b.TotalCost {
			return a.TotalCost < b.TotalCost
		}
		if a.BatteryCapacityKWh != b.BatteryCapacityKWh {
			return a.BatteryCapacityKWh < b.BatteryCapacityKWh
		}
		return a.PVCapacityKW < b.PVCapacityKW
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
