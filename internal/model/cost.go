package model

// CostResult is the annualized cost of one (PV capacity, battery capacity)
// candidate. Immutable once computed; the search driver only compares and
// collects these.
type CostResult struct {
	PVCapacityKW       float64 `json:"pv_capacity_kw"`
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`

	PVCost       float64 `json:"pv_cost"`       // PV capital, per year
	BatteryCost  float64 `json:"battery_cost"`  // battery capital (energy + power), per year
	ResidualCost float64 `json:"residual_cost"` // lower-envelope cost of serving the residual curve
	ExportCredit float64 `json:"export_credit"` // feed-in revenue for residual surplus

	TotalCost float64 `json:"total_cost"`
}
