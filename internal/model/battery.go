package model

import "fmt"

// BatteryParams defines the physical parameters of the battery.
// Units:
// - CapacityKWh: kWh
// - PowerKW: kW (applies to both charge and discharge)
// - RoundTripEfficiency: (0, 1]
// - InitialSOCKWh: kWh, within [0, CapacityKWh]
//
// A zero-capacity battery is valid and dispatches as a no-op.
type BatteryParams struct {
	CapacityKWh         float64
	PowerKW             float64
	RoundTripEfficiency float64
	InitialSOCKWh       float64
}

func (p BatteryParams) Validate() error {
	if p.CapacityKWh < 0 {
		return fmt.Errorf("%w: capacity must be >= 0 kWh, got %g", ErrBatteryConfig, p.CapacityKWh)
	}
	if p.PowerKW < 0 {
		return fmt.Errorf("%w: power limit must be >= 0 kW, got %g", ErrBatteryConfig, p.PowerKW)
	}
	if p.RoundTripEfficiency <= 0 || p.RoundTripEfficiency > 1 {
		return fmt.Errorf("%w: round-trip efficiency must be in (0, 1], got %g", ErrBatteryConfig, p.RoundTripEfficiency)
	}
	if p.InitialSOCKWh < 0 || p.InitialSOCKWh > p.CapacityKWh {
		return fmt.Errorf("%w: initial SOC %g kWh outside [0, %g]", ErrBatteryConfig, p.InitialSOCKWh, p.CapacityKWh)
	}
	return nil
}
