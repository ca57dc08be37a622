package scm

import (
	"fmt"

	"pv-sizing/internal/model"
)

// ScreeningLine models one generation technology's annualized cost as a
// linear function of duration-of-use:
//
//	Cost(d) = Fixed + Variable*d
//
// Fixed is cost per kW-year of installed capacity, Variable is cost per kWh
// served. Low fixed / high variable suits peaking use (short durations),
// high fixed / low variable suits baseload use (long durations).
type ScreeningLine struct {
	Name     string  `json:"name" yaml:"name"`
	Fixed    float64 `json:"fixed_per_kw_year" yaml:"fixed_per_kw_year"`
	Variable float64 `json:"variable_per_kwh" yaml:"variable_per_kwh"`
}

func (l ScreeningLine) Validate() error {
	if l.Fixed < 0 {
		return fmt.Errorf("%w: technology %q has negative fixed cost %g", model.ErrInvalidInput, l.Name, l.Fixed)
	}
	if l.Variable < 0 {
		return fmt.Errorf("%w: technology %q has negative variable cost %g", model.ErrInvalidInput, l.Name, l.Variable)
	}
	return nil
}

// Cost evaluates the line at a duration-of-use in hours.
func (l ScreeningLine) Cost(durationHours float64) float64 {
	return l.Fixed + l.Variable*durationHours
}

// Intersect returns the duration at which l and other cost the same.
// Parallel lines (equal variable cost) never cross: one dominates the other
// everywhere and must be excluded from the mix, so this is ErrDegenerateInput
// rather than a division by zero.
func (l ScreeningLine) Intersect(other ScreeningLine) (float64, error) {
	if l.Variable == other.Variable {
		return 0, fmt.Errorf("%w: parallel screening lines %q and %q (variable cost %g)",
			model.ErrDegenerateInput, l.Name, other.Name, l.Variable)
	}
	return (other.Fixed - l.Fixed) / (l.Variable - other.Variable), nil
}
