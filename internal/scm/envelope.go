package scm

import (
	"fmt"
	"sort"

	"pv-sizing/internal/model"
)

// Segment is one piece of the lower envelope: the interval of durations over
// which one technology is the minimum-cost choice, with its assigned capacity
// block and the energy that block serves.
type Segment struct {
	Line       ScreeningLine `json:"line"`
	StartHours float64       `json:"start_hours"`
	EndHours   float64       `json:"end_hours"`

	// CapacityKW is the width of the load band this technology serves:
	// the load above the level where the next technology on the envelope
	// takes over. Capacities across segments telescope to the peak load.
	CapacityKW float64 `json:"capacity_kw"`
	// EnergyKWh is the duration-curve area inside the band over the horizon.
	EnergyKWh float64 `json:"energy_kwh"`

	FixedCost    float64 `json:"fixed_cost"`    // CapacityKW * Fixed
	VariableCost float64 `json:"variable_cost"` // Variable * EnergyKWh
}

// Mix is the cost-minimizing technology assignment over [0, horizon]:
// contiguous segments whose breakpoints are intersections of adjacent lines,
// ordered from peaking (short durations) to baseload (long durations).
type Mix struct {
	Segments []Segment `json:"segments"`

	FixedCost    float64 `json:"fixed_cost"`
	VariableCost float64 `json:"variable_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// Breakpoints returns the segment boundaries in hours, excluding 0 and the
// horizon. Empty for a one-segment envelope.
func (m Mix) Breakpoints() []float64 {
	if len(m.Segments) < 2 {
		return nil
	}
	out := make([]float64, 0, len(m.Segments)-1)
	for _, s := range m.Segments[1:] {
		out = append(out, s.StartHours)
	}
	return out
}

// SolveEnvelope computes the minimum-cost technology per duration segment and
// the resulting total cost of serving the duration curve.
//
// The envelope is built hull-style over a sorted array of line records:
// lines sorted by descending variable cost (the minimum of linear functions
// has decreasing slope left to right), then pushed onto a stack while the
// pairwise intersections stay increasing. Lines that never appear on the
// envelope within the horizon are discarded as dominated.
func SolveEnvelope(curve DurationCurve, lines []ScreeningLine) (Mix, error) {
	if curve.Len() == 0 {
		return Mix{}, fmt.Errorf("%w: empty duration curve", model.ErrInvalidInput)
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return Mix{}, err
		}
	}
	horizon := curve.HorizonHours()

	// Among parallel lines only the cheapest intercept can ever appear on the
	// envelope; the others are dominated everywhere and excluded up front.
	sorted := append([]ScreeningLine(nil), lines...)
	sortLines(sorted)
	candidates := sorted[:0]
	for _, l := range sorted {
		if len(candidates) > 0 && candidates[len(candidates)-1].Variable == l.Variable {
			continue
		}
		candidates = append(candidates, l)
	}
	if len(candidates) == 0 {
		return Mix{}, fmt.Errorf("%w: empty screening line set", model.ErrNoFeasibleMix)
	}

	type entry struct {
		line  ScreeningLine
		start float64 // duration where the line becomes the cheapest
	}
	hull := make([]entry, 0, len(candidates))
	for _, l := range candidates {
		start := 0.0
		dominated := false
		for len(hull) > 0 {
			top := hull[len(hull)-1]
			x, err := top.line.Intersect(l)
			if err != nil {
				return Mix{}, err // unreachable after parallel pruning
			}
			// l has the smaller slope, so it is cheaper for durations > x.
			if x <= top.start {
				hull = hull[:len(hull)-1]
				continue
			}
			if x >= horizon {
				dominated = true
			}
			start = x
			break
		}
		if dominated {
			continue
		}
		hull = append(hull, entry{line: l, start: start})
	}

	mix := Mix{Segments: make([]Segment, 0, len(hull))}
	for i, e := range hull {
		end := horizon
		lo := 0.0
		if i+1 < len(hull) {
			end = hull[i+1].start
			lo = max(0, curve.MagnitudeAt(hull[i+1].start))
		}
		hi := max(0, curve.MagnitudeAt(e.start))
		capKW := hi - lo
		if capKW < 0 {
			capKW = 0
		}
		energy := curve.BandEnergyKWh(lo, hi)
		seg := Segment{
			Line:         e.line,
			StartHours:   e.start,
			EndHours:     end,
			CapacityKW:   capKW,
			EnergyKWh:    energy,
			FixedCost:    capKW * e.line.Fixed,
			VariableCost: e.line.Variable * energy,
		}
		mix.Segments = append(mix.Segments, seg)
		mix.FixedCost += seg.FixedCost
		mix.VariableCost += seg.VariableCost
	}
	mix.TotalCost = mix.FixedCost + mix.VariableCost
	return mix, nil
}

// sortLines orders by descending variable cost (the envelope's slope
// decreases left to right), breaking variable-cost ties by ascending fixed
// cost so the dominated duplicate is adjacent.
func sortLines(lines []ScreeningLine) {
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Variable != lines[j].Variable {
			return lines[i].Variable > lines[j].Variable
		}
		return lines[i].Fixed < lines[j].Fixed
	})
}
