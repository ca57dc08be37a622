package scm

import (
	"math"
	"sort"

	"pv-sizing/internal/model"
)

// DurationCurve is a time series reordered by descending magnitude. The i-th
// sample (0-based) is the load level exceeded or met for (i+1)*StepHours of
// the horizon. Magnitudes keep their sign: negative residual load means net
// export and stays negative.
type DurationCurve struct {
	StepHours  float64
	Magnitudes []float64 // non-increasing
}

// BuildDurationCurve reorders a series by descending magnitude. Pure function;
// the result is a permutation of the input, same length and step.
func BuildDurationCurve(ts model.TimeSeries) (DurationCurve, error) {
	if err := ts.Validate(); err != nil {
		return DurationCurve{}, err
	}
	mags := append([]float64(nil), ts.Samples...)
	sort.Sort(sort.Reverse(sort.Float64Slice(mags)))
	return DurationCurve{StepHours: ts.StepHours, Magnitudes: mags}, nil
}

func (c DurationCurve) Len() int { return len(c.Magnitudes) }

func (c DurationCurve) HorizonHours() float64 {
	return float64(len(c.Magnitudes)) * c.StepHours
}

// DurationAt is the cumulative duration covered through sample i, in hours.
func (c DurationCurve) DurationAt(i int) float64 {
	return float64(i+1) * c.StepHours
}

// MagnitudeAt is the step-function reading of the curve at duration d:
// the load level that is needed for at least d hours. d <= 0 reads the peak,
// d >= horizon reads the minimum.
func (c DurationCurve) MagnitudeAt(d float64) float64 {
	if len(c.Magnitudes) == 0 {
		return 0
	}
	if d <= 0 {
		return c.Magnitudes[0]
	}
	i := int(math.Ceil(d/c.StepHours)) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(c.Magnitudes) {
		i = len(c.Magnitudes) - 1
	}
	return c.Magnitudes[i]
}

// BandEnergyKWh integrates the curve clipped to the magnitude band [lo, hi]:
// the energy served by a capacity block spanning load levels lo..hi over the
// horizon. Samples at or below lo contribute nothing.
func (c DurationCurve) BandEnergyKWh(lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	e := 0.0
	for _, m := range c.Magnitudes {
		if m <= lo {
			break // descending order, nothing left inside the band
		}
		top := m
		if top > hi {
			top = hi
		}
		e += (top - lo) * c.StepHours
	}
	return e
}

// Point is one (duration, magnitude) pair, for export and plotting.
type Point struct {
	DurationHours float64 `json:"duration_hours"`
	MagnitudeKW   float64 `json:"magnitude_kw"`
}

func (c DurationCurve) Points() []Point {
	out := make([]Point, len(c.Magnitudes))
	for i, m := range c.Magnitudes {
		out[i] = Point{DurationHours: c.DurationAt(i), MagnitudeKW: m}
	}
	return out
}
