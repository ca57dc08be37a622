package model

import (
	"fmt"
	"math"
)

// TimeSeries is an ordered sequence of samples at a uniform time step.
// Samples are power in kW unless noted otherwise; multiply by StepHours to
// get per-step energy in kWh.
type TimeSeries struct {
	StepHours float64
	Samples   []float64
}

func NewTimeSeries(stepHours float64, samples []float64) (TimeSeries, error) {
	ts := TimeSeries{StepHours: stepHours, Samples: samples}
	if err := ts.Validate(); err != nil {
		return TimeSeries{}, err
	}
	return ts, nil
}

func (ts TimeSeries) Validate() error {
	if ts.StepHours <= 0 {
		return fmt.Errorf("%w: step must be > 0 hours, got %g", ErrInvalidInput, ts.StepHours)
	}
	if len(ts.Samples) == 0 {
		return fmt.Errorf("%w: empty series", ErrInvalidInput)
	}
	for i, v := range ts.Samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite sample at index %d", ErrInvalidInput, i)
		}
	}
	return nil
}

func (ts TimeSeries) Len() int { return len(ts.Samples) }

// HorizonHours is the total duration covered by the series.
func (ts TimeSeries) HorizonHours() float64 {
	return float64(len(ts.Samples)) * ts.StepHours
}

// Aligned reports whether two series can be combined sample-by-sample.
// Series used together must share length and step size; a mismatch is a
// configuration error, never silently truncated.
func (ts TimeSeries) Aligned(other TimeSeries) bool {
	return ts.StepHours == other.StepHours && len(ts.Samples) == len(other.Samples)
}

// Sub returns ts minus other, e.g. load minus PV = net load.
func (ts TimeSeries) Sub(other TimeSeries) (TimeSeries, error) {
	if !ts.Aligned(other) {
		return TimeSeries{}, fmt.Errorf("%w: misaligned series (%d samples @ %gh vs %d samples @ %gh)",
			ErrInvalidInput, len(ts.Samples), ts.StepHours, len(other.Samples), other.StepHours)
	}
	out := make([]float64, len(ts.Samples))
	for i := range ts.Samples {
		out[i] = ts.Samples[i] - other.Samples[i]
	}
	return TimeSeries{StepHours: ts.StepHours, Samples: out}, nil
}

// Scale returns a copy with every sample multiplied by k.
// Used to turn a per-kW PV profile into the output of a candidate capacity.
func (ts TimeSeries) Scale(k float64) TimeSeries {
	out := make([]float64, len(ts.Samples))
	for i, v := range ts.Samples {
		out[i] = v * k
	}
	return TimeSeries{StepHours: ts.StepHours, Samples: out}
}

// SurplusKWh is the total energy of negative samples (export), as a positive number.
func (ts TimeSeries) SurplusKWh() float64 {
	e := 0.0
	for _, v := range ts.Samples {
		if v < 0 {
			e += -v * ts.StepHours
		}
	}
	return e
}

// DeficitKWh is the total energy of positive samples (demand not met locally).
func (ts TimeSeries) DeficitKWh() float64 {
	e := 0.0
	for _, v := range ts.Samples {
		if v > 0 {
			e += v * ts.StepHours
		}
	}
	return e
}
