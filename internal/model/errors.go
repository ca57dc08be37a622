package model

import "errors"

// Error kinds surfaced by the sizing engine. Everything the engine reports
// wraps one of these, so callers can branch with errors.Is.
var (
	// ErrInvalidInput marks malformed or misaligned input: empty series,
	// non-finite samples, mismatched lengths or step sizes, negative costs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateInput marks parallel screening lines. Parallel lines never
	// cross; one dominates the other everywhere and is excluded from the mix.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrNoFeasibleMix means no technology survives dominance pruning, or the
	// search grid is empty.
	ErrNoFeasibleMix = errors.New("no feasible mix")

	// ErrBatteryConfig marks non-physical battery parameters.
	ErrBatteryConfig = errors.New("invalid battery config")
)
