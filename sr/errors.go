package sr

import "errors"

// Sentinel errors returned by Config validation and Solver.Fit. Numeric
// poisoning (a batch loss going non-finite) is never surfaced as an error:
// it is absorbed into the LargeFloat sentinel at the kernel boundary and
// never propagates out of Fit.
var (
	// ErrInvalidConfig is returned when a Config or FitParams combination
	// cannot produce a valid Solver: wrong precision, mismatched column
	// count, too few rows, or a code-size/const-size configuration that
	// can never be satisfied.
	ErrInvalidConfig = errors.New("symreg: invalid configuration")

	// ErrEmptyResult is returned by Predict/GetBestModel/GetModelById when
	// no Fit has completed yet. A climber whose 30 initial candidates are
	// all constant expressions does not produce it: Solver.Fit panics then.
	ErrEmptyResult = errors.New("symreg: no fitted model available")

	// ErrUnknownModel is returned by GetModelById when the requested id
	// does not address any climber in any Solver's population.
	ErrUnknownModel = errors.New("symreg: unknown model id")
)

// ConfigError wraps ErrInvalidConfig with the offending field, so callers at
// the binary boundary (§6) can log a precise reason while still matching
// ErrInvalidConfig via errors.Is.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "symreg: invalid configuration: " + e.Field + ": " + e.Reason
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
