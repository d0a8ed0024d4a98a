package sr

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolveInstructionSet turns a FitParams.InstructionSet string into a
// concrete probability bundle (§4.B): either one of the named defaults
// ("simple", "math", "fuzzy") or a custom "name prob; name prob; ..." list.
func ResolveInstructionSet(spec string) ([]InstrProb, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return BundleMath, nil
	}
	if bundle, ok := namedBundles[spec]; ok {
		return bundle, nil
	}

	parts := strings.Split(spec, ";")
	out := make([]InstrProb, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return nil, &ConfigError{Field: "InstructionSet", Reason: fmt.Sprintf("malformed entry %q, want \"name prob\"", part)}
		}
		op, ok := opByName[fields[0]]
		if !ok {
			return nil, &ConfigError{Field: "InstructionSet", Reason: fmt.Sprintf("unknown opcode %q", fields[0])}
		}
		w, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, &ConfigError{Field: "InstructionSet", Reason: fmt.Sprintf("bad weight for %q: %v", fields[0], err)}
		}
		out = append(out, InstrProb{Op: op, Weight: w})
	}
	if len(out) == 0 {
		return nil, &ConfigError{Field: "InstructionSet", Reason: "no opcodes parsed"}
	}
	return out, nil
}

// ResolveFeatureProbs turns a FitParams.FeatureProbs string into per-column
// weights. "xicor" defers to the caller (the Engine Facade fills weights
// from the Xicor correlation of each column against y, per §4.J); anything
// else must be a "p; p; ..." list of exactly inputSize weights.
func ResolveFeatureProbs(spec string, inputSize uint32) ([]float64, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "xicor" {
		return nil, nil
	}

	parts := strings.Split(spec, ";")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, &ConfigError{Field: "FeatureProbs", Reason: fmt.Sprintf("bad weight %q: %v", part, err)}
		}
		out = append(out, w)
	}
	if uint32(len(out)) != inputSize {
		return nil, &ConfigError{Field: "FeatureProbs", Reason: fmt.Sprintf("expected %d weights, got %d", inputSize, len(out))}
	}
	return out, nil
}

// IsXicorRequested reports whether FitParams.FeatureProbs asked the caller
// (the Engine Facade) to derive weights from Xicor rather than supplying
// them directly.
func IsXicorRequested(spec string) bool {
	spec = strings.TrimSpace(spec)
	return spec == "" || spec == "xicor"
}
