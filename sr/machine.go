package sr

import (
	"math"

	"github.com/symreg-dev/symreg/sr/loss"
)

// Machine executes a Code against a Dataset one batch at a time, applies
// the configured output transform and clip, and folds per-batch losses
// into a loss.Result (§4.D). A Machine owns its scratch memory and is not
// safe for concurrent use — each Solver owns exactly one, mirroring
// RandomEngine (§5).
type Machine[T Float] struct {
	settings CodeSettings
	scratch  [][]T // one Batch-length slice per instruction slot
}

// NewMachine allocates a Machine sized for cs. The scratch slices are
// allocated once and reused for every Execute call.
func NewMachine[T Float](cs CodeSettings) *Machine[T] {
	scratch := make([][]T, cs.MaxCodeSize)
	for i := range scratch {
		scratch[i] = make([]T, Batch)
	}
	return &Machine[T]{settings: cs, scratch: scratch}
}

// operand resolves one instruction operand to either a constant value or a
// Batch-length slice (a raw input column batch, or an earlier instruction's
// scratch slot).
func (m *Machine[T]) operand(code *Code[T], ds *Dataset[T], batchIndex uint32, op Operand) (val T, slice []T, isConst bool) {
	if op.IsConst {
		return code.Constants()[op.Index], nil, true
	}
	if op.Index < m.settings.InputSize {
		return 0, ds.BatchX(int(op.Index), batchIndex), false
	}
	return 0, m.scratch[op.Index-m.settings.InputSize], false
}

// Execute runs every live (used) instruction of code against batchIndex of
// ds, in program order, and returns the scratch slice of the last live
// instruction: the program's output batch. filter=false executes every
// instruction regardless of its Used flag, for a Code whose Used flags
// Analyze has not set.
func (m *Machine[T]) Execute(code *Code[T], ds *Dataset[T], batchIndex uint32, filter bool) []T {
	for pos := uint32(0); pos < code.Size(); pos++ {
		instr := code.Instr(pos)
		if filter && !instr.Used {
			continue
		}
		dst := m.scratch[pos]
		aVal, aSlice, aConst := m.operand(code, ds, batchIndex, instr.Src[0])

		if instr.Op.Arity() == 1 {
			if aConst {
				v := scalarOp(instr.Op, aVal, aVal)
				for n := range dst {
					dst[n] = v
				}
			} else {
				for n := range dst {
					dst[n] = scalarOp(instr.Op, aSlice[n], aSlice[n])
				}
			}
			continue
		}

		bVal, bSlice, bConst := m.operand(code, ds, batchIndex, instr.Src[1])
		switch {
		case aConst && bConst:
			v := scalarOp(instr.Op, aVal, bVal)
			for n := range dst {
				dst[n] = v
			}
		case aConst && !bConst:
			for n := range dst {
				dst[n] = scalarOp(instr.Op, aVal, bSlice[n])
			}
		case !aConst && bConst:
			for n := range dst {
				dst[n] = scalarOp(instr.Op, aSlice[n], bVal)
			}
		default:
			for n := range dst {
				dst[n] = scalarOp(instr.Op, aSlice[n], bSlice[n])
			}
		}
	}
	return m.scratch[code.Size()-1]
}

// applyTransform applies a Transformation to a batch in place.
func applyTransform[T Float](y []T, transform Transformation) {
	switch transform {
	case TransformSigmoidClamp:
		for i, v := range y {
			if v > 20 {
				v = 20
			} else if v < -20 {
				v = -20
			}
			y[i] = 1 / (1 + T(math.Exp(float64(-v))))
		}
	case TransformAffineClamp:
		for i, v := range y {
			v = 0.25*v + 0.5
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			y[i] = v
		}
	case TransformRound:
		for i, v := range y {
			y[i] = T(math.Round(float64(v)))
		}
	}
}

// ComputeScore executes code on every batch in batches, applies the
// configured transform+clip (skipped entirely for MetricLogitApprox, per
// §9 Open Question (d)), scores each batch with the metric's loss kernel,
// and folds the result into r. r is reset by the caller beforehand;
// ComputeScore only appends.
func (m *Machine[T]) ComputeScore(code *Code[T], ds *Dataset[T], batches []uint32, fp FitParams, transform Transformation, clipMin, clipMax T, clips bool, r *loss.Result) {
	for _, batchIdx := range batches {
		yPred := m.Execute(code, ds, batchIdx, true)

		if fp.Metric != MetricLogitApprox {
			if transform != TransformNone {
				applyTransform(yPred, transform)
			}
			if clips {
				loss.Clip(yPred, clipMin, clipMax)
			}
		}

		yTrue := ds.BatchY(batchIdx)
		var weight []T
		if ds.HasWeight() {
			weight = ds.BatchWeight(batchIdx)
		}

		var score float64
		switch fp.Metric {
		case MetricMSE:
			score = loss.SqErr(yTrue, yPred)
		case MetricMAE:
			score = loss.MAE(yTrue, yPred)
		case MetricMSLE:
			score = loss.MSLE(yTrue, yPred)
		case MetricPseudoKendall:
			score = loss.PseudoKendall(yTrue, yPred)
		case MetricLogLoss:
			score = loss.LogLoss(yTrue, yPred, fp.CW0, fp.CW1, weight)
		case MetricLogitApprox:
			score = loss.LogitApprox(yTrue, yPred, fp.CW0, fp.CW1, weight)
		}
		r.Add(batchIdx, score, Batch)
	}
}

// Predict executes code over every batch of ds, applying the given
// transform+clip the way ComputeScore does for every metric other than
// MetricLogitApprox (Predict takes no metric and always applies them), and
// writes the result into out (len(out) must be ds.BatchCount()*Batch).
func (m *Machine[T]) Predict(code *Code[T], ds *Dataset[T], transform Transformation, clipMin, clipMax T, clips bool, out []T) {
	for batchIdx := uint32(0); batchIdx < ds.BatchCount(); batchIdx++ {
		yPred := m.Execute(code, ds, batchIdx, true)
		if transform != TransformNone {
			applyTransform(yPred, transform)
		}
		if clips {
			loss.Clip(yPred, clipMin, clipMax)
		}
		copy(out[batchIdx*Batch:], yPred)
	}
}
