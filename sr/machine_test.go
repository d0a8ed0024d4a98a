package sr

import (
	"math"
	"testing"

	"github.com/symreg-dev/symreg/sr/loss"
)

func TestMachineExecuteLinear(t *testing.T) {
	cs := testCodeSettings()
	code := buildSimpleCode(t) // x0 + x1*3
	worklist := make([]uint32, 0, 16)
	code.Analyze(worklist)

	ds := NewDataset[float64](Batch, cs.InputSize)
	for i := uint32(0); i < Batch; i++ {
		ds.SetX(0, i, float64(i))
		ds.SetX(1, i, 2.0)
		ds.SetY(i, 0)
	}
	ds.Pad(NewRandomEngine(1))

	m := NewMachine[float64](cs)
	out := m.Execute(code, ds, 0, true)
	for i := uint32(0); i < Batch; i++ {
		want := float64(i) + 2.0*3.0
		if out[i] != want {
			t.Fatalf("Execute()[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestMachineComputeScoreMSE(t *testing.T) {
	cs := testCodeSettings()
	code := buildSimpleCode(t)
	worklist := make([]uint32, 0, 16)
	code.Analyze(worklist)

	ds := NewDataset[float64](Batch, cs.InputSize)
	for i := uint32(0); i < Batch; i++ {
		ds.SetX(0, i, float64(i))
		ds.SetX(1, i, 2.0)
		ds.SetY(i, float64(i)+2.0*3.0) // matches the code's output exactly
	}
	ds.Pad(NewRandomEngine(1))

	m := NewMachine[float64](cs)
	r := loss.NewResult(1)
	fp := FitParams{Metric: MetricMSE}
	m.ComputeScore(code, ds, []uint32{0}, fp, TransformNone, 0, 0, false, r)

	if got := r.Mean(); got != 0 {
		t.Fatalf("Mean() = %v, want 0 for an exact fit", got)
	}
}

func TestMachineComputeScoreClipsPredictions(t *testing.T) {
	cs := testCodeSettings()
	c := NewCode[float64](cs)
	c.Constants()[0] = 1000
	*c.Instr(0) = Instruction{Op: OpNop, Src: [2]Operand{{Index: 0, IsConst: true}}}
	c.SetSize(1)
	worklist := make([]uint32, 0, 16)
	c.Analyze(worklist)

	ds := NewDataset[float64](Batch, cs.InputSize)
	for i := uint32(0); i < Batch; i++ {
		ds.SetX(0, i, 0)
		ds.SetX(1, i, 0)
		ds.SetY(i, 5)
	}
	ds.Pad(NewRandomEngine(1))

	m := NewMachine[float64](cs)
	r := loss.NewResult(1)
	fp := FitParams{Metric: MetricMSE}
	m.ComputeScore(c, ds, []uint32{0}, fp, TransformNone, 0, 10, true, r)

	if got := r.Mean(); got != 25 { // (10-5)^2
		t.Fatalf("Mean() with clip = %v, want 25", got)
	}
}

func TestMachineComputeScoreLogitApproxBypassesTransform(t *testing.T) {
	cs := testCodeSettings()
	c := NewCode[float64](cs)
	c.Constants()[0] = 100 // would clamp hard under sigmoid transform
	*c.Instr(0) = Instruction{Op: OpNop, Src: [2]Operand{{Index: 0, IsConst: true}}}
	c.SetSize(1)
	worklist := make([]uint32, 0, 16)
	c.Analyze(worklist)

	ds := NewDataset[float64](Batch, cs.InputSize)
	for i := uint32(0); i < Batch; i++ {
		ds.SetX(0, i, 0)
		ds.SetX(1, i, 0)
		ds.SetY(i, 1)
	}
	ds.Pad(NewRandomEngine(1))

	m := NewMachine[float64](cs)
	r := loss.NewResult(1)
	fp := FitParams{Metric: MetricLogitApprox, CW0: 1, CW1: 1}
	// clipMin<clipMax would normally clip to [0,1]; logit-approx must ignore it.
	m.ComputeScore(c, ds, []uint32{0}, fp, TransformSigmoidClamp, 0, 1, true, r)

	if math.IsNaN(r.Mean()) || math.IsInf(r.Mean(), 0) {
		t.Fatalf("Mean() = %v, want finite", r.Mean())
	}
}

func TestApplyTransformSigmoidClamp(t *testing.T) {
	y := []float64{1000, -1000, 0}
	applyTransform(y, TransformSigmoidClamp)
	for i, v := range y {
		if v <= 0 || v >= 1 {
			t.Fatalf("applyTransform(sigmoid)[%d] = %v, want in (0,1)", i, v)
		}
	}
}

func TestApplyTransformRound(t *testing.T) {
	y := []float64{1.4, 1.6, -1.5}
	applyTransform(y, TransformRound)
	want := []float64{1, 2, -2}
	for i := range y {
		if y[i] != want[i] {
			t.Fatalf("applyTransform(round)[%d] = %v, want %v", i, y[i], want[i])
		}
	}
}
