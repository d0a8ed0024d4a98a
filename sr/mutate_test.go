package sr

import "testing"

func TestCodeMutationKeepsProgramValid(t *testing.T) {
	cs := CodeSettings{InputSize: 2, ConstSize: 4, MinCodeSize: 4, MaxCodeSize: 4}
	consts := ConstSettings{Min: -1, Max: 1}
	ci := NewCodeInitializer[float64](cs, consts, BundleMath, []float64{1, 1})
	cm := NewCodeMutation[float64](consts, BundleMath, []float64{1, 1})

	r := NewRandomEngine(11)
	code := NewCode[float64](cs)
	ci.Init(r, code)

	worklist := make([]uint32, 0, 16)
	for trial := 0; trial < 50; trial++ {
		code.Analyze(worklist)
		cm.Mutate(r, code)

		for i := uint32(0); i < code.Size(); i++ {
			instr := code.Instr(i)
			for slot := 0; slot < instr.Op.Arity(); slot++ {
				op := instr.Src[slot]
				if !op.IsConst && op.Index >= code.CodeStart() && op.Index-code.CodeStart() >= i {
					t.Fatalf("trial %d: instruction %d slot %d references non-earlier instruction %d", trial, i, slot, op.Index)
				}
				if op.IsConst && op.Index >= cs.ConstSize {
					t.Fatalf("trial %d: instruction %d slot %d const index %d out of range", trial, i, slot, op.Index)
				}
			}
		}
	}
}

func TestConstMutationNoopWithoutUsedConst(t *testing.T) {
	cs := testCodeSettings()
	code := NewCode[float64](cs)
	*code.Instr(0) = Instruction{Op: OpAdd, Src: [2]Operand{{Index: 0}, {Index: 1}}}
	code.SetSize(1)
	worklist := make([]uint32, 0, 16)
	code.Analyze(worklist)

	before := append([]float64(nil), code.Constants()...)
	cm := NewConstMutation(ConstSettings{Min: -1, Max: 1})
	MutateConst(cm, NewRandomEngine(1), code)

	for i := range before {
		if code.Constants()[i] != before[i] {
			t.Fatalf("ConstMutation changed constants with no used constants")
		}
	}
}

func TestConstMutationStaysInRange(t *testing.T) {
	cs := testCodeSettings()
	code := NewCode[float64](cs)
	code.Constants()[0] = 0.5
	*code.Instr(0) = Instruction{Op: OpNop, Src: [2]Operand{{Index: 0, IsConst: true}}}
	code.SetSize(1)
	worklist := make([]uint32, 0, 16)
	code.Analyze(worklist)

	cm := NewConstMutation(ConstSettings{Min: -1, Max: 1})
	r := NewRandomEngine(5)
	for i := 0; i < 100; i++ {
		MutateConst(cm, r, code)
		if code.Constants()[0] < -1 || code.Constants()[0] > 1 {
			t.Fatalf("constant escaped [-1,1]: %v", code.Constants()[0])
		}
	}
}
