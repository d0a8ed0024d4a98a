package sr

import (
	"strings"
	"testing"
)

func TestInfixRendersZeroBasedInputsAndDenseConstants(t *testing.T) {
	code := buildSimpleCode(t) // x1*c0 + x0
	worklist := make([]uint32, 0, 16)
	code.Analyze(worklist)

	expr, consts := code.Infix()
	if !strings.Contains(expr, "x1") || !strings.Contains(expr, "x0") {
		t.Fatalf("Infix() = %q, want x0 and x1 references", expr)
	}
	if !strings.Contains(expr, "c0") {
		t.Fatalf("Infix() = %q, want a c0 constant reference", expr)
	}
	if len(consts) != 1 || consts[0] != 3.0 {
		t.Fatalf("Infix() constants = %v, want [3.0]", consts)
	}
}

func TestInfixSkipsDeadInstructions(t *testing.T) {
	cs := testCodeSettings()
	c := NewCode[float64](cs)
	*c.Instr(0) = Instruction{Op: OpInv, Src: [2]Operand{{Index: 0}}} // dead
	*c.Instr(1) = Instruction{Op: OpInv, Src: [2]Operand{{Index: 1}}} // output
	c.SetSize(2)
	worklist := make([]uint32, 0, 16)
	c.Analyze(worklist)

	expr, _ := c.Infix()
	if expr != "(-x1)" {
		t.Fatalf("Infix() = %q, want (-x1)", expr)
	}
}

func TestToNumpySourceBuildsValidFunctionHeader(t *testing.T) {
	code := buildSimpleCode(t)
	worklist := make([]uint32, 0, 16)
	code.Analyze(worklist)

	src := code.ToNumpySource("model")
	if !strings.HasPrefix(src, "def model(x0, x1):") {
		t.Fatalf("ToNumpySource() header = %q", strings.SplitN(src, "\n", 2)[0])
	}
	if !strings.Contains(src, "return") {
		t.Fatalf("ToNumpySource() missing return: %q", src)
	}
}

func TestToNumpySourcePdivPrimitive(t *testing.T) {
	cs := testCodeSettings()
	c := NewCode[float64](cs)
	*c.Instr(0) = Instruction{Op: OpPdiv, Src: [2]Operand{{Index: 0}, {Index: 1}}}
	c.SetSize(1)
	worklist := make([]uint32, 0, 16)
	c.Analyze(worklist)

	src := c.ToNumpySource("f")
	if !strings.Contains(src, "np.sqrt(1e-8") {
		t.Fatalf("ToNumpySource() pdiv lowering = %q, want the pdiv sqrt primitive", src)
	}
}
