package sr

import "testing"

func testCodeSettings() CodeSettings {
	return CodeSettings{
		InputSize:   2,
		ConstSize:   4,
		MinCodeSize: 1,
		MaxCodeSize: 8,
	}
}

// x0 + x1 * c0
func buildSimpleCode(t *testing.T) *Code[float64] {
	t.Helper()
	c := NewCode[float64](testCodeSettings())
	c.Constants()[0] = 3.0
	*c.Instr(0) = Instruction{Op: OpMul, Src: [2]Operand{{Index: 1}, {Index: 0, IsConst: true}}}
	*c.Instr(1) = Instruction{Op: OpAdd, Src: [2]Operand{{Index: 0}, {Index: c.CodeStart() + 0}}}
	c.SetSize(2)
	return c
}

func TestCodeAnalyzeUsedSet(t *testing.T) {
	c := buildSimpleCode(t)
	worklist := make([]uint32, 0, 16)

	isConst := c.Analyze(worklist)
	if isConst {
		t.Fatalf("expected non-constant expression")
	}
	if got, want := c.TreeComplexity(), 3; got != want {
		t.Fatalf("TreeComplexity() = %d, want %d", got, want)
	}
	used := c.UsedInstructions()
	if len(used) != 2 {
		t.Fatalf("UsedInstructions() = %v, want 2 entries", used)
	}
	if used[0] != 1 {
		t.Fatalf("UsedInstructions()[0] = %d, want output instruction 1", used[0])
	}
	usedConst := c.UsedConst()
	if len(usedConst) != 1 || usedConst[0] != 0 {
		t.Fatalf("UsedConst() = %v, want [0]", usedConst)
	}
}

func TestCodeAnalyzeConstExpression(t *testing.T) {
	c := NewCode[float64](testCodeSettings())
	c.Constants()[0] = 2.0
	c.Constants()[1] = 3.0
	*c.Instr(0) = Instruction{Op: OpAdd, Src: [2]Operand{{Index: 0, IsConst: true}, {Index: 1, IsConst: true}}}
	c.SetSize(1)

	worklist := make([]uint32, 0, 16)
	if !c.Analyze(worklist) {
		t.Fatalf("expected constant expression")
	}
}

func TestCodeAnalyzeDeadInstructionNotUsed(t *testing.T) {
	c := NewCode[float64](testCodeSettings())
	// instruction 0 is dead: never referenced by instruction 1 (the output).
	*c.Instr(0) = Instruction{Op: OpInv, Src: [2]Operand{{Index: 0}}}
	*c.Instr(1) = Instruction{Op: OpInv, Src: [2]Operand{{Index: 1}}}
	c.SetSize(2)

	worklist := make([]uint32, 0, 16)
	c.Analyze(worklist)
	used := c.UsedInstructions()
	if len(used) != 1 || used[0] != 1 {
		t.Fatalf("UsedInstructions() = %v, want only the output instruction [1]", used)
	}
}

func TestCodeCopyFromIsIndependent(t *testing.T) {
	src := buildSimpleCode(t)
	worklist := make([]uint32, 0, 16)
	src.Analyze(worklist)

	dst := NewCode[float64](testCodeSettings())
	dst.CopyFrom(src)

	dst.Instr(0).Op = OpSub
	if src.Instr(0).Op == OpSub {
		t.Fatalf("CopyFrom aliased instruction storage")
	}
	dst.Constants()[0] = 99
	if src.Constants()[0] == 99 {
		t.Fatalf("CopyFrom aliased constant storage")
	}
}
