package sr

// Operand references either the constant pool, a raw input column, or an
// earlier instruction's output, resolved by (Index, IsConst) plus the
// owning Code's CodeStart: Index < CodeStart addresses an input column,
// Index >= CodeStart addresses instruction (Index - CodeStart) (§3).
type Operand struct {
	Index   uint32
	IsConst bool
}

// Instruction is one step of a straight-line program: an opcode and two
// operands. Arity-1 opcodes ignore the second operand. Used is a
// transient, per-walk flag recomputed by Code.Analyze.
type Instruction struct {
	Op   OpCode
	Src  [2]Operand
	Used bool
}

// Code is a straight-line program of up to CodeSettings.MaxCodeSize
// instructions over element type T (§3). The last live instruction
// (Size()-1) is always the program's output.
type Code[T Float] struct {
	settings  CodeSettings
	size      uint32
	instr     []Instruction
	constants []T

	usedInstructions []uint32 // indices of live, reachable instructions, output-first
	usedConst        []uint32 // dense, traversal-ordered constant-pool indices
	treeComplexity   int      // traversal-step count, duplicates counted (§9 Open Question (a))
}

// NewCode allocates a Code sized for the given settings. The instruction
// and constant-pool backing arrays are allocated once and reused across
// mutation and Re-Analyze calls, so the inner search loop never allocates
// (§9 "Hot-loop allocation").
func NewCode[T Float](cs CodeSettings) *Code[T] {
	return &Code[T]{
		settings:         cs,
		instr:            make([]Instruction, cs.MaxCodeSize),
		constants:        make([]T, cs.ConstSize),
		usedInstructions: make([]uint32, 0, cs.MaxCodeSize),
		usedConst:        make([]uint32, 0, cs.ConstSize),
	}
}

// CopyFrom overwrites c's contents with src's, without allocating. Used by
// the hill-climber to clone Current into a scratch neighbour buffer every
// iteration.
func (c *Code[T]) CopyFrom(src *Code[T]) {
	c.settings = src.settings
	c.size = src.size
	copy(c.instr, src.instr[:cap(c.instr)])
	copy(c.constants, src.constants)
	c.usedInstructions = append(c.usedInstructions[:0], src.usedInstructions...)
	c.usedConst = append(c.usedConst[:0], src.usedConst...)
	c.treeComplexity = src.treeComplexity
}

// Settings returns the CodeSettings this Code was allocated with.
func (c *Code[T]) Settings() CodeSettings { return c.settings }

// MaxSize returns the instruction-array capacity (CodeSettings.MaxCodeSize).
func (c *Code[T]) MaxSize() int { return len(c.instr) }

// Size returns the number of live instruction slots.
func (c *Code[T]) Size() uint32 { return c.size }

// SetSize sets the number of live instruction slots. size must be <=
// MaxSize().
func (c *Code[T]) SetSize(size uint32) {
	if int(size) > len(c.instr) {
		panic("sr: Code.SetSize exceeds MaxCodeSize")
	}
	c.size = size
}

// CodeStart is the instruction-index base (== InputSize): the boundary
// between "raw column" and "earlier instruction" operand references.
func (c *Code[T]) CodeStart() uint32 { return c.settings.InputSize }

// Instr returns a pointer to instruction idx, for in-place mutation.
func (c *Code[T]) Instr(idx uint32) *Instruction { return &c.instr[idx] }

// Constants returns the constant pool, mutable in place.
func (c *Code[T]) Constants() []T { return c.constants }

// UsedInstructions returns the reachable-instruction indices computed by
// the last Analyze call, output instruction first.
func (c *Code[T]) UsedInstructions() []uint32 { return c.usedInstructions }

// UsedConst returns the dense, traversal-ordered constant-pool indices
// computed by the last Analyze call.
func (c *Code[T]) UsedConst() []uint32 { return c.usedConst }

// TreeComplexity returns the traversal-step count computed by the last
// Analyze call. A node reachable via two distinct paths is counted twice
// (§9 Open Question (a)): this is the reference implementation's intended
// definition, not a bug to be fixed here.
func (c *Code[T]) TreeComplexity() int { return c.treeComplexity }

// Analyze walks the used-subgraph from the output instruction (Size()-1)
// depth-first, popping a scratch worklist as a LIFO stack, marking every reachable
// instruction's Used flag, collecting the dense set of referenced
// constant-pool indices, and counting tree complexity. It reports whether
// the code is a constant expression: one whose output never depends on a
// raw input column, which the search rejects outright (§3, §4.C).
//
// worklist is caller-supplied scratch space (capacity >= 2*MaxCodeSize is
// sufficient) so that repeated calls across the hot loop never allocate
// (§9 "Used-mask recomputation").
func (c *Code[T]) Analyze(worklist []uint32) bool {
	c.usedInstructions = c.usedInstructions[:0]
	c.usedConst = c.usedConst[:0]
	c.treeComplexity = 0
	for i := range c.instr[:c.size] {
		c.instr[i].Used = false
	}

	isConstExpr := true
	stack := worklist[:0]

	visit := func(pos uint32) {
		instr := &c.instr[pos]
		arity := instr.Op.Arity()
		for k := 0; k < arity; k++ {
			op := instr.Src[k]
			if op.IsConst {
				if !containsU32(c.usedConst, op.Index) {
					c.usedConst = append(c.usedConst, op.Index)
				}
				continue
			}
			if op.Index < c.CodeStart() {
				isConstExpr = false
				continue
			}
			stack = append(stack, op.Index-c.CodeStart())
		}
	}

	outPos := c.size - 1
	c.instr[outPos].Used = true
	c.usedInstructions = append(c.usedInstructions, outPos)
	c.treeComplexity++
	visit(outPos)

	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.treeComplexity++
		if !c.instr[pos].Used {
			c.instr[pos].Used = true
			c.usedInstructions = append(c.usedInstructions, pos)
		}
		visit(pos)
	}

	return isConstExpr
}

// IsConstExpression re-runs Analyze and returns only the constant-expression
// verdict, for call sites that don't need the used-mask itself.
func (c *Code[T]) IsConstExpression(worklist []uint32) bool {
	return c.Analyze(worklist)
}

func containsU32(s []uint32, v uint32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
