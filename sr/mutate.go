package sr

// mutateConst4 perturbs val by a multiplicative delta drawn from a steep
// (quartic) distribution biased toward small changes, then clips to
// [clipMin,clipMax]. factor scales the delta's magnitude: ConstMutation
// uses 1.0 (a full-strength const tweak), CodeMutation's incidental
// constant rewrite uses 0.1 (a gentler nudge, since the rest of the
// instruction already changed).
func mutateConst4[T Float](r *RandomEngine, val, clipMin, clipMax T, factor T) T {
	const epsilon = 0.000001
	delta := r.Float64Range(0, 1.0-epsilon)
	delta = delta * delta * delta * delta * float64(factor)
	delta += epsilon

	if r.Bool() {
		val *= T(1.0 + delta)
	} else {
		val /= T(1.0 + delta)
	}

	if val > clipMax {
		val = clipMax
	} else if val < clipMin {
		val = clipMin
	}
	return val
}

// CodeMutation is a neighbour operator: pick one used instruction at
// random, mutate it in place (opcode and/or operands), and with
// probability 512/1024 recurse into whichever of its two operands
// reference an earlier instruction (§4.G).
type CodeMutation[T Float] struct {
	constSettings ConstSettings
	instrTable    *AliasTable[OpCode]
	featTable     *AliasTable[uint32]
}

// NewCodeMutation builds a CodeMutation from the resolved instruction and
// feature probability bundles.
func NewCodeMutation[T Float](consts ConstSettings, instrProbs []InstrProb, featWeights []float64) *CodeMutation[T] {
	return &CodeMutation[T]{
		constSettings: consts,
		instrTable:    NewInstrAliasTable(instrProbs),
		featTable:     NewFeatureAliasTable(featWeights),
	}
}

// Mutate mutates code in place. code.UsedInstructions() must already be
// populated (via Analyze) and non-empty.
func (cm *CodeMutation[T]) Mutate(r *RandomEngine, code *Code[T]) {
	used := code.UsedInstructions()
	instrPos := used[r.UintN(uint32(len(used)))]

	cm.muteAtPos(r, code, instrPos)

	instr := code.Instr(instrPos)
	if !instr.Src[0].IsConst && instr.Src[0].Index >= code.CodeStart() && r.TestProb(512) {
		cm.muteAtPos(r, code, instr.Src[0].Index-code.CodeStart())
	}
	if !instr.Src[1].IsConst && instr.Src[1].Index >= code.CodeStart() && r.TestProb(512) {
		cm.muteAtPos(r, code, instr.Src[1].Index-code.CodeStart())
	}
}

func (cm *CodeMutation[T]) muteAtPos(r *RandomEngine, code *Code[T], instrPos uint32) {
	instr := code.Instr(instrPos)

	if r.TestProb(128) {
		instr.Src[0], instr.Src[1] = instr.Src[1], instr.Src[0]
	}

	if r.TestProb(256) {
		cm.newSrc(r, code, instrPos, 1)
	}

	if r.TestProb(256) {
		cm.newSrc(r, code, instrPos, 0)
	} else {
		instr.Op = cm.instrTable.Draw(r)
	}
}

func (cm *CodeMutation[T]) newSrc(r *RandomEngine, code *Code[T], instrPos uint32, slot int) {
	constCount := uint32(len(code.Constants()))
	instr := code.Instr(instrPos)

	if instrPos == 0 || r.TestProb(512) {
		if constCount == 0 || r.TestProb(768) {
			instr.Src[slot] = Operand{Index: cm.featTable.Draw(r), IsConst: false}
			return
		}

		ncp := r.UintN(constCount)
		constants := code.Constants()
		if instr.Src[slot].IsConst && r.TestProb(512) {
			constants[ncp] = constants[instr.Src[slot].Index]
		}
		constants[ncp] = mutateConst4(r, constants[ncp], T(cm.constSettings.Min), T(cm.constSettings.Max), 0.1)
		instr.Src[slot] = Operand{Index: ncp, IsConst: true}
		return
	}
	instr.Src[slot] = Operand{Index: r.UintN(instrPos) + code.CodeStart(), IsConst: false}
}

// ConstMutation is a neighbour operator: pick one constant-pool slot
// referenced by the program (or do nothing if none is) and perturb it,
// either by a full-strength mutateConst4 nudge or, if a predefined set is
// configured, by an outright draw from it (§4.G).
type ConstMutation struct {
	constSettings ConstSettings
	usePredef     bool
}

// NewConstMutation builds a ConstMutation.
func NewConstMutation(consts ConstSettings) *ConstMutation {
	return &ConstMutation{constSettings: consts, usePredef: consts.usePredefined()}
}

// MutateConst mutates code in place. code.UsedConst() must already be
// populated (via Analyze); a no-op if the program references no constants.
// Go forbids a generic method on ConstMutation, so this package-level
// function carries the type parameter instead.
func MutateConst[T Float](cm *ConstMutation, r *RandomEngine, code *Code[T]) {
	usedConst := code.UsedConst()
	if len(usedConst) == 0 {
		return
	}
	pos := usedConst[r.UintN(uint32(len(usedConst)))]
	constants := code.Constants()

	if cm.usePredef && (cm.constSettings.PredefinedProb == 1.0 || r.Float64(1.0) < cm.constSettings.PredefinedProb) {
		constants[pos] = T(Element(r, cm.constSettings.PredefinedSet))
	} else {
		constants[pos] = mutateConst4(r, constants[pos], T(cm.constSettings.Min), T(cm.constSettings.Max), 1.0)
	}
}
