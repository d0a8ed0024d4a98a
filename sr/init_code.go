package sr

// CodeInitializer draws a fresh random Code: a random size within
// [MinCodeSize,MaxCodeSize], random opcodes from an instruction alias
// table, and random operands — a terminal (a feature column drawn from a
// feature alias table, or a constant-pool slot) or a reference to an
// earlier instruction in the same program (§4.G).
type CodeInitializer[T Float] struct {
	codeSettings  CodeSettings
	constSettings ConstSettings
	instrTable    *AliasTable[OpCode]
	featTable     *AliasTable[uint32]
}

// NewCodeInitializer builds a CodeInitializer from the resolved
// instruction/feature probability bundles.
func NewCodeInitializer[T Float](cs CodeSettings, consts ConstSettings, instrProbs []InstrProb, featWeights []float64) *CodeInitializer[T] {
	return &CodeInitializer[T]{
		codeSettings:  cs,
		constSettings: consts,
		instrTable:    NewInstrAliasTable(instrProbs),
		featTable:     NewFeatureAliasTable(featWeights),
	}
}

// newSrc draws a fresh operand for instruction position j, slot I: a
// terminal (feature column or constant-pool slot) always when j == 0 and
// with probability 512/1024 otherwise, else a reference to one of the j
// earlier instructions already written.
func (ci *CodeInitializer[T]) newSrc(r *RandomEngine, code *Code[T], instr *Instruction, j uint32, slot int) {
	constCount := uint32(len(code.Constants()))

	if j == 0 || r.TestProb(512) {
		if constCount == 0 || r.TestProb(768) {
			instr.Src[slot] = Operand{Index: ci.featTable.Draw(r), IsConst: false}
		} else {
			instr.Src[slot] = Operand{Index: r.UintN(constCount), IsConst: true}
		}
		return
	}
	instr.Src[slot] = Operand{Index: r.UintN(j) + code.CodeStart(), IsConst: false}
}

// Init overwrites code in place with a freshly drawn random program.
func (ci *CodeInitializer[T]) Init(r *RandomEngine, code *Code[T]) {
	size := ci.codeSettings.MaxCodeSize
	if ci.codeSettings.MinCodeSize < ci.codeSettings.MaxCodeSize {
		size = ci.codeSettings.MinCodeSize + r.UintN(ci.codeSettings.MaxCodeSize-ci.codeSettings.MinCodeSize+1)
	}
	code.SetSize(size)

	for i := uint32(0); i < code.Size(); i++ {
		instr := code.Instr(i)
		ci.newSrc(r, code, instr, i, 0)
		ci.newSrc(r, code, instr, i, 1)
		instr.Op = ci.instrTable.Draw(r)
	}

	predef := ci.constSettings.usePredefined()
	constants := code.Constants()
	for i := range constants {
		if predef && (ci.constSettings.PredefinedProb == 1.0 || r.Float64(1.0) < ci.constSettings.PredefinedProb) {
			constants[i] = T(Element(r, ci.constSettings.PredefinedSet))
		} else {
			constants[i] = T(r.Float64Range(ci.constSettings.Min, ci.constSettings.Max))
		}
	}
}
