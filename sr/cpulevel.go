package sr

// Level names a detected CPU vector width, used only for diagnostics/
// logging: the batched evaluator (machine.go) is plain Go over Batch-sized
// slices and never branches on it. Set by init() in the build-tagged
// cpulevel_*.go files.
type Level int

const (
	// LevelScalar means no wide vector unit was detected, or detection is
	// unavailable on this architecture.
	LevelScalar Level = iota
	// LevelSSE2 means a 128-bit x86 vector unit (amd64 baseline).
	LevelSSE2
	// LevelAVX2 means a 256-bit x86 vector unit.
	LevelAVX2
	// LevelAVX512 means a 512-bit x86 vector unit.
	LevelAVX512
	// LevelNEON means a 128-bit ARM vector unit (arm64 baseline).
	LevelNEON
)

func (l Level) String() string {
	switch l {
	case LevelSSE2:
		return "sse2"
	case LevelAVX2:
		return "avx2"
	case LevelAVX512:
		return "avx512"
	case LevelNEON:
		return "neon"
	default:
		return "scalar"
	}
}

// currentLevel and currentWidth are set once at process start by the
// build-tagged init() in cpulevel_amd64.go, cpulevel_arm64.go or
// cpulevel_other.go.
var (
	currentLevel Level
	currentWidth int
)

// CurrentLevel reports the detected vector width, for inclusion in log
// lines and the CLI's diagnostic output (§9).
func CurrentLevel() Level { return currentLevel }

// CurrentWidth reports the detected vector width in bytes (16 for
// SSE2/NEON, 32 for AVX2, 64 for AVX-512, 0 when undetected).
func CurrentWidth() int { return currentWidth }
