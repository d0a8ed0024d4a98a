package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/symreg-dev/symreg/engine"
	"github.com/symreg-dev/symreg/sr"
	"github.com/symreg-dev/symreg/sr/csvdata"
)

// searchFlags collects the solver_params/fit_params fields (§6) a fit or
// predict invocation needs, bound directly to cobra flags.
type searchFlags struct {
	seed           uint64
	threads        uint32
	precision      string
	popSize        uint32
	transformation uint32
	clipMin        float64
	clipMax        float64
	constSize      uint32
	minCodeSize    uint32
	maxCodeSize    uint32
	initConstMin   float64
	initConstMax   float64

	timeLimitMs     uint32
	verbose         uint32
	tournament      uint32
	metric          uint32
	pretestSize     uint32
	sampleSize      uint32
	neighbours      uint32
	alpha           float64
	iterLimit       uint64
	constMin        float64
	constMax        float64
	instructionSet  string
	featureProbs    string
	cw0, cw1        float64
	targetCol       int
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.Uint64Var(&f.seed, "seed", 1, "random seed")
	fl.Uint32Var(&f.threads, "threads", 0, "solver count (0 = GOMAXPROCS)")
	fl.StringVar(&f.precision, "precision", "f64", "f32 or f64")
	fl.Uint32Var(&f.popSize, "pop-size", 16, "hill-climber population size per solver")
	fl.Uint32Var(&f.transformation, "transform", 0, "0=none 1=sigmoid 2=affine 3=round")
	fl.Float64Var(&f.clipMin, "clip-min", 0, "output clip lower bound")
	fl.Float64Var(&f.clipMax, "clip-max", 0, "output clip upper bound (clipMin==clipMax disables clipping)")
	fl.Uint32Var(&f.constSize, "const-size", 8, "constant pool size")
	fl.Uint32Var(&f.minCodeSize, "min-code-size", 1, "minimum instructions at init")
	fl.Uint32Var(&f.maxCodeSize, "max-code-size", 20, "maximum instructions")
	fl.Float64Var(&f.initConstMin, "init-const-min", -10, "constant init lower bound")
	fl.Float64Var(&f.initConstMax, "init-const-max", 10, "constant init upper bound")

	fl.Uint32Var(&f.timeLimitMs, "time-limit-ms", 0, "wall-clock limit (0 = unlimited)")
	fl.Uint32Var(&f.verbose, "verbose", 0, "0=silent, >0 logs progress every 10000 iterations")
	fl.Uint32Var(&f.tournament, "tournament", 4, "tournament selection size")
	fl.Uint32Var(&f.metric, "metric", 0, "0=MSE 1=MAE 2=MSLE 3=pseudo-Kendall 4=log-loss 20=logit-approx")
	fl.Uint32Var(&f.pretestSize, "pretest-size", 4, "tier-0 fast-reject batch count")
	fl.Uint32Var(&f.sampleSize, "sample-size", 16, "tier-1 working batch count")
	fl.Uint32Var(&f.neighbours, "neighbours", 10, "candidate neighbours generated per iteration")
	fl.Float64Var(&f.alpha, "alpha", 0.01, "acceptance slack")
	fl.Uint64Var(&f.iterLimit, "iter-limit", 100000, "iteration limit (0 = unlimited; time-limit-ms must then be set)")
	fl.Float64Var(&f.constMin, "const-min", -10, "constant mutation lower bound")
	fl.Float64Var(&f.constMax, "const-max", 10, "constant mutation upper bound")
	fl.StringVar(&f.instructionSet, "instruction-set", "simple", "bundle name (simple|math|fuzzy) or \"name prob; ...\"")
	fl.StringVar(&f.featureProbs, "feature-probs", "xicor", "\"xicor\" or \"p; p; ...\"")
	fl.Float64Var(&f.cw0, "cw0", 1, "log-loss class-0 weight")
	fl.Float64Var(&f.cw1, "cw1", 1, "log-loss class-1 weight")
	fl.IntVar(&f.targetCol, "target-col", -1, "target column index (default: last column)")
}

func (f *searchFlags) solverParams(cs sr.CodeSettings) (engine.SolverParams, error) {
	var precision sr.Precision
	switch f.precision {
	case "f32":
		precision = sr.PrecisionF32
	case "f64":
		precision = sr.PrecisionF64
	default:
		return engine.SolverParams{}, fmt.Errorf("symreg: --precision must be f32 or f64, got %q", f.precision)
	}
	return engine.SolverParams{
		RandomSeed:     f.seed,
		NumThreads:     f.threads,
		Precision:      precision,
		PopSize:        f.popSize,
		Transformation: sr.Transformation(f.transformation),
		ClipMin:        f.clipMin,
		ClipMax:        f.clipMax,
		CodeSettings:   cs,
		InitConstSettings: sr.ConstSettings{
			Min: f.initConstMin,
			Max: f.initConstMax,
		},
	}, nil
}

func (f *searchFlags) fitParams() sr.FitParams {
	return sr.FitParams{
		TimeLimitMs:     f.timeLimitMs,
		Verbose:         f.verbose,
		Tournament:      f.tournament,
		Metric:          sr.Metric(f.metric),
		PretestSize:     f.pretestSize,
		SampleSize:      f.sampleSize,
		NeighboursCount: f.neighbours,
		Alpha:           f.alpha,
		IterLimit:       f.iterLimit,
		ConstSettings: sr.ConstSettings{
			Min: f.constMin,
			Max: f.constMax,
		},
		InstructionSet: f.instructionSet,
		FeatureProbs:   f.featureProbs,
		CW0:            f.cw0,
		CW1:            f.cw1,
	}
}

// progressLogger reports Fit progress through log/slog when verbose>0,
// matching the original source's Utils/Log.h compile-time-gated logger.
// It also logs the detected CPU vector width once up front, since that's
// the kind of run diagnostic a verbose invocation wants alongside the
// score trace.
func progressLogger(verbose uint32) sr.ProgressFunc {
	if verbose == 0 {
		return nil
	}
	slog.Info("detected CPU level", "level", sr.CurrentLevel(), "widthBytes", sr.CurrentWidth())
	return func(iteration uint64, bestScore float64) {
		slog.Info("fit progress", "iteration", iteration, "bestScore", bestScore)
	}
}

// loadXY ingests path via csvdata.Load and splits it into X/y, targetCol
// defaulting to the last column when negative.
func loadXY(path string, targetCol int) (X [][]float64, y []float64, err error) {
	f, err := csvdata.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if f.RowsCount() == 0 {
		return nil, nil, fmt.Errorf("symreg: %s: no usable data rows", path)
	}
	cols := f.ColumnsCount()
	if cols < 2 {
		return nil, nil, fmt.Errorf("symreg: %s: need at least 2 columns (features + target)", path)
	}
	target := targetCol
	if target < 0 {
		target = cols - 1
	}
	if target >= cols {
		return nil, nil, fmt.Errorf("symreg: --target-col %d out of range (file has %d columns)", target, cols)
	}

	X = make([][]float64, len(f.Rows))
	y = make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		xs := make([]float64, 0, cols-1)
		for c, v := range row {
			if c == target {
				y[i] = v
				continue
			}
			xs = append(xs, v)
		}
		X[i] = xs
	}
	return X, y, nil
}

// loadX ingests path as a features-only matrix (no target column).
func loadX(path string) ([][]float64, error) {
	f, err := csvdata.Load(path)
	if err != nil {
		return nil, err
	}
	if f.RowsCount() == 0 {
		return nil, fmt.Errorf("symreg: %s: no usable data rows", path)
	}
	return f.Rows, nil
}
