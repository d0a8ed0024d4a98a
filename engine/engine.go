// Package engine implements the Engine Facade (§4.J): it owns numThreads
// independent Solvers, fans Fit out across them with an errgroup.Group
// (one goroutine per Solver), picks defaults (Xicor-derived feature probabilities, resolved
// instruction sets) the distilled fit_params leaves as strings, and
// serialises the best program(s) found into Model values the CLI and the
// C-ABI layer both render from. The cross-solver scan for the global best
// climber is a lo.MinBy over the flattened population.
package engine

import (
	"fmt"
	"runtime"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/symreg-dev/symreg/sr"
	"github.com/symreg-dev/symreg/sr/xicor"
)

// SolverParams mirrors the C-ABI solver_params struct (§6): engine-wide
// configuration fixed for the lifetime of an Engine.
type SolverParams struct {
	RandomSeed        uint64
	NumThreads        uint32
	Precision         sr.Precision
	PopSize           uint32
	Transformation    sr.Transformation
	ClipMin, ClipMax  float64
	CodeSettings      sr.CodeSettings
	InitConstSettings sr.ConstSettings
}

func (p SolverParams) toConfig() sr.Config {
	return sr.Config{
		RandomSeed:        p.RandomSeed,
		NumThreads:        p.NumThreads,
		Precision:         p.Precision,
		PopSize:           p.PopSize,
		Transformation:    p.Transformation,
		ClipMin:           p.ClipMin,
		ClipMax:           p.ClipMax,
		CodeSettings:      p.CodeSettings,
		InitConstSettings: p.InitConstSettings,
	}
}

// Model is the serialised form of one EvaluatedCode (§4.J, §6's math_model):
// a Code's rendered expression, its numpy-source lowering, and the fitted
// constant values the expression's c<k> placeholders stand for.
type Model struct {
	ID            uint64
	Score         float64
	PartialScore  float64
	Expression    string
	GeneratedCode string
	UsedConstants []float64
	Coeffs        sr.Coeffs
}

// Engine is the precision-erased facade both the CLI and the C-ABI layer
// drive: callers work in plain []float64 regardless of whether the engine
// was created with PrecisionF32 or PrecisionF64 internally.
type Engine interface {
	// Fit trains every Solver against X (row-major, rows x cols) and y. If
	// fp.FeatureProbs requests "xicor", each column's weight is derived
	// from max(Xicor(Xi,y), 1e-4) before any Solver starts (§3 supplement).
	Fit(X [][]float64, y []float64, sampleWeight []float64, fp sr.FitParams, progress sr.ProgressFunc) error
	// Predict evaluates X against the model addressed by id (PredictBest
	// to use the global best across every Solver).
	Predict(X [][]float64, id uint64) ([]float64, error)
	// GetBestModel serialises the global best Code across every Solver.
	GetBestModel() (Model, error)
	// GetModelById serialises one specific climber's best Code.
	GetModelById(id uint64) (Model, error)
	// Close releases every Solver's worker pool.
	Close()
}

// PredictBest is the sentinel id Predict/GetModelById treat as "the global
// best across every Solver" (§4.J's `id == u64::MAX`).
const PredictBest uint64 = ^uint64(0)

// CreateEngine constructs numThreads Solvers, each seeded by drawing a u64
// from an RNG seeded with params.RandomSeed (§4.J). Precision is chosen
// here and is immutable for the Engine's lifetime.
func CreateEngine(params SolverParams) (Engine, error) {
	switch params.Precision {
	case sr.PrecisionF32:
		return newEngine[float32](params)
	case sr.PrecisionF64:
		return newEngine[float64](params)
	default:
		return nil, &sr.ConfigError{Field: "Precision", Reason: "must be PrecisionF32 or PrecisionF64"}
	}
}

type engineImpl[T sr.Float] struct {
	params  SolverParams
	cfg     sr.Config
	solvers []*sr.Solver[T]

	fitted      bool
	globalBest  *sr.Code[T]
	globalScore float64
	globalOLS   sr.Coeffs
}

func newEngine[T sr.Float](params SolverParams) (*engineImpl[T], error) {
	cfg := params.toConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	numThreads := params.NumThreads
	if numThreads == 0 {
		numThreads = uint32(runtime.GOMAXPROCS(0))
	}

	seedRand := sr.NewRandomEngine(params.RandomSeed)
	solvers := make([]*sr.Solver[T], numThreads)
	for i := range solvers {
		solvers[i] = sr.NewSolver[T](params.CodeSettings, seedRand.Uint64())
	}

	return &engineImpl[T]{params: params, cfg: cfg, solvers: solvers}, nil
}

func (e *engineImpl[T]) Close() {
	for _, s := range e.solvers {
		s.Close()
	}
}

func buildDataset[T sr.Float](X [][]float64, y []float64, sampleWeight []float64, seed uint64) (*sr.Dataset[T], error) {
	rows := len(y)
	if rows == 0 {
		return nil, &sr.ConfigError{Field: "rows", Reason: "y must be non-empty"}
	}
	if len(X) != rows {
		return nil, &sr.ConfigError{Field: "rows", Reason: "len(X) must equal len(y)"}
	}
	cols := len(X[0])
	for i, row := range X {
		if len(row) != cols {
			return nil, &sr.ConfigError{Field: "cols", Reason: fmt.Sprintf("row %d has %d columns, want %d", i, len(row), cols)}
		}
	}

	ds := sr.NewDataset[T](uint32(rows), uint32(cols))
	for i := 0; i < rows; i++ {
		for c := 0; c < cols; c++ {
			ds.SetX(c, uint32(i), T(X[i][c]))
		}
		ds.SetY(uint32(i), T(y[i]))
	}
	if sampleWeight != nil {
		if len(sampleWeight) != rows {
			return nil, &sr.ConfigError{Field: "sampleWeight", Reason: "length must equal len(y)"}
		}
		ds.EnableWeight()
		for i := 0; i < rows; i++ {
			ds.SetWeight(uint32(i), T(sampleWeight[i]))
		}
	}
	ds.Pad(sr.NewRandomEngine(seed))
	return ds, nil
}

// defaultFeatureWeights implements the "featureProbs=xicor" default (§3
// supplement, §4.J): each column's weight is max(Xicor(Xi,y), 1e-4).
func defaultFeatureWeights(X [][]float64, y []float64) []float64 {
	cols := len(X[0])
	col := make([]float64, len(X))
	weights := make([]float64, cols)
	for c := 0; c < cols; c++ {
		for i, row := range X {
			col[i] = row[c]
		}
		w := xicor.Xicor(col, y)
		if w < 1e-4 {
			w = 1e-4
		}
		weights[c] = w
	}
	return weights
}

func (e *engineImpl[T]) Fit(X [][]float64, y []float64, sampleWeight []float64, fp sr.FitParams, progress sr.ProgressFunc) error {
	ds, err := buildDataset[T](X, y, sampleWeight, e.params.RandomSeed)
	if err != nil {
		return err
	}

	instrProbs, err := sr.ResolveInstructionSet(fp.InstructionSet)
	if err != nil {
		return err
	}

	var featWeights []float64
	if sr.IsXicorRequested(fp.FeatureProbs) {
		featWeights = defaultFeatureWeights(X, y)
	} else {
		featWeights, err = sr.ResolveFeatureProbs(fp.FeatureProbs, e.params.CodeSettings.InputSize)
		if err != nil {
			return err
		}
	}

	var g errgroup.Group
	for _, solver := range e.solvers {
		solver := solver
		g.Go(func() error {
			_, _, err := solver.Fit(ds, e.cfg, fp, instrProbs, featWeights, progress)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var population []*sr.Climber[T]
	for _, solver := range e.solvers {
		for i := 0; i < solver.PopSize(); i++ {
			population = append(population, solver.Climber(i))
		}
	}
	if len(population) == 0 {
		return sr.ErrEmptyResult
	}
	best := lo.MinBy(population, func(a, b *sr.Climber[T]) bool { return a.FullSetScore() < b.FullSetScore() })
	e.globalBest = best.Best()
	e.globalScore = best.FullSetScore()
	e.globalOLS = best.Coeffs()

	e.fitted = true
	return nil
}

func (e *engineImpl[T]) resolve(id uint64) (*sr.Code[T], float64, sr.Coeffs, error) {
	if !e.fitted {
		return nil, 0, sr.Coeffs{}, sr.ErrEmptyResult
	}
	if id == PredictBest {
		return e.globalBest, e.globalScore, e.globalOLS, nil
	}
	popSize := uint64(e.params.PopSize)
	if popSize == 0 {
		return nil, 0, sr.Coeffs{}, sr.ErrUnknownModel
	}
	threadID := id / popSize
	withinID := id % popSize
	if threadID >= uint64(len(e.solvers)) {
		return nil, 0, sr.Coeffs{}, sr.ErrUnknownModel
	}
	solver := e.solvers[threadID]
	if int(withinID) >= solver.PopSize() {
		return nil, 0, sr.Coeffs{}, sr.ErrUnknownModel
	}
	cl := solver.Climber(int(withinID))
	return cl.Best(), cl.FullSetScore(), cl.Coeffs(), nil
}

func (e *engineImpl[T]) Predict(X [][]float64, id uint64) ([]float64, error) {
	code, _, coeffs, err := e.resolve(id)
	if err != nil {
		return nil, err
	}

	rows := len(X)
	if rows == 0 {
		return nil, &sr.ConfigError{Field: "rows", Reason: "X must be non-empty"}
	}
	cols := len(X[0])
	ds := sr.NewDataset[T](uint32(rows), uint32(cols))
	for i, row := range X {
		for c, v := range row {
			ds.SetX(c, uint32(i), T(v))
		}
	}
	ds.Pad(sr.NewRandomEngine(e.params.RandomSeed))

	clipMin, clipMax := T(e.params.ClipMin), T(e.params.ClipMax)
	clips := e.params.ClipMin < e.params.ClipMax
	out := make([]T, ds.BatchCount()*sr.Batch)
	machine := sr.NewMachine[T](e.params.CodeSettings)
	machine.Predict(code, ds, e.params.Transformation, clipMin, clipMax, clips, out)

	result := make([]float64, rows)
	for i := 0; i < rows; i++ {
		result[i] = coeffs.Apply(float64(out[i]))
	}
	return result, nil
}

func (e *engineImpl[T]) modelFor(id uint64) (Model, error) {
	code, score, coeffs, err := e.resolve(id)
	if err != nil {
		return Model{}, err
	}
	expr, consts := code.Infix()
	constsF := make([]float64, len(consts))
	for i, c := range consts {
		constsF[i] = float64(c)
	}
	return Model{
		ID:            id,
		Score:         score,
		PartialScore:  score,
		Expression:    expr,
		GeneratedCode: code.ToNumpySource("model"),
		UsedConstants: constsF,
		Coeffs:        coeffs,
	}, nil
}

func (e *engineImpl[T]) GetBestModel() (Model, error) {
	return e.modelFor(PredictBest)
}

func (e *engineImpl[T]) GetModelById(id uint64) (Model, error) {
	return e.modelFor(id)
}
