package sr

import (
	"sync"
	"time"

	"github.com/symreg-dev/symreg/sr/loss"
	"github.com/symreg-dev/symreg/sr/workerpool"
)

// ProgressFunc is invoked every 10,000 main-loop iterations with the
// iteration count and the current global-best tier-2 score, letting a
// caller report long-running Fit progress (§4.H, §9 "Logging").
type ProgressFunc func(iteration uint64, bestScore float64)

// Solver drives one population of hill-climbers against one Dataset (§4.H,
// §5). A Solver owns its own RandomEngine and Machine and shares no
// mutable state with any other Solver — the Engine Facade runs one per
// worker thread.
type Solver[T Float] struct {
	rand         *RandomEngine
	machine      *Machine[T]
	population   []*Climber[T]
	codeSettings CodeSettings
	pool         *workerpool.Pool
}

// NewSolver allocates a Solver's RandomEngine and Machine for the given
// settings and seed. Call Fit to run a search. Close releases the Solver's
// persistent worker pool once the Solver is no longer needed.
func NewSolver[T Float](cs CodeSettings, seed uint64) *Solver[T] {
	return &Solver[T]{
		rand:         NewRandomEngine(seed),
		machine:      NewMachine[T](cs),
		codeSettings: cs,
		pool:         workerpool.New(0),
	}
}

// Close shuts down the Solver's worker pool. Safe to call multiple times.
func (s *Solver[T]) Close() {
	s.pool.Close()
}

// PopSize returns the number of climbers in the population, valid after
// Fit has been called at least once.
func (s *Solver[T]) PopSize() int { return len(s.population) }

// Climber returns the i'th climber in the population.
func (s *Solver[T]) Climber(i int) *Climber[T] { return s.population[i] }

// Fit runs the tiered stochastic local search to completion (iteration
// limit or wall-clock time limit) and returns the best Code found and its
// final tier-2 score. instrProbs and featWeights must already be resolved
// (the Engine Facade is responsible for turning FitParams.InstructionSet/
// FeatureProbs strings — including a "xicor" request — into concrete
// values before calling Fit).
func (s *Solver[T]) Fit(ds *Dataset[T], cfg Config, fp FitParams, instrProbs []InstrProb, featWeights []float64, progress ProgressFunc) (*Code[T], float64, error) {
	if err := cfg.validate(); err != nil {
		return nil, 0, err
	}
	if err := fp.validate(cfg.CodeSettings); err != nil {
		return nil, 0, err
	}
	if ds.Size() < 4 {
		return nil, 0, &ConfigError{Field: "rows", Reason: "must be >= 4"}
	}
	if uint32(ds.CountX()) != cfg.CodeSettings.InputSize {
		return nil, 0, &ConfigError{Field: "cols", Reason: "does not match configured InputSize"}
	}

	cs := cfg.CodeSettings
	clipMin, clipMax := T(cfg.ClipMin), T(cfg.ClipMax)
	clips := cfg.clips()

	fullSet := make([]uint32, ds.BatchCount())
	for i := range fullSet {
		fullSet[i] = uint32(i)
	}

	ci := NewCodeInitializer[T](cs, fp.ConstSettings, instrProbs, featWeights)
	cm := NewCodeMutation[T](fp.ConstSettings, instrProbs, featWeights)
	constMut := NewConstMutation(fp.ConstSettings)

	s.population = make([]*Climber[T], cfg.PopSize)
	for i := range s.population {
		cl := newClimber[T](cs)
		cl.initialize(s.rand, s.machine, ds, ci, fp, cfg.Transformation, clipMin, clipMax, clips, fullSet, cs)
		s.population[i] = cl
	}

	globalBest := NewCode[T](cs)
	globalBestScore := loss.LargeFloat
	var globalBestMu sync.Mutex
	refreshGlobalBest := func() {
		s.pool.ParallelForAtomic(len(s.population), func(i int) {
			cl := s.population[i]
			m := NewMachine[T](s.codeSettings)
			result := loss.NewResult(len(fullSet))
			m.ComputeScore(cl.best, ds, fullSet, fp, cfg.Transformation, clipMin, clipMax, clips, result)
			score := result.Mean()
			cl.fullSetScore = score
			cl.coeffs = fitFullSetOLS(m, cl.best, ds, fullSet)

			globalBestMu.Lock()
			if score < globalBestScore {
				globalBestScore = score
				globalBest.CopyFrom(cl.best)
			}
			globalBestMu.Unlock()
		})
	}
	refreshGlobalBest()

	alpha := fp.Alpha
	start := time.Now()
	var iter uint64
	for {
		if fp.IterLimit > 0 && iter >= fp.IterLimit {
			break
		}
		if iter%100 == 0 && fp.TimeLimitMs > 0 && time.Since(start) >= time.Duration(fp.TimeLimitMs)*time.Millisecond {
			break
		}
		if iter > 0 && iter%10000 == 0 {
			refreshGlobalBest()
			if progress != nil {
				progress(iter, globalBestScore)
			}
		}

		champion := s.tournamentSelect(fp.Tournament)
		s.generateAndAccept(champion, ds, cfg, fp, cm, constMut, alpha)

		iter++
	}

	refreshGlobalBest()
	if progress != nil {
		progress(iter, globalBestScore)
	}
	return globalBest, globalBestScore, nil
}

// fitFullSetOLS re-executes code over every batch in batches (raw output,
// no transform or clip — the same convention LinearRegression.h's callers
// use: the affine refit targets the untransformed program output) and
// fits y ~= B0 + B1*yPred across the full dataset via FitOLS.
func fitFullSetOLS[T Float](m *Machine[T], code *Code[T], ds *Dataset[T], batches []uint32) Coeffs {
	yTrue := make([]T, 0, len(batches)*Batch)
	yPred := make([]T, 0, len(batches)*Batch)
	for _, batchIdx := range batches {
		yTrue = append(yTrue, ds.BatchY(batchIdx)...)
		yPred = append(yPred, m.Execute(code, ds, batchIdx, true)...)
	}
	return FitOLS(yTrue, yPred)
}

// tournamentSelect picks tournament random climbers and returns the one
// with the lowest tier-1 best score.
func (s *Solver[T]) tournamentSelect(tournament uint32) *Climber[T] {
	champion := s.population[s.rand.UintN(uint32(len(s.population)))]
	for t := uint32(1); t < tournament; t++ {
		cl := s.population[s.rand.UintN(uint32(len(s.population)))]
		if cl.bestScore.sample < champion.bestScore.sample {
			champion = cl
		}
	}
	return champion
}

// generateAndAccept generates fp.NeighboursCount candidate neighbours of
// champion.current (one code mutation + one constant mutation each),
// rejecting constant expressions and pretest-tier fast-rejects, and
// applies the accept/promote rule described in §4.H step 6.
func (s *Solver[T]) generateAndAccept(champion *Climber[T], ds *Dataset[T], cfg Config, fp FitParams, cm *CodeMutation[T], constMut *ConstMutation, alpha float64) {
	clipMin, clipMax := T(cfg.ClipMin), T(cfg.ClipMax)
	clips := cfg.clips()

	bestNeighbourScore := loss.LargeFloat
	haveAccept := false
	var bestNeighbourWorst []loss.BatchScore

	for n := uint32(0); n < fp.NeighboursCount; n++ {
		champion.neighbour.CopyFrom(champion.current)
		cm.Mutate(s.rand, champion.neighbour)
		MutateConst(constMut, s.rand, champion.neighbour)

		if champion.neighbour.Analyze(champion.worklist) {
			continue // constant expression, reject
		}

		champion.pretestResult.Reset()
		s.machine.ComputeScore(champion.neighbour, ds, champion.pretest, fp, cfg.Transformation, clipMin, clipMax, clips, champion.pretestResult)
		if champion.pretestResult.Mean() > (1+alpha)*champion.currentScore.pretest {
			continue // tier 0 fast reject
		}

		champion.neighbourResult.Reset()
		s.machine.ComputeScore(champion.neighbour, ds, champion.sample, fp, cfg.Transformation, clipMin, clipMax, clips, champion.neighbourResult)
		sampleScore := champion.neighbourResult.Mean()
		if sampleScore < bestNeighbourScore {
			bestNeighbourScore = sampleScore
			champion.candidate.CopyFrom(champion.neighbour)
			bestNeighbourWorst = append(bestNeighbourWorst[:0], champion.neighbourResult.WorstN(int(fp.PretestSize))...)
			haveAccept = true
		}
	}

	if !haveAccept || bestNeighbourScore >= (1+alpha)*champion.bestScore.sample {
		return
	}

	champion.current.CopyFrom(champion.candidate)
	champion.currentScore.sample = bestNeighbourScore

	if bestNeighbourScore < champion.bestScore.sample {
		champion.best.CopyFrom(champion.current)
		champion.bestScore.sample = bestNeighbourScore
		champion.bestScore.pretest = meanOfBatches(bestNeighbourWorst)
		champion.currentScore.pretest = champion.bestScore.pretest
		champion.pretest = batchIndices(bestNeighbourWorst)
	}
}
