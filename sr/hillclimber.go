package sr

import (
	"github.com/samber/lo"

	"github.com/symreg-dev/symreg/sr/loss"
)

// tieredScore holds a Code's score at both evaluation tiers a climber
// tracks between main-loop iterations: pretest (tier 0, the fast-reject
// worst-batch set) and sample (tier 1, the climber's working batch
// selection) (§4.H).
type tieredScore struct {
	pretest float64
	sample  float64
}

// Climber is one hill-climber in the population: a current program being
// mutated, the best program it has found so far, and the batch selections
// (sample, pretest) its tiered evaluation runs against (§4.H). Current and
// best are state-machine positions: Fresh climbers have current==best;
// Searching climbers may have current != best pending an accept/reject
// decision.
type Climber[T Float] struct {
	current      *Code[T]
	currentScore tieredScore
	best         *Code[T]
	bestScore    tieredScore

	sample  []uint32
	pretest []uint32

	// neighbour and candidate are scratch Code buffers reused across every
	// main-loop iteration so candidate generation never allocates.
	neighbour       *Code[T]
	candidate       *Code[T]
	worklist        []uint32
	neighbourResult *loss.Result
	pretestResult   *loss.Result

	// fullSetScore is best's most recent tier-2 (full-dataset) score,
	// refreshed periodically by Solver.Fit. It is what the Engine Facade
	// reports as a climber's math_model score (§4.J, §6).
	fullSetScore float64

	// coeffs is the OLS affine refit of best's raw output against y on the
	// full dataset (§3 supplement "optional coefficients"), refreshed
	// alongside fullSetScore.
	coeffs Coeffs
}

// Best returns this climber's best Code found so far.
func (c *Climber[T]) Best() *Code[T] { return c.best }

// FullSetScore returns best's most recent tier-2 score.
func (c *Climber[T]) FullSetScore() float64 { return c.fullSetScore }

// Coeffs returns best's most recent OLS affine refit.
func (c *Climber[T]) Coeffs() Coeffs { return c.coeffs }

// newClimber allocates a Climber's Code buffers for the given settings.
// Populate it via initialize before use.
func newClimber[T Float](cs CodeSettings) *Climber[T] {
	return &Climber[T]{
		current:         NewCode[T](cs),
		best:            NewCode[T](cs),
		neighbour:       NewCode[T](cs),
		candidate:       NewCode[T](cs),
		worklist:        make([]uint32, 0, 2*int(cs.MaxCodeSize)),
		neighbourResult: loss.NewResult(int(cs.MaxCodeSize)),
		pretestResult:   loss.NewResult(int(cs.MaxCodeSize)),
		fullSetScore:    loss.LargeFloat,
	}
}

// sampleBatches draws n batch indices from fullSet: the whole set if n is
// not strictly smaller, else a shuffled n-subset without replacement.
func sampleBatches(r *RandomEngine, fullSet []uint32, n uint32) []uint32 {
	if n >= uint32(len(fullSet)) {
		out := make([]uint32, len(fullSet))
		copy(out, fullSet)
		return out
	}
	cp := make([]uint32, len(fullSet))
	copy(cp, fullSet)
	Shuffle(r, cp)
	out := make([]uint32, n)
	copy(out, cp[:n])
	return out
}

// meanOfBatches averages a set of loss.BatchScore raw scores over their
// combined lane count, the same normalization loss.Result.Mean applies.
func meanOfBatches(batches []loss.BatchScore) float64 {
	if len(batches) == 0 {
		return 0
	}
	sum := lo.SumBy(batches, func(b loss.BatchScore) float64 { return b.Score })
	return sum / (float64(len(batches)) * Batch)
}

// initialize draws this climber's sample/pretest batch selections, then
// generates up to 30 random candidate programs (via init), keeps the 3
// best by an initial pretest-tier score, and evaluates each of those 3 on
// sample to settle on a starting current (§4.H). Rejects constant-expression
// candidates; panics if every one of the 30 attempts is a constant
// expression, since a Solver cannot search from no valid starting point.
func (c *Climber[T]) initialize(r *RandomEngine, m *Machine[T], ds *Dataset[T], ci *CodeInitializer[T], fp FitParams, transform Transformation, clipMin, clipMax T, clips bool, fullSet []uint32, cs CodeSettings) {
	c.sample = sampleBatches(r, fullSet, fp.SampleSize)
	initialPretest := sampleBatches(r, fullSet, fp.PretestSize)

	type candidate struct {
		code  *Code[T]
		score float64
	}
	candidates := make([]candidate, 0, 30)
	for attempt := 0; attempt < 30; attempt++ {
		code := NewCode[T](cs)
		ci.Init(r, code)
		if code.Analyze(c.worklist) {
			continue // constant expression, reject
		}
		c.pretestResult.Reset()
		m.ComputeScore(code, ds, initialPretest, fp, transform, clipMin, clipMax, clips, c.pretestResult)
		candidates = append(candidates, candidate{code: code, score: c.pretestResult.Mean()})
	}
	if len(candidates) == 0 {
		panic("sr: CodeInitializer produced only constant expressions across 30 attempts")
	}

	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].score < candidates[j-1].score; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	top := candidates
	if len(top) > 3 {
		top = top[:3]
	}

	bestSampleScore := loss.LargeFloat
	for _, cand := range top {
		cand.code.Analyze(c.worklist)
		c.neighbourResult.Reset()
		m.ComputeScore(cand.code, ds, c.sample, fp, transform, clipMin, clipMax, clips, c.neighbourResult)
		score := c.neighbourResult.Mean()
		if score < bestSampleScore {
			bestSampleScore = score
			c.current.CopyFrom(cand.code)
			c.currentScore.sample = score
			c.pretest = worstBatchIndices(c.neighbourResult, fp.PretestSize)
			c.currentScore.pretest = meanOfBatches(c.neighbourResult.WorstN(int(fp.PretestSize)))
		}
	}

	c.best.CopyFrom(c.current)
	c.bestScore = c.currentScore
}

// worstBatchIndices extracts just the batch indices from a Result's n
// worst-scoring batches, in the order WorstN returns them.
func worstBatchIndices(r *loss.Result, n uint32) []uint32 {
	return batchIndices(r.WorstN(int(n)))
}

// batchIndices projects a slice of loss.BatchScore down to just its
// BatchIndex field, in order.
func batchIndices(batches []loss.BatchScore) []uint32 {
	return lo.Map(batches, func(b loss.BatchScore, _ int) uint32 { return b.BatchIndex })
}
