package loss

import "math"

// Float is the element-type constraint every kernel here is parameterized
// over. Mirrors sr.Float; duplicated rather than imported to keep this
// package free of a dependency on the engine's instruction/code types.
type Float interface {
	~float32 | ~float64
}

// LargeFloat is the sentinel a kernel substitutes for its raw score when
// that score is non-finite, so one poisoned batch can never win a
// tournament or an accept/reject comparison by NaN/Inf propagating through
// later arithmetic.
const LargeFloat = 1.0e30

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return LargeFloat
	}
	return v
}

// SqErr returns the raw (unnormalized) sum of squared errors over the
// batch, the kernel behind the MSE metric.
func SqErr[T Float](yTrue, yPred []T) float64 {
	var err T
	for n := range yTrue {
		d := yPred[n] - yTrue[n]
		err += d * d
	}
	return finite(float64(err))
}

// MAE returns the raw sum of absolute errors over the batch.
func MAE[T Float](yTrue, yPred []T) float64 {
	var err T
	for n := range yTrue {
		d := yPred[n] - yTrue[n]
		if d < 0 {
			d = -d
		}
		err += d
	}
	return finite(float64(err))
}

// MSLE returns the raw sum of squared log-ratio errors:
// sum((log(1+yTrue) - log(1+yPred))^2).
func MSLE[T Float](yTrue, yPred []T) float64 {
	var err float64
	for n := range yTrue {
		x := math.Log(1+float64(yTrue[n])) - math.Log(1+float64(yPred[n]))
		err += x * x
	}
	return finite(err)
}

// LogLoss returns the raw, class-weighted binary cross-entropy over the
// batch: sum(-(cw1*w*yTrue*log(pred) + cw0*w*(1-yTrue)*log(1-pred))). weight
// may be nil, treated as all-ones.
func LogLoss[T Float](yTrue, yPred []T, cw0, cw1 float64, weight []T) float64 {
	var err float64
	for n := range yTrue {
		w := 1.0
		if weight != nil {
			w = float64(weight[n])
		}
		t := float64(yTrue[n])
		p := float64(yPred[n])
		err += -w * (cw1*t*math.Log(p) + cw0*(1-t)*math.Log(1-p))
	}
	return finite(err)
}

// PseudoKendall computes the pairwise rank-agreement score over the batch:
// the normalized sum of sign((tᵢ-tⱼ)*(pᵢ-pⱼ)) over all i<j pairs, with tied
// true values contributing 1.0, returned as 1-|value| so that, like every
// other kernel, lower is better.
func PseudoKendall[T Float](yTrue, yPred []T) float64 {
	n := len(yTrue)
	var err T
	for j := 1; j < n; j++ {
		for i := 0; i < j; i++ {
			t := (yTrue[i] - yTrue[j]) * (yPred[i] - yPred[j])
			switch {
			case t > 0:
				err++
			case t < 0:
				err--
			case yTrue[i]-yTrue[j] == 0:
				err++
			}
		}
	}
	value := float64(err) * 2.0 / float64(n*(n-1))
	value = finite(value)
	if value == LargeFloat {
		return LargeFloat
	}
	if value < 0 {
		value = -value
	}
	return 1.0 - value
}

// softplusApprox is a polynomial/rational stand-in for log(1+exp(x)) that
// avoids a transcendental call in the hot evaluation loop. It is the smooth
// relu approximation 0.5x + 0.5*sqrt(x^2+4). Over the clamped domain
// LogitApprox uses it lies above log(1+exp(x)) everywhere, by about 0.31 at
// x=0 (1 against log 2) and about 0.19 at x=±5.
func softplusApprox(x float64) float64 {
	return 0.5*x + 0.5*math.Sqrt(x*x+4)
}

// LogitApprox returns the raw, class-weighted loss for a raw (un-squashed)
// logit prediction, bypassing any sigmoid/transform step: for each sample,
// cw1*w*yTrue*softplus(-y) + cw0*w*(1-yTrue)*softplus(y), where y is
// clamped to [-5,5] before the approximation is applied. weight may be nil,
// treated as all-ones.
func LogitApprox[T Float](yTrue, rawLogit []T, cw0, cw1 float64, weight []T) float64 {
	var err float64
	for n := range yTrue {
		w := 1.0
		if weight != nil {
			w = float64(weight[n])
		}
		y := float64(rawLogit[n])
		if y > 5 {
			y = 5
		} else if y < -5 {
			y = -5
		}
		t := float64(yTrue[n])
		err += w * (cw1*t*softplusApprox(-y) + cw0*(1-t)*softplusApprox(y))
	}
	return finite(err)
}

// Clip clamps every element of y into [minVal,maxVal] in place.
func Clip[T Float](y []T, minVal, maxVal T) {
	for i := range y {
		if y[i] < minVal {
			y[i] = minVal
		}
		if y[i] > maxVal {
			y[i] = maxVal
		}
	}
}

// BatchScore records one batch's score, the unit the Result accumulator's
// worst-batch bookkeeping is built from.
type BatchScore struct {
	BatchIndex uint32
	Score      float64
}

// Result accumulates raw per-batch scores into a mean and remembers, across
// a caller-chosen evaluation selection, the worst-scoring batches seen —
// the candidate set the next round's pretest tier filters against (§4.E).
type Result struct {
	samplesCount uint64
	scoreSum     float64
	batches      []BatchScore
}

// NewResult returns a zeroed Result with scratch capacity for up to
// capacity batch entries, so Add never grows the batches slice in the hot
// loop.
func NewResult(capacity int) *Result {
	return &Result{batches: make([]BatchScore, 0, capacity)}
}

// Reset clears the accumulator for reuse.
func (r *Result) Reset() {
	r.samplesCount = 0
	r.scoreSum = 0
	r.batches = r.batches[:0]
}

// Add folds one batch's raw score into the accumulator: n is the number of
// lanes (ordinarily Batch) the score was computed over.
func (r *Result) Add(batchIndex uint32, score float64, n uint32) {
	r.samplesCount += uint64(n)
	r.scoreSum += score
	r.batches = append(r.batches, BatchScore{BatchIndex: batchIndex, Score: score})
}

// Mean returns scoreSum / samplesCount, the accumulator's overall score.
func (r *Result) Mean() float64 {
	if r.samplesCount == 0 {
		return 0
	}
	return r.scoreSum / float64(r.samplesCount)
}

// SamplesCount returns the total lane count folded into the accumulator.
func (r *Result) SamplesCount() uint64 { return r.samplesCount }

// Batches returns every (batchIndex, score) entry folded in, in Add order.
func (r *Result) Batches() []BatchScore { return r.batches }

// WorstN returns the n worst-scoring (highest-score) batches, descending,
// without mutating the accumulator's own Add-order record.
func (r *Result) WorstN(n int) []BatchScore {
	sorted := make([]BatchScore, len(r.batches))
	copy(sorted, r.batches)

	// Insertion sort: n and len(batches) are both small (pretestSize,
	// sampleSize), so this beats sort.Slice's overhead.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Score > sorted[j-1].Score; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
