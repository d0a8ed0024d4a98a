package loss

import (
	"math"
	"testing"
)

func TestSqErr(t *testing.T) {
	yTrue := []float64{1, 2, 3}
	yPred := []float64{1, 2, 4}
	got := SqErr(yTrue, yPred)
	if got != 1 {
		t.Fatalf("SqErr = %v, want 1", got)
	}
}

func TestSqErrNonFiniteSubstitutesSentinel(t *testing.T) {
	yTrue := []float64{0}
	yPred := []float64{math.Inf(1)}
	if got := SqErr(yTrue, yPred); got != LargeFloat {
		t.Fatalf("SqErr with inf input = %v, want LargeFloat", got)
	}
}

func TestMAE(t *testing.T) {
	yTrue := []float64{1, 2, 3}
	yPred := []float64{0, 2, 5}
	got := MAE(yTrue, yPred)
	if got != 3 {
		t.Fatalf("MAE = %v, want 3", got)
	}
}

func TestPseudoKendallPerfectAgreement(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}
	yPred := []float64{10, 20, 30, 40}
	got := PseudoKendall(yTrue, yPred)
	if math.Abs(got) > 1e-9 {
		t.Fatalf("PseudoKendall perfect agreement = %v, want ~0", got)
	}
}

func TestPseudoKendallPerfectDisagreementAlsoScoresZero(t *testing.T) {
	// 1-|value|: a perfect inverse relationship scores as well as a
	// perfect direct one, since |value| saturates at 1 either way.
	yTrue := []float64{1, 2, 3, 4}
	yPred := []float64{40, 30, 20, 10}
	got := PseudoKendall(yTrue, yPred)
	if math.Abs(got) > 1e-9 {
		t.Fatalf("PseudoKendall perfect disagreement = %v, want ~0", got)
	}
}

func TestPseudoKendallNoRelationScoresHigh(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}
	yPred := []float64{5, 5, 1, 9}
	got := PseudoKendall(yTrue, yPred)
	if got < 0.4 {
		t.Fatalf("PseudoKendall with weak relation = %v, want a high (bad) score", got)
	}
}

func TestPseudoKendallTiesCountAsAgreement(t *testing.T) {
	yTrue := []float64{1, 1}
	yPred := []float64{5, 9}
	got := PseudoKendall(yTrue, yPred)
	if math.Abs(got) > 1e-9 {
		t.Fatalf("PseudoKendall with a tied true pair = %v, want 0", got)
	}
}

func TestClip(t *testing.T) {
	y := []float64{-5, 0, 5, 10}
	Clip(y, 0, 5)
	want := []float64{0, 0, 5, 5}
	for i := range y {
		if y[i] != want[i] {
			t.Fatalf("Clip()[%d] = %v, want %v", i, y[i], want[i])
		}
	}
}

func TestResultMeanAndWorstN(t *testing.T) {
	r := NewResult(4)
	r.Add(0, 10, 64)
	r.Add(1, 40, 64)
	r.Add(2, 5, 64)
	r.Add(3, 20, 64)

	if got, want := r.Mean(), 75.0/256.0; math.Abs(got-want) > 1e-12 {
		t.Fatalf("Mean() = %v, want %v", got, want)
	}

	worst := r.WorstN(2)
	if len(worst) != 2 || worst[0].BatchIndex != 1 || worst[1].BatchIndex != 3 {
		t.Fatalf("WorstN(2) = %+v, want batches 1 then 3", worst)
	}

	if got := len(r.Batches()); got != 4 {
		t.Fatalf("Batches() len = %d, want 4", got)
	}
}

func TestResultReset(t *testing.T) {
	r := NewResult(2)
	r.Add(0, 10, 64)
	r.Reset()
	if r.SamplesCount() != 0 || len(r.Batches()) != 0 {
		t.Fatalf("Reset() did not clear accumulator")
	}
}

func TestLogitApproxSymmetricAtZero(t *testing.T) {
	yTrue := []float64{1}
	yPred := []float64{0}
	got := LogitApprox(yTrue, yPred, 1.0, 1.0, nil)
	if got <= 0 {
		t.Fatalf("LogitApprox at y=0 = %v, want > 0", got)
	}
}
