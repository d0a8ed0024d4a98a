package sr

import "testing"

func TestFitOLSRecoversExactAffineRelation(t *testing.T) {
	yPred := []float64{0, 1, 2, 3, 4}
	yTrue := make([]float64, len(yPred))
	for i, p := range yPred {
		yTrue[i] = 3.0 + 2.0*p // y = 3 + 2*yPred exactly
	}

	c := FitOLS(yTrue, yPred)
	if !c.Fitted {
		t.Fatalf("FitOLS did not fit an exact affine relation")
	}
	if diff := c.B0 - 3.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("B0 = %v, want ~3.0", c.B0)
	}
	if diff := c.B1 - 2.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("B1 = %v, want ~2.0", c.B1)
	}
}

func TestFitOLSSingularWhenPredictorConstant(t *testing.T) {
	yPred := []float64{5, 5, 5, 5}
	yTrue := []float64{1, 2, 3, 4}

	c := FitOLS(yTrue, yPred)
	if c.Fitted {
		t.Fatalf("FitOLS fitted a constant predictor column, want Fitted=false")
	}
}

func TestCoeffsApplyPassesThroughWhenUnfitted(t *testing.T) {
	var c Coeffs
	if got := c.Apply(7.5); got != 7.5 {
		t.Fatalf("Apply() = %v, want passthrough 7.5", got)
	}
}

func TestCoeffsApplyRescales(t *testing.T) {
	c := Coeffs{B0: 1, B1: 2, Fitted: true}
	if got := c.Apply(3); got != 7 {
		t.Fatalf("Apply(3) = %v, want 7", got)
	}
}
