package sr

// Coeffs holds the affine-refit pair (B0, B1) a Code's raw output is
// rescaled by: FitOLS(y, yPred) solves the closed-form 2x2 normal equations
// for y ~= B0 + B1*yPred, the same way the original C++ source's
// LinearRegression.h fits Code output against the target column after
// every tier-2/tier-3 evaluation. Predict and GetBestModel/GetModelById
// apply (B0, B1) to a Code's raw output rather than using it unscaled.
type Coeffs struct {
	B0, B1 float64
	Fitted bool
}

// FitOLS fits y ~= B0 + B1*yPred by closed-form bivariate least squares,
// a direct port of LinearRegression.h's normal_matrix_2/moment_matrix_2/
// coefficients_2 sequence specialized to a single real-valued predictor
// column (no intercept-only column of all-1s; X[1] is always yPred here,
// so the "X[0] nil" branch of normal_matrix_2/moment_matrix_2 never
// applies). Returns Coeffs{Fitted: false} when the normal matrix is
// singular (yPred constant across every row), in which case the caller
// should leave the raw Code output unscaled.
func FitOLS[T Float](yTrue, yPred []T) Coeffs {
	n := len(yTrue)
	if n == 0 || len(yPred) != n {
		return Coeffs{}
	}

	var n00, n01, n11 float64
	var m0, m1 float64
	for i := 0; i < n; i++ {
		x := float64(yPred[i])
		y := float64(yTrue[i])
		n00 += 1
		n01 += x
		n11 += x * x
		m0 += y
		m1 += x * y
	}

	det := n00*n11 - n01*n01
	if det == 0 {
		return Coeffs{}
	}
	invDet := 1.0 / det

	inv00 := n11 * invDet
	inv01 := -n01 * invDet
	inv10 := -n01 * invDet
	inv11 := n00 * invDet

	b0 := inv00*m0 + inv01*m1
	b1 := inv10*m0 + inv11*m1

	return Coeffs{B0: b0, B1: b1, Fitted: true}
}

// Apply rescales a raw prediction by the fitted coefficients, or returns it
// unchanged if no fit succeeded.
func (c Coeffs) Apply(raw float64) float64 {
	if !c.Fitted {
		return raw
	}
	return c.B0 + c.B1*raw
}
