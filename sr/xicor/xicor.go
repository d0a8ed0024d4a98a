package xicor

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Float is the element-type constraint Xi and Pearson accept. Declared
// locally rather than imported from the sr package so this package stays
// usable without depending on it (the Engine Facade is the only caller
// that needs both).
type Float interface {
	~float32 | ~float64
}

// Xi computes the Chatterjee rank correlation coefficient xi(x, y): how
// well y is determined by x as a (not necessarily monotonic or linear)
// function. It is asymmetric — xi(x, y) generally differs from xi(y, x) —
// which is why Xicor below reports the symmetrised max of both directions.
//
// Ties in x are broken by original row order (stable sort), since neither
// dataset column is expected to carry duplicate values in practice and a
// deterministic tie-break keeps the statistic reproducible run to run,
// unlike the original's randomized tie-break.
func Xi[T Float](x, y []T) float64 {
	n := len(x)
	if n < 2 || len(y) != n {
		return 0
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[order[a]] < x[order[b]]
	})

	ySorted := make([]float64, n)
	for i, idx := range order {
		ySorted[i] = float64(y[idx])
	}

	// r[i] = count of j with y[j] <= ySorted[i]; l[i] = count of j with
	// y[j] >= ySorted[i]. O(n^2) is acceptable: feature columns are scored
	// once per Fit call, not per search iteration.
	r := make([]float64, n)
	l := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if ySorted[j] <= ySorted[i] {
				r[i]++
			}
			if ySorted[j] >= ySorted[i] {
				l[i]++
			}
		}
	}

	var numerator float64
	for i := 0; i < n-1; i++ {
		d := r[i+1] - r[i]
		if d < 0 {
			d = -d
		}
		numerator += d
	}

	var denom float64
	for i := 0; i < n; i++ {
		denom += l[i] * (float64(n) - l[i])
	}
	if denom == 0 {
		return 0
	}

	return 1 - (float64(n)*numerator)/(2*denom)
}

// Xicor returns the symmetrised Chatterjee coefficient max(Xi(x,y),
// Xi(y,x)), the feature-weight signal the Engine Facade falls back to when
// FitParams.FeatureProbs requests "xicor" (§4.J): it seeds each input
// column's draw probability in the Code initializer/mutator.
func Xicor[T Float](x, y []T) float64 {
	a := Xi(x, y)
	b := Xi(y, x)
	if b > a {
		return b
	}
	return a
}

// Pearson returns the linear correlation coefficient r(x, y), backing the
// Pearson32/64 C-ABI entry points.
func Pearson[T Float](x, y []T) float64 {
	n := len(x)
	if n == 0 || len(y) != n {
		return 0
	}
	xf := make([]float64, n)
	yf := make([]float64, n)
	for i := 0; i < n; i++ {
		xf[i] = float64(x[i])
		yf[i] = float64(y[i])
	}
	return stat.Correlation(xf, yf, nil)
}
