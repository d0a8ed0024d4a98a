package xicor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXiPerfectFunctionalRelationIsHigh(t *testing.T) {
	n := 50
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		y[i] = float64(i) * float64(i) // y = x^2, a deterministic function of x
	}

	xi := Xi(x, y)
	require.True(t, xi > 0.8, "Xi(x, x^2) = %v, want close to 1", xi)
}

func TestXiIndependentColumnsIsLow(t *testing.T) {
	n := 200
	x := make([]float64, n)
	y := make([]float64, n)
	seed := uint64(1)
	next := func() float64 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return float64(seed>>11) / float64(1<<53)
	}
	for i := 0; i < n; i++ {
		x[i] = next()
		y[i] = next()
	}

	xi := Xi(x, y)
	assert.True(t, xi < 0.3, "Xi(independent) = %v, want close to 0", xi)
}

func TestXicorIsSymmetrisedMax(t *testing.T) {
	n := 30
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		y[i] = math.Sin(float64(i))
	}

	forward := Xi(x, y)
	backward := Xi(y, x)
	want := math.Max(forward, backward)

	assert.Equal(t, want, Xicor(x, y))
}

func TestPearsonPerfectLinearRelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}

	r := Pearson(x, y)
	assert.InDelta(t, 1.0, r, 1e-9)
}

func TestPearsonInverseLinearRelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{10, 8, 6, 4, 2}

	r := Pearson(x, y)
	assert.InDelta(t, -1.0, r, 1e-9)
}

func TestPearsonMismatchedLengthIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Pearson([]float64{1, 2}, []float64{1}))
}
