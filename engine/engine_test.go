package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/symreg-dev/symreg/sr"
)

func linearDataset(rows int) ([][]float64, []float64) {
	X := make([][]float64, rows)
	y := make([]float64, rows)
	for i := 0; i < rows; i++ {
		x := float64(i) / 10.0
		X[i] = []float64{x}
		y[i] = 2*x + 1
	}
	return X, y
}

func testParams() SolverParams {
	return SolverParams{
		RandomSeed:     7,
		NumThreads:     2,
		Precision:      sr.PrecisionF64,
		PopSize:        4,
		Transformation: sr.TransformNone,
		CodeSettings:   sr.CodeSettings{InputSize: 1, ConstSize: 4, MinCodeSize: 1, MaxCodeSize: 4},
	}
}

func testFitParams() sr.FitParams {
	return sr.FitParams{
		Tournament:      2,
		Metric:          sr.MetricMSE,
		PretestSize:     2,
		SampleSize:      8,
		NeighboursCount: 6,
		Alpha:           0.02,
		IterLimit:       1500,
		ConstSettings:   sr.ConstSettings{Min: -5, Max: 5},
		InstructionSet:  "simple",
		FeatureProbs:    "xicor",
	}
}

func TestCreateEngineRejectsBadPrecision(t *testing.T) {
	params := testParams()
	params.Precision = 0
	_, err := CreateEngine(params)
	require.Error(t, err)
}

func TestEngineFitAndGetBestModel(t *testing.T) {
	X, y := linearDataset(128)

	eng, err := CreateEngine(testParams())
	require.NoError(t, err)
	defer eng.Close()

	require.NoError(t, eng.Fit(X, y, nil, testFitParams(), nil))

	model, err := eng.GetBestModel()
	require.NoError(t, err)
	require.NotEmpty(t, model.Expression)
	require.Contains(t, model.GeneratedCode, "def model(x0):")
	require.True(t, model.Score < sr.LargeFloat)
}

func TestEnginePredictMatchesRowCount(t *testing.T) {
	X, y := linearDataset(128)

	eng, err := CreateEngine(testParams())
	require.NoError(t, err)
	defer eng.Close()
	require.NoError(t, eng.Fit(X, y, nil, testFitParams(), nil))

	predX := [][]float64{{0.1}, {0.2}, {0.3}}
	out, err := eng.Predict(predX, PredictBest)
	require.NoError(t, err)
	require.Len(t, out, 3)
}

func TestEnginePredictUnknownModelId(t *testing.T) {
	X, y := linearDataset(64)

	eng, err := CreateEngine(testParams())
	require.NoError(t, err)
	defer eng.Close()
	require.NoError(t, eng.Fit(X, y, nil, testFitParams(), nil))

	_, err = eng.Predict([][]float64{{0.1}}, 999999)
	require.ErrorIs(t, err, sr.ErrUnknownModel)
}

func TestEngineFitIsDeterministicForFixedIterLimit(t *testing.T) {
	X, y := linearDataset(96)
	fp := testFitParams()

	eng1, err := CreateEngine(testParams())
	require.NoError(t, err)
	defer eng1.Close()
	require.NoError(t, eng1.Fit(X, y, nil, fp, nil))
	m1, err := eng1.GetBestModel()
	require.NoError(t, err)

	eng2, err := CreateEngine(testParams())
	require.NoError(t, err)
	defer eng2.Close()
	require.NoError(t, eng2.Fit(X, y, nil, fp, nil))
	m2, err := eng2.GetBestModel()
	require.NoError(t, err)

	if diff := cmp.Diff(m1.Expression, m2.Expression); diff != "" {
		t.Fatalf("two engines built from the same seed and iteration limit diverged (-got1 +got2):\n%s", diff)
	}
}
