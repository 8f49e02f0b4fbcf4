package model

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-score/domain"
)

func stepDataset() Dataset {
	var ds Dataset
	for i := 0; i < 200; i++ {
		dti := float64(i) / 200
		y := 800.0
		if dti > 0.5 {
			y = 600
		}
		ds.X = append(ds.X, domain.FeatureVector{dti})
		ds.Y = append(ds.Y, y)
	}
	return ds
}

func TestTrain_LearnsStep(t *testing.T) {
	opts := DefaultTrainOptions()
	opts.Trees = 10

	f, err := Train(context.Background(), stepDataset(), opts)
	require.NoError(t, err)
	require.NoError(t, f.Validate())
	assert.Len(t, f.Trees, 10)

	assert.InDelta(t, 800.0, f.Predict(domain.FeatureVector{0.1}), 1e-9)
	assert.InDelta(t, 600.0, f.Predict(domain.FeatureVector{0.9}), 1e-9)

	m := Evaluate(f, stepDataset())
	assert.Greater(t, m.R2, 0.9)
}

func TestTrain_Deterministic(t *testing.T) {
	opts := DefaultTrainOptions()
	opts.Trees = 5

	a, err := Train(context.Background(), stepDataset(), opts)
	require.NoError(t, err)
	b, err := Train(context.Background(), stepDataset(), opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTrain_BaselineIsMean(t *testing.T) {
	ds := Dataset{
		X: []domain.FeatureVector{{1, 2}, {3, 4}},
		Y: []float64{700, 700},
	}
	f, err := Train(context.Background(), ds, TrainOptions{Trees: 1, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 0, 0, 0, 0, 0}, f.Baseline)
}

func TestTrain_Errors(t *testing.T) {
	_, err := Train(context.Background(), Dataset{}, DefaultTrainOptions())
	assert.Error(t, err)

	_, err = Train(context.Background(), stepDataset(), TrainOptions{Trees: 0})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Train(ctx, stepDataset(), DefaultTrainOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadDataset(t *testing.T) {
	csv := "ID,DTI,STI,CUR,TOTAL_SPENDING,GAMBLING_PERCENTAGE,IS_HIGH_DEBT,IS_LOW_SAVINGS,NEW_CREDIT_SCORE\n" +
		"a,0.8,0.2,0.4,0,0,1,0,610\n" +
		"b,0.1,0.5,0.05,12000,0.01,0,0,790.5\n"

	ds, err := ReadDataset(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, domain.FeatureVector{0.8, 0.2, 0.4, 0, 0, 1, 0}, ds.X[0])
	assert.Equal(t, 790.5, ds.Y[1])
}

func TestReadDataset_Errors(t *testing.T) {
	_, err := ReadDataset(strings.NewReader("DTI,STI\n1,2\n"))
	assert.ErrorContains(t, err, "missing column CUR")

	header := "DTI,STI,CUR,TOTAL_SPENDING,GAMBLING_PERCENTAGE,IS_HIGH_DEBT,IS_LOW_SAVINGS\n"
	_, err = ReadDataset(strings.NewReader(header))
	assert.ErrorContains(t, err, "missing column NEW_CREDIT_SCORE")

	_, err = ReadDataset(strings.NewReader(strings.TrimSuffix(header, "\n") + ",NEW_CREDIT_SCORE\nx,0,0,0,0,0,0,700\n"))
	assert.ErrorContains(t, err, "line 2 column DTI")
}

func TestDataset_Split(t *testing.T) {
	train, test := stepDataset().Split(0.2, 42)
	assert.Equal(t, 160, train.Len())
	assert.Equal(t, 40, test.Len())

	again, _ := stepDataset().Split(0.2, 42)
	assert.Equal(t, train, again)
}

func TestEvaluate(t *testing.T) {
	ds := Dataset{
		X: []domain.FeatureVector{{0.1}, {0.9}},
		Y: []float64{800, 600},
	}
	m := Evaluate(stepForest(), ds)
	// predictions are 750 and 650
	assert.Equal(t, 50.0, m.MAE)
	assert.Equal(t, 2500.0, m.MSE)
	assert.Equal(t, 50.0, m.RMSE)
	assert.Equal(t, 0.75, m.R2)

	assert.Equal(t, Metrics{}, Evaluate(stepForest(), Dataset{}))
}
