package model

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"credit-score/domain"
)

// TargetColumn holds the credit score label in training CSVs.
const TargetColumn = "NEW_CREDIT_SCORE"

// Dataset is a table of feature vectors and their labels.
type Dataset struct {
	X []domain.FeatureVector
	Y []float64
}

func (d Dataset) Len() int { return len(d.Y) }

// Means returns the per-feature mean, used as the attribution baseline.
func (d Dataset) Means() []float64 {
	means := make([]float64, domain.NumFeatures)
	if d.Len() == 0 {
		return means
	}
	for _, x := range d.X {
		for i, v := range x {
			means[i] += v
		}
	}
	for i := range means {
		means[i] /= float64(d.Len())
	}
	return means
}

// ReadDataset parses a CSV with a header row naming at least the 7 feature
// columns and TargetColumn. Other columns are ignored.
func ReadDataset(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return Dataset{}, fmt.Errorf("reading header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}

	var featureCols [domain.NumFeatures]int
	for i, name := range domain.FeatureNames {
		c, ok := col[name]
		if !ok {
			return Dataset{}, fmt.Errorf("missing column %s", name)
		}
		featureCols[i] = c
	}
	targetCol, ok := col[TargetColumn]
	if !ok {
		return Dataset{}, fmt.Errorf("missing column %s", TargetColumn)
	}

	var ds Dataset
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return Dataset{}, fmt.Errorf("reading line %d: %w", line, err)
		}

		var x domain.FeatureVector
		for i, c := range featureCols {
			v, err := strconv.ParseFloat(rec[c], 64)
			if err != nil {
				return Dataset{}, fmt.Errorf("line %d column %s: %w", line, domain.FeatureNames[i], err)
			}
			x[i] = v
		}
		y, err := strconv.ParseFloat(rec[targetCol], 64)
		if err != nil {
			return Dataset{}, fmt.Errorf("line %d column %s: %w", line, TargetColumn, err)
		}
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, y)
	}
	return ds, nil
}

// Split shuffles rows with seed and holds out testFraction of them.
func (d Dataset) Split(testFraction float64, seed uint64) (train, test Dataset) {
	perm := rand.New(rand.NewPCG(seed, seed)).Perm(d.Len())
	nTest := int(float64(d.Len()) * testFraction)
	for i, p := range perm {
		if i < nTest {
			test.X = append(test.X, d.X[p])
			test.Y = append(test.Y, d.Y[p])
		} else {
			train.X = append(train.X, d.X[p])
			train.Y = append(train.Y, d.Y[p])
		}
	}
	return train, test
}
