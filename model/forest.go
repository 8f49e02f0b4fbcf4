// Package model holds the regression forest used to score applicants:
// the serialized artifact, its loaders and the offline trainer.
package model

import (
	"errors"
	"fmt"

	"credit-score/domain"
)

// ArtifactVersion is the artifact schema written by Save.
const ArtifactVersion = 1

// leaf marks a terminal node.
const leaf = -1

// ErrInvalidModel is returned when an artifact fails validation.
var ErrInvalidModel = errors.New("invalid model")

// Regressor maps an ordered feature vector to a numeric prediction.
type Regressor interface {
	Predict(x domain.FeatureVector) float64
}

// Node is one split or leaf of a regression tree. Children are stored after
// their parent, so Left and Right are always greater than the node's index.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value"`
}

// Tree is a flattened regression tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t Tree) predict(x domain.FeatureVector) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature == leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Forest is an averaged ensemble of regression trees plus the reference
// point used for feature attribution. It is immutable once loaded.
type Forest struct {
	Version  int       `json:"version"`
	Features []string  `json:"features"`
	Baseline []float64 `json:"baseline"`
	Trees    []Tree    `json:"trees"`
}

// Predict returns the mean prediction over all trees.
func (f *Forest) Predict(x domain.FeatureVector) float64 {
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees))
}

// BaselineVector returns the attribution reference point.
func (f *Forest) BaselineVector() domain.FeatureVector {
	var b domain.FeatureVector
	copy(b[:], f.Baseline)
	return b
}

// Validate checks the artifact is usable for the fixed feature order.
func (f *Forest) Validate() error {
	if f.Version != ArtifactVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidModel, f.Version)
	}
	if len(f.Features) != domain.NumFeatures {
		return fmt.Errorf("%w: expected %d features, got %d", ErrInvalidModel, domain.NumFeatures, len(f.Features))
	}
	for i, name := range f.Features {
		if name != domain.FeatureNames[i] {
			return fmt.Errorf("%w: feature %d is %q, expected %q", ErrInvalidModel, i, name, domain.FeatureNames[i])
		}
	}
	if len(f.Baseline) != domain.NumFeatures {
		return fmt.Errorf("%w: expected %d baseline values, got %d", ErrInvalidModel, domain.NumFeatures, len(f.Baseline))
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("%w: no trees", ErrInvalidModel)
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d is empty", ErrInvalidModel, ti)
		}
		for ni, n := range t.Nodes {
			if n.Feature == leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= domain.NumFeatures {
				return fmt.Errorf("%w: tree %d node %d splits on feature %d", ErrInvalidModel, ti, ni, n.Feature)
			}
			if n.Left <= ni || n.Right <= ni || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("%w: tree %d node %d has bad children (%d, %d)", ErrInvalidModel, ti, ni, n.Left, n.Right)
			}
		}
	}
	return nil
}
