package model

import (
	"context"
	"errors"
	"math/rand/v2"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"credit-score/domain"
)

// TrainOptions controls forest fitting.
type TrainOptions struct {
	Trees          int
	MaxDepth       int
	MinSamplesLeaf int
	Seed           uint64
}

// DefaultTrainOptions mirrors a 100-tree forest with seed 42.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Trees:          100,
		MaxDepth:       16,
		MinSamplesLeaf: 1,
		Seed:           42,
	}
}

// Train fits a bagged CART regression forest. Each tree draws its bootstrap
// sample from its own seeded source, so results do not depend on scheduling.
func Train(ctx context.Context, ds Dataset, opts TrainOptions) (*Forest, error) {
	if ds.Len() == 0 {
		return nil, errors.New("empty training set")
	}
	if opts.Trees <= 0 {
		return nil, errors.New("tree count must be positive")
	}
	if opts.MinSamplesLeaf <= 0 {
		opts.MinSamplesLeaf = 1
	}

	trees := make([]Tree, opts.Trees)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(i)))
			sample := make([]int, ds.Len())
			for j := range sample {
				sample[j] = rng.IntN(ds.Len())
			}
			b := &treeBuilder{ds: ds, opts: opts}
			b.build(sample, 0)
			trees[i] = Tree{Nodes: b.nodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make([]string, domain.NumFeatures)
	copy(names, domain.FeatureNames[:])
	return &Forest{
		Version:  ArtifactVersion,
		Features: names,
		Baseline: ds.Means(),
		Trees:    trees,
	}, nil
}

type treeBuilder struct {
	ds    Dataset
	opts  TrainOptions
	nodes []Node
}

// build appends the subtree for rows and returns its root index.
func (b *treeBuilder) build(rows []int, depth int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: leaf, Value: b.mean(rows)})

	if len(rows) < 2*b.opts.MinSamplesLeaf || (b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth) {
		return idx
	}

	s, ok := b.bestSplit(rows)
	if !ok {
		return idx
	}

	var left, right []int
	for _, r := range rows {
		if b.ds.X[r][s.feature] <= s.threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		return idx
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[idx] = Node{Feature: s.feature, Threshold: s.threshold, Left: l, Right: r, Value: b.nodes[idx].Value}
	return idx
}

func (b *treeBuilder) mean(rows []int) float64 {
	sum := 0.0
	for _, r := range rows {
		sum += b.ds.Y[r]
	}
	return sum / float64(len(rows))
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// bestSplit finds the threshold with the largest reduction in squared error.
func (b *treeBuilder) bestSplit(rows []int) (split, bool) {
	n := len(rows)
	total, totalSq := 0.0, 0.0
	for _, r := range rows {
		total += b.ds.Y[r]
		totalSq += b.ds.Y[r] * b.ds.Y[r]
	}
	parentSSE := totalSq - total*total/float64(n)

	best := split{gain: 0}
	found := false
	sorted := make([]int, n)

	for f := 0; f < domain.NumFeatures; f++ {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.ds.X[sorted[i]][f] < b.ds.X[sorted[j]][f]
		})

		leftSum, leftSq := 0.0, 0.0
		for i := 0; i < n-1; i++ {
			y := b.ds.Y[sorted[i]]
			leftSum += y
			leftSq += y * y

			cur, next := b.ds.X[sorted[i]][f], b.ds.X[sorted[i+1]][f]
			if cur == next {
				continue
			}
			nl, nr := float64(i+1), float64(n-i-1)
			if int(nl) < b.opts.MinSamplesLeaf || int(nr) < b.opts.MinSamplesLeaf {
				continue
			}
			rightSum, rightSq := total-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if gain := parentSSE - sse; gain > best.gain+1e-12 {
				threshold := (cur + next) / 2
				if threshold >= next {
					threshold = cur
				}
				best = split{feature: f, threshold: threshold, gain: gain}
				found = true
			}
		}
	}
	return best, found
}
