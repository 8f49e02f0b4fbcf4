package service

import (
	"context"
	"sync"
	"sync/atomic"

	"credit-score/domain"
)

// linearModel predicts intercept + w·x.
type linearModel struct {
	intercept float64
	w         domain.FeatureVector
}

func (m linearModel) Predict(x domain.FeatureVector) float64 {
	y := m.intercept
	for i := range x {
		y += m.w[i] * x[i]
	}
	return y
}

type funcModel func(x domain.FeatureVector) float64

func (f funcModel) Predict(x domain.FeatureVector) float64 { return f(x) }

// stubGenerator returns scripted results in order, repeating the last one.
type stubGenerator struct {
	mu      sync.Mutex
	results []stubResult
	calls   int
	prompts []string
}

type stubResult struct {
	text string
	err  error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	r := g.results[min(g.calls, len(g.results)-1)]
	g.calls++
	return r.text, r.err
}

func (g *stubGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// blockingGenerator waits for the context to end.
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// gatedGenerator blocks every call until release is closed.
type gatedGenerator struct {
	text    string
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func newGatedGenerator(text string) *gatedGenerator {
	return &gatedGenerator{
		text:    text,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedGenerator) Generate(ctx context.Context, _ string) (string, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return g.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
