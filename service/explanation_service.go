package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"credit-score/domain"
	"credit-score/repository"
)

const narrationKeyPrefix = "narration:"

// Narrator writes the human readable explanation for a decision. It never
// fails: problems are reported inside the returned text.
type Narrator interface {
	Explain(ctx context.Context, status domain.LoanStatus, reasons []string) string
}

// ExplanationOptions bounds the generator call.
type ExplanationOptions struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	CacheTTL   time.Duration
}

// ExplanationService narrates rejections through a Generator. Successful
// narrations are cached per reason list and identical in-flight requests
// share one generator call.
type ExplanationService struct {
	generator Generator
	cache     repository.CacheRepository
	opts      ExplanationOptions
	group     singleflight.Group
}

func NewExplanationService(generator Generator, cache repository.CacheRepository, opts ExplanationOptions) *ExplanationService {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultNarratorLimit
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 200 * time.Millisecond
	}
	return &ExplanationService{
		generator: generator,
		cache:     cache,
		opts:      opts,
	}
}

func (s *ExplanationService) Explain(ctx context.Context, status domain.LoanStatus, reasons []string) string {
	if status == domain.StatusApproved {
		return ApprovedMessage
	}

	key := narrationKey(reasons)
	if s.cache != nil {
		if text, ok := s.cache.Get(ctx, key); ok {
			return text
		}
	}

	// The shared call must not die with whichever caller started it.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.generate(shared, reasons)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = ctx.Err()
	}
	if res.Err != nil {
		slog.Warn("narration unavailable", "error", res.Err)
		return NarrationErrorLabel + res.Err.Error()
	}

	text := res.Val.(string)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text, s.opts.CacheTTL); err != nil {
			slog.Warn("failed to cache narration", "error", err)
		}
	}
	return text
}

func (s *ExplanationService) generate(ctx context.Context, reasons []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	prompt := RejectionPrompt(reasons)
	backoff := retry.WithMaxRetries(uint64(s.opts.MaxRetries), retry.NewConstant(s.opts.RetryDelay))

	var text string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		out, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			if errors.Is(err, ErrTimeoutOrQuota) && ctx.Err() == nil {
				return retry.RetryableError(err)
			}
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeoutOrQuota) {
			err = fmt.Errorf("%w: no answer within %s", ErrTimeoutOrQuota, s.opts.Timeout)
		}
		return "", err
	}
	return text, nil
}

// RejectionPrompt embeds the top reasons into the user message.
func RejectionPrompt(reasons []string) string {
	return fmt.Sprintf("Explain why a customer was rejected for a loan based on: %s. Keep it simple and professional.",
		strings.Join(reasons, "; "))
}

func narrationKey(reasons []string) string {
	h := xxhash.New()
	for _, r := range reasons {
		_, _ = h.WriteString(r)
		_, _ = h.Write([]byte{0})
	}
	return narrationKeyPrefix + strconv.FormatUint(h.Sum64(), 16)
}
