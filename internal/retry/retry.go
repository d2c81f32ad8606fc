package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/types"
)

// AnalyzeFunc is one attempt at producing an analysis result.
type AnalyzeFunc func(ctx context.Context) (types.AnalysisResult, error)

// Policy bounds the retry loop around an AnalyzeFunc. Delay before attempt n+1
// is n*BaseDelay (linear, not exponential). AttemptTimeout caps each attempt's
// context; zero leaves the caller's deadline untouched.
type Policy struct {
	Attempts       int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
}

// BatchPolicy guards each item inside a batch: small budget, soft failures.
func BatchPolicy() Policy {
	return Policy{Attempts: 2, BaseDelay: 500 * time.Millisecond, AttemptTimeout: 15 * time.Second}
}

// SinglePolicy guards the single-item endpoint: larger budget, longer per-call
// timeout, surfaced errors.
func SinglePolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: time.Second, AttemptTimeout: 30 * time.Second}
}

// attempt runs fn once under the policy's per-attempt deadline.
func (p Policy) attempt(ctx context.Context, fn AnalyzeFunc) (types.AnalysisResult, error) {
	if p.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		defer cancel()
	}
	return fn(ctx)
}

// linearBackOff implements backoff.BackOff with delay = attempt * base.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.base
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var bo backoff.BackOff = &linearBackOff{base: p.BaseDelay}
	bo = backoff.WithMaxRetries(bo, uint64(attempts-1))
	return backoff.WithContext(bo, ctx)
}

// Soft drives fn with the policy's budget and swallows every failure: callers
// get the result on success or nil after the final attempt. Used per item in
// batch mode, where one item's failure must never surface as an error.
func (p Policy) Soft(ctx context.Context, fn AnalyzeFunc) *types.AnalysisResult {
	log := logger.New().WithComponent("retry")

	var result types.AnalysisResult
	op := func() error {
		res, err := p.attempt(ctx, fn)
		if err != nil {
			log.WithError(err).Debug("analysis attempt failed")
			return err
		}
		result = res
		return nil
	}

	if err := backoff.Retry(op, p.backOff(ctx)); err != nil {
		log.WithError(err).Warn("analysis failed after retries")
		return nil
	}
	return &result
}

// Do drives fn with the policy's budget and surfaces the final attempt's error.
// Non-retryable upstream errors (bad credentials, rate limiting) short-circuit
// the loop. Used by the single-item endpoint.
func (p Policy) Do(ctx context.Context, fn AnalyzeFunc) (types.AnalysisResult, error) {
	var result types.AnalysisResult
	var lastErr error

	op := func() error {
		res, err := p.attempt(ctx, fn)
		if err != nil {
			lastErr = err
			if !types.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = res
		lastErr = nil
		return nil
	}

	if err := backoff.Retry(op, p.backOff(ctx)); err != nil {
		return types.AnalysisResult{}, lastErr
	}
	return result, nil
}
