package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/retry"
	"feedback-insights-go/internal/types"
)

// Analyzer is the per-item analysis capability the scheduler fans out over.
type Analyzer interface {
	Analyze(ctx context.Context, feedback string) (types.AnalysisResult, error)
}

const (
	// DefaultChunkSize items are dispatched concurrently per chunk.
	DefaultChunkSize = 5
	// DefaultPause separates consecutive chunks, bounding the outbound
	// request rate to the provider.
	DefaultPause = 300 * time.Millisecond

	failureMessage = "Analysis failed after retries"
)

// Scheduler processes a batch chunk by chunk: all items of a chunk run
// concurrently, the chunk joins fully before the next one starts, and a pacing
// delay sits between chunks. Item order in the returned list always matches
// input order; per-item failures are recorded in place and never abort the run.
type Scheduler struct {
	analyzer  Analyzer
	policy    retry.Policy
	ChunkSize int
	Pause     time.Duration
	log       *logrus.Entry
}

func NewScheduler(a Analyzer, policy retry.Policy) *Scheduler {
	return &Scheduler{
		analyzer:  a,
		policy:    policy,
		ChunkSize: DefaultChunkSize,
		Pause:     DefaultPause,
		log:       logger.New().WithComponent("batch-scheduler"),
	}
}

// Process runs the full batch to completion. Each item ends in a terminal
// state: completed with a result, or error with a fixed message.
func (s *Scheduler) Process(ctx context.Context, feedbacks []string) []types.FeedbackItem {
	items := make([]types.FeedbackItem, len(feedbacks))
	for i, fb := range feedbacks {
		items[i] = types.FeedbackItem{
			ID:       fmt.Sprintf("feedback-%d", i),
			Feedback: fb,
			Status:   types.StatusPending,
		}
	}

	start := time.Now()
	for lo := 0; lo < len(items); lo += s.ChunkSize {
		hi := lo + s.ChunkSize
		if hi > len(items) {
			hi = len(items)
		}

		g := new(errgroup.Group)
		for i := lo; i < hi; i++ {
			items[i].Status = types.StatusProcessing
			// Each goroutine owns exactly one item slot; indices are
			// disjoint so no locking is needed.
			slot := &items[i]
			g.Go(func() error {
				res := s.policy.Soft(ctx, func(ctx context.Context) (types.AnalysisResult, error) {
					return s.analyzer.Analyze(ctx, slot.Feedback)
				})
				if res != nil {
					slot.Status = types.StatusCompleted
					slot.Result = res
				} else {
					slot.Status = types.StatusError
					slot.Error = failureMessage
				}
				return nil
			})
		}
		g.Wait()

		s.log.WithFields(logrus.Fields{
			"chunk_start": lo,
			"chunk_end":   hi,
			"total":       len(items),
		}).Debug("chunk finished")

		if hi < len(items) {
			time.Sleep(s.Pause)
		}
	}

	s.log.WithFields(logrus.Fields{
		"total":       len(items),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("batch finished")

	return items
}
