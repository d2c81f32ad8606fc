package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedback-insights-go/internal/retry"
	"feedback-insights-go/internal/types"
)

// stubAnalyzer fails items whose text contains "fail" and sleeps per-item so
// tests can force out-of-order completion within a chunk.
type stubAnalyzer struct {
	latency map[string]time.Duration

	mu        sync.Mutex
	calls     []string
	inFlight  int32
	maxActive int32
}

func (a *stubAnalyzer) Analyze(ctx context.Context, feedback string) (types.AnalysisResult, error) {
	active := atomic.AddInt32(&a.inFlight, 1)
	defer atomic.AddInt32(&a.inFlight, -1)
	for {
		max := atomic.LoadInt32(&a.maxActive)
		if active <= max || atomic.CompareAndSwapInt32(&a.maxActive, max, active) {
			break
		}
	}

	a.mu.Lock()
	a.calls = append(a.calls, feedback)
	a.mu.Unlock()

	if d, ok := a.latency[feedback]; ok {
		time.Sleep(d)
	}
	if strings.Contains(feedback, "fail") {
		return types.AnalysisResult{}, errors.New("provider exploded")
	}
	return types.AnalysisResult{
		Sentiment:      types.SentimentPositive,
		SentimentScore: 80,
		Confidence:     70,
		UrgencyLevel:   types.UrgencyLow,
	}, nil
}

func testScheduler(a Analyzer) *Scheduler {
	s := NewScheduler(a, retry.Policy{Attempts: 2, BaseDelay: time.Millisecond})
	s.Pause = time.Millisecond
	return s
}

func TestProcess_OrderPreservedUnderSkewedLatency(t *testing.T) {
	feedbacks := make([]string, 8)
	latency := map[string]time.Duration{}
	for i := range feedbacks {
		feedbacks[i] = fmt.Sprintf("feedback text %d", i)
		// later items in a chunk finish first
		latency[feedbacks[i]] = time.Duration(50-10*(i%5)) * time.Millisecond
	}

	items := testScheduler(&stubAnalyzer{latency: latency}).Process(context.Background(), feedbacks)

	require.Len(t, items, 8)
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("feedback-%d", i), item.ID)
		assert.Equal(t, feedbacks[i], item.Feedback)
		assert.Equal(t, types.StatusCompleted, item.Status)
		require.NotNil(t, item.Result)
		assert.Empty(t, item.Error)
	}
}

func TestProcess_ChunkIsConcurrencyCeiling(t *testing.T) {
	feedbacks := make([]string, 12)
	latency := map[string]time.Duration{}
	for i := range feedbacks {
		feedbacks[i] = fmt.Sprintf("item %d", i)
		latency[feedbacks[i]] = 20 * time.Millisecond
	}

	stub := &stubAnalyzer{latency: latency}
	testScheduler(stub).Process(context.Background(), feedbacks)

	assert.LessOrEqual(t, stub.maxActive, int32(DefaultChunkSize))
}

func TestProcess_ChunkBarrier(t *testing.T) {
	// With a 5-item chunk, the first item of chunk 2 must not start before
	// every chunk-1 call (including retries) has finished.
	feedbacks := []string{"a", "b fail", "c", "d", "e", "f", "g"}

	stub := &stubAnalyzer{latency: map[string]time.Duration{"a": 30 * time.Millisecond}}
	testScheduler(stub).Process(context.Background(), feedbacks)

	firstOfChunk2 := -1
	lastOfChunk1 := -1
	for i, call := range stub.calls {
		if call == "f" || call == "g" {
			if firstOfChunk2 == -1 {
				firstOfChunk2 = i
			}
		} else {
			lastOfChunk1 = i
		}
	}
	require.NotEqual(t, -1, firstOfChunk2)
	assert.Less(t, lastOfChunk1, firstOfChunk2, "chunk 2 started before chunk 1 drained")
}

func TestProcess_SoftFailuresAreIsolated(t *testing.T) {
	feedbacks := []string{
		"great product",
		"love the service",
		"always fails here",
		"decent enough",
		"happy customer",
		"this one fails too",
		"works fine",
	}

	items := testScheduler(&stubAnalyzer{}).Process(context.Background(), feedbacks)

	require.Len(t, items, 7)
	for i, item := range items {
		if i == 2 || i == 5 {
			assert.Equal(t, types.StatusError, item.Status, "item %d", i)
			assert.Equal(t, "Analysis failed after retries", item.Error)
			assert.Nil(t, item.Result)
			continue
		}
		assert.Equal(t, types.StatusCompleted, item.Status, "item %d", i)
		require.NotNil(t, item.Result)
		assert.Empty(t, item.Error)
	}
}

func TestProcess_FailedItemsGetRetryBudget(t *testing.T) {
	stub := &stubAnalyzer{}
	testScheduler(stub).Process(context.Background(), []string{"ok", "fail"})

	failCalls := 0
	for _, call := range stub.calls {
		if call == "fail" {
			failCalls++
		}
	}
	assert.Equal(t, 2, failCalls)
}

func TestProcess_SingleItemBatch(t *testing.T) {
	items := testScheduler(&stubAnalyzer{}).Process(context.Background(), []string{"only one"})
	require.Len(t, items, 1)
	assert.Equal(t, "feedback-0", items[0].ID)
	assert.Equal(t, types.StatusCompleted, items[0].Status)
}
