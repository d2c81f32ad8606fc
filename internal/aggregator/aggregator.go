// Package aggregator computes the per-batch summary from the final item list.
// Summarize is pure and deterministic: it never mutates its input and all
// rank orderings break ties by first-seen order, so identical input always
// yields byte-identical output.
package aggregator

import (
	"math"
	"sort"
	"strings"

	"feedback-insights-go/internal/types"
)

// counter accumulates counts while remembering first-seen key order, the
// tie-break for every ranking in the summary.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// ranked returns keys sorted by count descending, first-seen order on ties.
func (c *counter) ranked() []string {
	keys := append([]string(nil), c.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	return keys
}

// Summarize derives the batch summary. Counts and means run over completed
// items only; TotalCount includes failed items (the original behavior: failed
// items stay in the denominator of nothing but the total).
func Summarize(items []types.FeedbackItem) types.BatchSummary {
	summary := types.BatchSummary{
		TotalCount:             len(items),
		TopEmotions:            []types.EmotionCount{},
		CommonThemes:           []types.ThemeCount{},
		OverallRecommendations: []types.Recommendation{},
	}

	var scoreSum, confidenceSum, completed int
	emotions := newCounter()
	themes := newCounter()
	recTitles := newCounter()
	recBodies := map[string]types.Recommendation{}

	for _, item := range items {
		if item.Status != types.StatusCompleted || item.Result == nil {
			continue
		}
		res := item.Result
		completed++
		scoreSum += res.SentimentScore
		confidenceSum += res.Confidence

		switch res.Sentiment {
		case types.SentimentPositive:
			summary.PositiveCount++
		case types.SentimentNegative:
			summary.NegativeCount++
		default:
			summary.NeutralCount++
		}

		switch res.UrgencyLevel {
		case types.UrgencyCritical:
			summary.UrgencyBreakdown.Critical++
		case types.UrgencyHigh:
			summary.UrgencyBreakdown.High++
		case types.UrgencyLow:
			summary.UrgencyBreakdown.Low++
		default:
			summary.UrgencyBreakdown.Medium++
		}

		for _, e := range res.Emotions {
			emotions.add(e.Name)
		}
		// A theme is "common" when it appears in >=2 items, so a phrase
		// repeated inside one item counts once.
		seenPhrases := map[string]bool{}
		for _, kp := range res.KeyPhrases {
			key := strings.ToLower(strings.TrimSpace(kp.Phrase))
			if seenPhrases[key] {
				continue
			}
			seenPhrases[key] = true
			themes.add(key)
		}
		for _, rec := range res.Recommendations {
			key := strings.ToLower(strings.TrimSpace(rec.Title))
			recTitles.add(key)
			if _, seen := recBodies[key]; !seen {
				recBodies[key] = rec
			}
		}
	}

	if completed > 0 {
		summary.AverageSentimentScore = roundMean(scoreSum, completed)
		summary.AverageConfidence = roundMean(confidenceSum, completed)
	}

	for _, name := range emotions.ranked() {
		if len(summary.TopEmotions) == 5 {
			break
		}
		summary.TopEmotions = append(summary.TopEmotions, types.EmotionCount{
			Name:  name,
			Count: emotions.counts[name],
		})
	}

	// Themes need at least two occurrences to count as common.
	for _, theme := range themes.ranked() {
		if len(summary.CommonThemes) == 10 {
			break
		}
		if themes.counts[theme] < 2 {
			continue
		}
		summary.CommonThemes = append(summary.CommonThemes, types.ThemeCount{
			Theme: theme,
			Count: themes.counts[theme],
		})
	}

	// One representative body per title group: the first seen.
	for _, key := range recTitles.ranked() {
		if len(summary.OverallRecommendations) == 5 {
			break
		}
		summary.OverallRecommendations = append(summary.OverallRecommendations, recBodies[key])
	}

	return summary
}

func roundMean(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}
