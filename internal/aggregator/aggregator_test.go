package aggregator

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedback-insights-go/internal/types"
)

func completedItem(i int, res types.AnalysisResult) types.FeedbackItem {
	r := res
	return types.FeedbackItem{
		ID:       fmt.Sprintf("feedback-%d", i),
		Feedback: fmt.Sprintf("text %d", i),
		Status:   types.StatusCompleted,
		Result:   &r,
	}
}

func failedItem(i int) types.FeedbackItem {
	return types.FeedbackItem{
		ID:       fmt.Sprintf("feedback-%d", i),
		Feedback: fmt.Sprintf("text %d", i),
		Status:   types.StatusError,
		Error:    "Analysis failed after retries",
	}
}

func TestSummarize_EmptyBatch(t *testing.T) {
	s := Summarize([]types.FeedbackItem{})
	assert.Equal(t, 0, s.TotalCount)
	assert.Equal(t, 0, s.AverageSentimentScore)
	assert.Empty(t, s.TopEmotions)
	assert.Empty(t, s.CommonThemes)
	assert.Empty(t, s.OverallRecommendations)
}

func TestSummarize_AllItemsFailed(t *testing.T) {
	items := []types.FeedbackItem{failedItem(0), failedItem(1), failedItem(2)}
	s := Summarize(items)

	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, 0, s.PositiveCount)
	assert.Equal(t, 0, s.NegativeCount)
	assert.Equal(t, 0, s.NeutralCount)
	assert.Equal(t, 0, s.AverageSentimentScore)
	assert.Equal(t, 0, s.AverageConfidence)
	assert.Equal(t, types.UrgencyBreakdown{}, s.UrgencyBreakdown)
}

func TestSummarize_FailedItemsCountOnlyTowardTotal(t *testing.T) {
	items := []types.FeedbackItem{
		completedItem(0, types.AnalysisResult{Sentiment: "positive", SentimentScore: 90, Confidence: 80, UrgencyLevel: "low"}),
		failedItem(1),
		completedItem(2, types.AnalysisResult{Sentiment: "negative", SentimentScore: 10, Confidence: 60, UrgencyLevel: "critical"}),
	}
	s := Summarize(items)

	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, 1, s.PositiveCount)
	assert.Equal(t, 1, s.NegativeCount)
	assert.Equal(t, 0, s.NeutralCount)
	// means over the 2 completed items only
	assert.Equal(t, 50, s.AverageSentimentScore)
	assert.Equal(t, 70, s.AverageConfidence)
	assert.Equal(t, 1, s.UrgencyBreakdown.Critical)
	assert.Equal(t, 1, s.UrgencyBreakdown.Low)
}

func TestSummarize_MeanRounding(t *testing.T) {
	items := []types.FeedbackItem{
		completedItem(0, types.AnalysisResult{SentimentScore: 50, Confidence: 1}),
		completedItem(1, types.AnalysisResult{SentimentScore: 51, Confidence: 0}),
	}
	s := Summarize(items)
	assert.Equal(t, 51, s.AverageSentimentScore) // 50.5 rounds up
	assert.Equal(t, 1, s.AverageConfidence)      // 0.5 rounds up
}

func TestSummarize_TopEmotionsCapAndTieBreak(t *testing.T) {
	var items []types.FeedbackItem
	// 7 emotion names; "e0" appears 3 times, "e1" twice, the rest once in
	// first-seen order e2..e6.
	for i := 0; i < 3; i++ {
		emotions := []types.Emotion{{Name: "e0", Intensity: 50}}
		if i < 2 {
			emotions = append(emotions, types.Emotion{Name: "e1", Intensity: 50})
		}
		items = append(items, completedItem(i, types.AnalysisResult{Emotions: emotions}))
	}
	items = append(items, completedItem(3, types.AnalysisResult{Emotions: []types.Emotion{
		{Name: "e2"}, {Name: "e3"}, {Name: "e4"}, {Name: "e5"}, {Name: "e6"},
	}}))

	s := Summarize(items)
	require.Len(t, s.TopEmotions, 5)
	assert.Equal(t, types.EmotionCount{Name: "e0", Count: 3}, s.TopEmotions[0])
	assert.Equal(t, types.EmotionCount{Name: "e1", Count: 2}, s.TopEmotions[1])
	// singles ranked by first-seen order
	assert.Equal(t, "e2", s.TopEmotions[2].Name)
	assert.Equal(t, "e3", s.TopEmotions[3].Name)
	assert.Equal(t, "e4", s.TopEmotions[4].Name)
}

func TestSummarize_CommonThemesNeedTwoOccurrences(t *testing.T) {
	items := []types.FeedbackItem{
		completedItem(0, types.AnalysisResult{KeyPhrases: []types.KeyPhrase{
			{Phrase: "Slow Shipping"}, {Phrase: "great support"},
		}}),
		completedItem(1, types.AnalysisResult{KeyPhrases: []types.KeyPhrase{
			{Phrase: "slow shipping"}, {Phrase: "billing issue"},
		}}),
	}
	s := Summarize(items)

	require.Len(t, s.CommonThemes, 1)
	assert.Equal(t, types.ThemeCount{Theme: "slow shipping", Count: 2}, s.CommonThemes[0])
}

func TestSummarize_ThemeCountIsItemCountNotOccurrenceCount(t *testing.T) {
	// a phrase repeated inside one item is not a common theme
	single := []types.FeedbackItem{
		completedItem(0, types.AnalysisResult{KeyPhrases: []types.KeyPhrase{
			{Phrase: "slow shipping"}, {Phrase: "Slow Shipping"},
		}}),
	}
	assert.Empty(t, Summarize(single).CommonThemes)

	// repeated in two items it counts 2, once per item
	double := append(single,
		completedItem(1, types.AnalysisResult{KeyPhrases: []types.KeyPhrase{
			{Phrase: "SLOW SHIPPING"}, {Phrase: "slow shipping"},
		}}))
	s := Summarize(double)
	require.Len(t, s.CommonThemes, 1)
	assert.Equal(t, types.ThemeCount{Theme: "slow shipping", Count: 2}, s.CommonThemes[0])
}

func TestSummarize_CommonThemesCapAtTen(t *testing.T) {
	var phrases []types.KeyPhrase
	for i := 0; i < 15; i++ {
		phrases = append(phrases, types.KeyPhrase{Phrase: fmt.Sprintf("theme %d", i)})
	}
	items := []types.FeedbackItem{
		completedItem(0, types.AnalysisResult{KeyPhrases: phrases}),
		completedItem(1, types.AnalysisResult{KeyPhrases: phrases}),
	}
	s := Summarize(items)

	require.Len(t, s.CommonThemes, 10)
	for i, tc := range s.CommonThemes {
		assert.Equal(t, fmt.Sprintf("theme %d", i), tc.Theme)
		assert.Equal(t, 2, tc.Count)
	}
}

func TestSummarize_RecommendationsGroupedByTitle(t *testing.T) {
	items := []types.FeedbackItem{
		completedItem(0, types.AnalysisResult{Recommendations: []types.Recommendation{
			{Title: "Fix Checkout", Description: "first body", Category: "ux"},
			{Title: "Improve docs", Description: "docs body"},
		}}),
		completedItem(1, types.AnalysisResult{Recommendations: []types.Recommendation{
			{Title: "fix checkout", Description: "second body", Category: "ops"},
		}}),
	}
	s := Summarize(items)

	require.Len(t, s.OverallRecommendations, 2)
	// grouped case-insensitively, most frequent first, first-seen body kept
	assert.Equal(t, "Fix Checkout", s.OverallRecommendations[0].Title)
	assert.Equal(t, "first body", s.OverallRecommendations[0].Description)
	assert.Equal(t, "Improve docs", s.OverallRecommendations[1].Title)
}

func TestSummarize_RecommendationsCapAtFive(t *testing.T) {
	var recs []types.Recommendation
	for i := 0; i < 9; i++ {
		recs = append(recs, types.Recommendation{Title: fmt.Sprintf("rec %d", i)})
	}
	s := Summarize([]types.FeedbackItem{completedItem(0, types.AnalysisResult{Recommendations: recs})})
	require.Len(t, s.OverallRecommendations, 5)
	assert.Equal(t, "rec 0", s.OverallRecommendations[0].Title)
}

func TestSummarize_DeterministicAndPure(t *testing.T) {
	items := []types.FeedbackItem{
		completedItem(0, types.AnalysisResult{
			Sentiment:      "positive",
			SentimentScore: 88,
			Confidence:     72,
			UrgencyLevel:   "high",
			Emotions:       []types.Emotion{{Name: "joy", Intensity: 90}, {Name: "trust", Intensity: 60}},
			KeyPhrases:     []types.KeyPhrase{{Phrase: "fast delivery"}, {Phrase: "nice ui"}},
			Recommendations: []types.Recommendation{
				{Title: "Keep it up", Description: "body"},
			},
		}),
		failedItem(1),
		completedItem(2, types.AnalysisResult{
			Sentiment:    "neutral",
			UrgencyLevel: "medium",
			Emotions:     []types.Emotion{{Name: "trust", Intensity: 40}},
			KeyPhrases:   []types.KeyPhrase{{Phrase: "Fast Delivery"}},
		}),
	}

	before, err := json.Marshal(items)
	require.NoError(t, err)

	first, err := json.Marshal(Summarize(items))
	require.NoError(t, err)
	second, err := json.Marshal(Summarize(items))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	after, err := json.Marshal(items)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "Summarize mutated its input")
}
