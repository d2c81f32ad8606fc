package analyzer

import (
	"math"
	"strings"

	"feedback-insights-go/internal/types"
)

var (
	sentimentValues = map[string]bool{
		types.SentimentPositive: true,
		types.SentimentNegative: true,
		types.SentimentNeutral:  true,
	}
	urgencyValues = map[string]bool{
		types.UrgencyCritical: true,
		types.UrgencyHigh:     true,
		types.UrgencyMedium:   true,
		types.UrgencyLow:      true,
	}
)

// normalize fills an AnalysisResult from raw decoded JSON, field by field. Each
// field degrades to its default independently; an invalid value in one field
// never affects another and normalization as a whole cannot fail.
func normalize(fields map[string]any) types.AnalysisResult {
	return types.AnalysisResult{
		Sentiment:        enumField(fields, "sentiment", sentimentValues, types.SentimentNeutral),
		SentimentScore:   intField(fields, "sentimentScore", 50),
		Confidence:       intField(fields, "confidence", 0),
		UrgencyLevel:     enumField(fields, "urgencyLevel", urgencyValues, types.UrgencyMedium),
		CustomerIntent:   stringField(fields, "customerIntent"),
		Emotions:         emotionList(fields, "emotions"),
		KeyPhrases:       keyPhraseList(fields, "keyPhrases"),
		Insights:         insightList(fields, "insights"),
		Recommendations:  recommendationList(fields, "recommendations"),
		Summary:          stringField(fields, "summary"),
		DetailedAnalysis: stringField(fields, "detailedAnalysis"),
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func enumField(m map[string]any, key string, allowed map[string]bool, def string) string {
	s, ok := m[key].(string)
	if !ok {
		return def
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if !allowed[s] {
		return def
	}
	return s
}

// intField clamps to [0,100]; a missing or non-numeric value yields def.
func intField(m map[string]any, key string, def int) int {
	v, ok := m[key]
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return def
	}
	return clamp(int(math.Round(f)))
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func objectList(m map[string]any, key string) []map[string]any {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, el := range raw {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func emotionList(m map[string]any, key string) []types.Emotion {
	out := []types.Emotion{}
	for _, obj := range objectList(m, key) {
		name := stringField(obj, "name")
		if name == "" {
			continue
		}
		out = append(out, types.Emotion{
			Name:      name,
			Intensity: intField(obj, "intensity", 0),
		})
	}
	return out
}

func keyPhraseList(m map[string]any, key string) []types.KeyPhrase {
	out := []types.KeyPhrase{}
	for _, obj := range objectList(m, key) {
		phrase := stringField(obj, "phrase")
		if phrase == "" {
			continue
		}
		out = append(out, types.KeyPhrase{
			Phrase:    phrase,
			Sentiment: enumField(obj, "sentiment", sentimentValues, types.SentimentNeutral),
		})
	}
	return out
}

func insightList(m map[string]any, key string) []types.Insight {
	out := []types.Insight{}
	for _, obj := range objectList(m, key) {
		text := stringField(obj, "text")
		if text == "" {
			continue
		}
		out = append(out, types.Insight{
			Text:     text,
			Priority: stringField(obj, "priority"),
		})
	}
	return out
}

func recommendationList(m map[string]any, key string) []types.Recommendation {
	out := []types.Recommendation{}
	for _, obj := range objectList(m, key) {
		title := stringField(obj, "title")
		if title == "" {
			continue
		}
		out = append(out, types.Recommendation{
			Title:       title,
			Description: stringField(obj, "description"),
			Category:    stringField(obj, "category"),
			Impact:      stringField(obj, "impact"),
			Timeframe:   stringField(obj, "timeframe"),
		})
	}
	return out
}
