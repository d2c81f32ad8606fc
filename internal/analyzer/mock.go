package analyzer

import "context"

// StaticProvider returns a canned payload on every call. Wired in with
// USE_MOCK_LLM=true for offline demos; also the stub used by handler tests.
type StaticProvider struct {
	Content string
	Err     error
}

func (s *StaticProvider) Complete(_ context.Context, _, _ string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Content, nil
}

// MockContent is a deterministic analysis payload for offline demo mode.
const MockContent = `{
  "sentiment": "negative",
  "sentimentScore": 22,
  "confidence": 84,
  "urgencyLevel": "high",
  "customerIntent": "complaint about unexpected checkout fees",
  "emotions": [
    {"name": "frustration", "intensity": 78},
    {"name": "confusion", "intensity": 55}
  ],
  "keyPhrases": [
    {"phrase": "hidden fees", "sentiment": "negative"},
    {"phrase": "checkout", "sentiment": "neutral"}
  ],
  "insights": [
    {"text": "Fees surfaced too late in the purchase flow", "priority": "high"}
  ],
  "recommendations": [
    {
      "title": "Show full fee breakdown before checkout",
      "description": "Display taxes and service fees on the product page",
      "category": "pricing",
      "impact": "high",
      "timeframe": "short-term"
    }
  ],
  "summary": "Customer frustrated by fees revealed only at checkout.",
  "detailedAnalysis": "The customer expected the listed price to be final and encountered additional fees at checkout, producing frustration and distrust in the pricing display."
}`
