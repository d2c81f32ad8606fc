package types

// ItemStatus tracks one feedback item through the batch pipeline.
// pending -> processing -> completed | error; completed and error are terminal.
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusProcessing ItemStatus = "processing"
	StatusCompleted  ItemStatus = "completed"
	StatusError      ItemStatus = "error"
)

// Sentiment labels emitted by the provider.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Urgency levels emitted by the provider.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"
)

type Emotion struct {
	Name      string `json:"name"`
	Intensity int    `json:"intensity"` // 0-100
}

type KeyPhrase struct {
	Phrase    string `json:"phrase"`
	Sentiment string `json:"sentiment"`
}

type Insight struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Impact      string `json:"impact"`
	Timeframe   string `json:"timeframe"`
}

// AnalysisResult is the normalized per-item analysis. Every field is always
// populated: missing or malformed provider output degrades to the field default
// (sentiment neutral, urgency medium, score 50, confidence 0, empty lists/strings).
type AnalysisResult struct {
	Sentiment        string           `json:"sentiment"`
	SentimentScore   int              `json:"sentimentScore"` // 0-100
	Confidence       int              `json:"confidence"`     // 0-100
	UrgencyLevel     string           `json:"urgencyLevel"`
	CustomerIntent   string           `json:"customerIntent"`
	Emotions         []Emotion        `json:"emotions"`
	KeyPhrases       []KeyPhrase      `json:"keyPhrases"`
	Insights         []Insight        `json:"insights"`
	Recommendations  []Recommendation `json:"recommendations"`
	Summary          string           `json:"summary"`
	DetailedAnalysis string           `json:"detailedAnalysis"`
}

// FeedbackItem is the mutable per-item slot owned by the batch scheduler for the
// lifetime of one request. Exactly one of Result/Error is set in a terminal state.
type FeedbackItem struct {
	ID       string          `json:"id"`
	Feedback string          `json:"feedback"`
	Status   ItemStatus      `json:"status"`
	Result   *AnalysisResult `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type EmotionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

type UrgencyBreakdown struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// BatchSummary aggregates the completed items of one batch. Counts and means are
// computed over completed items only; TotalCount includes failures.
type BatchSummary struct {
	TotalCount             int              `json:"totalCount"`
	PositiveCount          int              `json:"positiveCount"`
	NegativeCount          int              `json:"negativeCount"`
	NeutralCount           int              `json:"neutralCount"`
	AverageSentimentScore  int              `json:"averageSentimentScore"`
	AverageConfidence      int              `json:"averageConfidence"`
	TopEmotions            []EmotionCount   `json:"topEmotions"`
	UrgencyBreakdown       UrgencyBreakdown `json:"urgencyBreakdown"`
	CommonThemes           []ThemeCount     `json:"commonThemes"`
	OverallRecommendations []Recommendation `json:"overallRecommendations"`
}

// Request/response bodies for the HTTP API.

type AnalyzeRequest struct {
	Feedback string `json:"feedback"`
}

type BatchAnalyzeRequest struct {
	Feedbacks []string `json:"feedbacks"`
}

type BatchAnalyzeResponse struct {
	Items   []FeedbackItem `json:"items"`
	Summary BatchSummary   `json:"summary"`
}

type ExtractResponse struct {
	Feedbacks []string `json:"feedbacks"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
