package types

// Insights is the structured object the generative-AI vendor must return.
type Insights struct {
	Summary        string   `json:"summary"`
	Bullets        []string `json:"bullets"`
	KeyInsights    []string `json:"keyInsights"`
	PositiveQuotes []string `json:"positiveQuotes"`
	NegativeQuotes []string `json:"negativeQuotes"`
	KeyQuotes      []string `json:"keyQuotes"`
}

type Theme struct {
	Text      string `json:"text"`
	Timestamp *int64 `json:"timestamp,omitempty"`
	Count     int    `json:"count"`
}

type SentimentSegment struct {
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	Sentiment string `json:"sentiment"`
	Text      string `json:"text"`
}

type SpeakerSentiment struct {
	Speaker              string `json:"speaker"`
	PredominantSentiment string `json:"predominant_sentiment"`
	Percentage           int    `json:"percentage"`
	Description          string `json:"description"`
}

type SentimentQuote struct {
	Text       string  `json:"text"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// InsightResult is the view model of one successful run. It is built once
// and replaced wholesale by the next run.
type InsightResult struct {
	SummaryParagraph  string             `json:"summary_paragraph"`
	SummaryBullets    []string           `json:"summary_bullets"`
	Takeaways         []string           `json:"takeaways"`
	Quotes            []string           `json:"quotes"`
	FullTranscript    string             `json:"full_transcript"`
	Utterances        []Utterance        `json:"utterances"`
	Themes            []Theme            `json:"themes"`
	OverallSentiment  string             `json:"overall_sentiment"`
	SentimentSegments []SentimentSegment `json:"sentiment_segments"`
	SpeakerSentiments []SpeakerSentiment `json:"speaker_sentiments"`
	PositiveQuotes    []SentimentQuote   `json:"positive_quotes"`
	NegativeQuotes    []SentimentQuote   `json:"negative_quotes"`
}
