package types

// JobStatus is the vendor-reported state of a transcription job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// Terminal reports whether no further polling is needed.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Sentiment labels as reported (upper-cased) by the transcription vendor.
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
	SentimentMixed    = "MIXED"
)

// Features selects the optional analyses requested with a transcription job.
type Features struct {
	SpeakerLabels     bool `json:"speaker_labels"`
	EntityDetection   bool `json:"entity_detection"`
	AutoHighlights    bool `json:"auto_highlights"`
	SentimentAnalysis bool `json:"sentiment_analysis"`
}

// DefaultFeatures is the richer variant: every analysis on.
func DefaultFeatures() Features {
	return Features{
		SpeakerLabels:     true,
		EntityDetection:   true,
		AutoHighlights:    true,
		SentimentAnalysis: true,
	}
}

type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}

// Transcript is the job payload returned by GET /transcript/{id}.
type Transcript struct {
	ID                       string            `json:"id"`
	Status                   JobStatus         `json:"status"`
	Error                    string            `json:"error,omitempty"`
	Text                     string            `json:"text"`
	AudioDuration            float64           `json:"audio_duration,omitempty"`
	Utterances               []Utterance       `json:"utterances"`
	Entities                 []Entity          `json:"entities"`
	AutoHighlightsResult     *AutoHighlights   `json:"auto_highlights_result,omitempty"`
	SentimentAnalysisResults []SentimentResult `json:"sentiment_analysis_results"`
	Chapters                 []Chapter         `json:"chapters,omitempty"`
}

// Utterance is a speaker-attributed fragment; times are milliseconds.
type Utterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
	Sentiment  string  `json:"sentiment,omitempty"`
}

type Entity struct {
	EntityType string `json:"entity_type"`
	Text       string `json:"text"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
}

type AutoHighlights struct {
	Status  string      `json:"status"`
	Results []Highlight `json:"results"`
}

type Highlight struct {
	Count      int         `json:"count"`
	Rank       float64     `json:"rank"`
	Text       string      `json:"text"`
	Timestamps []Timestamp `json:"timestamps"`
}

type Timestamp struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type SentimentResult struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

type Chapter struct {
	Gist     string `json:"gist"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
}
