package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"supersoniq-insights/internal/types"
)

const (
	temperature     = 0.2
	maxOutputTokens = 4096
)

// Provider produces the raw generated text for a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// Options selects endpoints and models per vendor.
type Options struct {
	HTTPClient    *http.Client
	GeminiBaseURL string
	GeminiModel   string
	OpenAIBaseURL string
	OpenAIModel   string
	ClaudeBaseURL string
	ClaudeModel   string
}

// Extractor sends a transcript to the selected insights vendor and returns
// the parsed structured insights.
type Extractor struct {
	providers map[string]Provider
	log       *logrus.Entry
}

func New(opts Options, log *logrus.Entry) *Extractor {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 90 * time.Second}
	}
	return NewWithProviders(log,
		&gemini{http: hc, baseURL: opts.GeminiBaseURL, model: orDefault(opts.GeminiModel, "gemini-2.0-flash")},
		&openAI{http: hc, baseURL: orDefault(opts.OpenAIBaseURL, "https://api.openai.com/v1"), model: orDefault(opts.OpenAIModel, "gpt-4o-mini")},
		&claude{http: hc, baseURL: orDefault(opts.ClaudeBaseURL, "https://api.anthropic.com/v1"), model: orDefault(opts.ClaudeModel, "claude-3-5-sonnet-20241022")},
	)
}

// NewWithProviders builds an Extractor over an explicit provider set.
func NewWithProviders(log *logrus.Entry, providers ...Provider) *Extractor {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Extractor{providers: m, log: log.WithField("component", "extractor")}
}

// Extract runs the fixed analysis prompt over transcript. There is no retry:
// a vendor failure, unparsable reply or incomplete reply ends the run.
func (e *Extractor) Extract(ctx context.Context, provider, apiKey, transcript string) (*types.Insights, error) {
	p, ok := e.providers[provider]
	if !ok {
		return nil, &types.ValidationError{Field: "provider", Reason: fmt.Sprintf("unsupported insights provider %q", provider)}
	}
	log := e.log.WithField("provider", provider)

	start := time.Now()
	text, err := p.Generate(ctx, apiKey, BuildPrompt(transcript))
	if err != nil {
		log.WithError(err).Warn("insights request failed")
		return nil, err
	}
	insights, err := ParseInsights(provider, text)
	if err != nil {
		log.WithError(err).WithField("response_len", len(text)).Warn("insights response rejected")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"duration_ms":     time.Since(start).Milliseconds(),
		"bullets":         len(insights.Bullets),
		"key_insights":    len(insights.KeyInsights),
		"positive_quotes": len(insights.PositiveQuotes),
		"negative_quotes": len(insights.NegativeQuotes),
	}).Info("parsed insights")
	return insights, nil
}

var (
	reJSONFence = regexp.MustCompile("```json\\n?")
	reFence     = regexp.MustCompile("```\\n?")
)

// StripFences removes markdown code-fence markers an LLM may wrap JSON in.
func StripFences(s string) string {
	s = reJSONFence.ReplaceAllString(s, "")
	s = reFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseInsights decodes the generated text. Malformed JSON is a ParseError;
// an empty summary, bullet list or insight list is an IncompleteResultError.
func ParseInsights(provider, text string) (*types.Insights, error) {
	cleaned := StripFences(text)
	var out types.Insights
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, &types.ParseError{Provider: provider, Raw: text, Err: err}
	}

	var missing []string
	if strings.TrimSpace(out.Summary) == "" {
		missing = append(missing, "summary")
	}
	if len(out.Bullets) == 0 {
		missing = append(missing, "bullets")
	}
	if len(out.KeyInsights) == 0 {
		missing = append(missing, "keyInsights")
	}
	if len(missing) > 0 {
		return nil, &types.IncompleteResultError{Provider: provider, Missing: missing}
	}
	return &out, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
