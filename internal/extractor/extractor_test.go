package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"supersoniq-insights/internal/logger"
	"supersoniq-insights/internal/types"
)

const completeJSON = `{
  "summary": "Two people discussed the onboarding flow.",
  "bullets": ["Onboarding is slow", "Pricing is clear"],
  "keyInsights": ["Users want a faster onboarding flow, suggesting the setup wizard should be shortened."],
  "positiveQuotes": ["I love how clear the pricing page is"],
  "negativeQuotes": [],
  "keyQuotes": ["Setup took me an hour"]
}`

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"padded", "  \n```json{\"a\":1}```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseInsights(t *testing.T) {
	ins, err := ParseInsights("gemini", "```json\n"+completeJSON+"\n```")
	if err != nil {
		t.Fatalf("ParseInsights: %v", err)
	}
	if ins.Summary == "" || len(ins.Bullets) != 2 || len(ins.KeyInsights) != 1 {
		t.Errorf("insights = %+v", ins)
	}
	if len(ins.NegativeQuotes) != 0 || len(ins.KeyQuotes) != 1 {
		t.Errorf("quotes = %+v", ins)
	}
}

func TestParseInsightsMalformed(t *testing.T) {
	_, err := ParseInsights("gemini", "Sure! Here is the analysis you asked for.")
	var pe *types.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ParseError", err)
	}
	if types.SourceOf(err) != types.SourceInsights {
		t.Errorf("source = %q", types.SourceOf(err))
	}
}

func TestParseInsightsIncomplete(t *testing.T) {
	_, err := ParseInsights("openai", `{"summary":"","bullets":[],"keyInsights":["x"]}`)
	var ie *types.IncompleteResultError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want IncompleteResultError", err)
	}
	if strings.Join(ie.Missing, ",") != "summary,bullets" {
		t.Errorf("missing = %v", ie.Missing)
	}
}

func TestBuildPromptEmbedsTranscript(t *testing.T) {
	p := BuildPrompt("we spent 100% of the budget")
	if !strings.Contains(p, "TRANSCRIPT TO ANALYZE:\nwe spent 100% of the budget\n") {
		t.Error("transcript not embedded verbatim")
	}
	for _, key := range []string{`"summary"`, `"bullets"`, `"keyInsights"`, `"positiveQuotes"`, `"negativeQuotes"`, `"keyQuotes"`} {
		if !strings.Contains(p, key) {
			t.Errorf("prompt missing %s", key)
		}
	}
}

func TestBuildPromptQuoteSections(t *testing.T) {
	p := BuildPrompt("x")
	for _, want := range []string{
		"4. POSITIVE QUOTES (3 items):\n   Three EXACT verbatim quotes from the transcript that express satisfaction",
		"5. NEGATIVE QUOTES (3 items):\n   Three EXACT verbatim quotes from the transcript that express frustration",
		"6. KEY QUOTES (3 items):\n   Three EXACT verbatim quotes that are the most memorable",
		"If fewer than 3 positive quotes exist, include what you can find.",
		"If fewer than 3 negative quotes exist, include what you can find.",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(strings.ToLower(p), "up to three") {
		t.Error("quote sections must ask for three quotes")
	}
}

func newExtractor(t *testing.T, h http.Handler) *Extractor {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		GeminiBaseURL: srv.URL,
		OpenAIBaseURL: srv.URL,
		ClaudeBaseURL: srv.URL,
	}, logger.Discard().Entry)
}

func TestExtractOpenAI(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	x := newExtractor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "```json\n" + completeJSON + "\n```"}},
			},
		})
	}))

	ins, err := x.Extract(context.Background(), types.ProviderOpenAI, "sk-test", "hello")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ins.Summary != "Two people discussed the onboarding flow." {
		t.Errorf("summary = %q", ins.Summary)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["temperature"] != 0.2 || gotBody["max_tokens"] != float64(4096) {
		t.Errorf("generation config = %v / %v", gotBody["temperature"], gotBody["max_tokens"])
	}
}

func TestExtractClaude(t *testing.T) {
	x := newExtractor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "ck" || r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("headers = %v", r.Header)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": completeJSON}},
		})
	}))

	ins, err := x.Extract(context.Background(), types.ProviderClaude, "ck", "hello")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(ins.PositiveQuotes) != 1 {
		t.Errorf("positive quotes = %v", ins.PositiveQuotes)
	}
}

func TestExtractGemini(t *testing.T) {
	x := newExtractor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]string{{"text": completeJSON}},
				}},
			},
		})
	}))

	ins, err := x.Extract(context.Background(), types.ProviderGemini, "gk", "hello")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(ins.Bullets) != 2 {
		t.Errorf("bullets = %v", ins.Bullets)
	}
}

func TestExtractVendorErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		status   int
		body     string
		kind     types.ErrorKind
	}{
		{"openai auth", types.ProviderOpenAI, 401, `{"error":{"message":"Incorrect API key provided"}}`, types.KindAuth},
		{"openai quota", types.ProviderOpenAI, 429, `{"error":{"type":"insufficient_quota"}}`, types.KindQuota},
		{"claude billing", types.ProviderClaude, 400, `{"error":{"message":"Your credit balance is too low"}}`, types.KindQuota},
		{"claude overloaded", types.ProviderClaude, 529, `{"error":{"type":"overloaded_error"}}`, types.KindGeneral},
		{"gemini quota", types.ProviderGemini, 429, `{"error":{"code":429,"message":"Resource has been exhausted (e.g. check quota).","status":"RESOURCE_EXHAUSTED"}}`, types.KindQuota},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newExtractor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			_, err := x.Extract(context.Background(), tt.provider, "key", "hello")
			var ve *types.VendorError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want VendorError", err)
			}
			if ve.Kind != tt.kind || ve.Source != types.SourceInsights || ve.Provider != tt.provider {
				t.Errorf("vendor error = %+v", ve)
			}
		})
	}
}

func TestExtractUnknownProvider(t *testing.T) {
	x := New(Options{}, logger.Discard().Entry)
	_, err := x.Extract(context.Background(), "mistral", "k", "t")
	var ve *types.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

type stubProvider struct {
	text string
	err  error
}

func (s stubProvider) Name() string { return "stub" }
func (s stubProvider) Generate(context.Context, string, string) (string, error) {
	return s.text, s.err
}

func TestExtractEmptyResponseIsParseError(t *testing.T) {
	x := NewWithProviders(logger.Discard().Entry, stubProvider{text: ""})
	_, err := x.Extract(context.Background(), "stub", "k", "t")
	var pe *types.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("err = %v, want ParseError", err)
	}
}
