package extractor

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"supersoniq-insights/internal/metrics"
	"supersoniq-insights/internal/types"
)

type gemini struct {
	http    *http.Client
	baseURL string
	model   string
}

func (g *gemini) Name() string { return types.ProviderGemini }

// Generate calls generateContent through the Gemini SDK. A client is built
// per call because the key belongs to the caller, not the service.
func (g *gemini) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.http,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", &types.NetworkError{Source: types.SourceInsights, Provider: types.ProviderGemini, Op: "create client", Err: err}
	}

	start := time.Now()
	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		status, body, ok := geminiAPIError(err)
		metrics.RecordVendorCall(types.ProviderGemini, "generate", status, time.Since(start))
		if ok {
			return "", types.NewVendorError(types.SourceInsights, types.ProviderGemini, "generate", status, body)
		}
		return "", &types.NetworkError{Source: types.SourceInsights, Provider: types.ProviderGemini, Op: "generate", Err: err}
	}
	metrics.RecordVendorCall(types.ProviderGemini, "generate", http.StatusOK, time.Since(start))

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// geminiAPIError unpacks the SDK's API error into status and body text.
func geminiAPIError(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status + ": " + apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status + ": " + apiErrPtr.Message, true
	}
	return 0, "", false
}
