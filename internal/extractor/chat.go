package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"supersoniq-insights/internal/metrics"
	"supersoniq-insights/internal/types"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAI speaks the chat-completions protocol.
type openAI struct {
	http    *http.Client
	baseURL string
	model   string
}

func (o *openAI) Name() string { return types.ProviderOpenAI }

func (o *openAI) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":       o.model,
		"messages":    []chatMessage{{Role: "user", Content: prompt}},
		"temperature": temperature,
		"max_tokens":  maxOutputTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + apiKey}
	body, err := postJSON(ctx, o.http, types.ProviderOpenAI, o.baseURL+"/chat/completions", headers, reqBody)
	if err != nil {
		return "", err
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &types.ParseError{Provider: types.ProviderOpenAI, Raw: string(body), Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

// claude speaks the messages protocol.
type claude struct {
	http    *http.Client
	baseURL string
	model   string
}

const anthropicVersion = "2023-06-01"

func (c *claude) Name() string { return types.ProviderClaude }

func (c *claude) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":       c.model,
		"max_tokens":  maxOutputTokens,
		"temperature": temperature,
		"messages":    []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": anthropicVersion,
	}
	body, err := postJSON(ctx, c.http, types.ProviderClaude, c.baseURL+"/messages", headers, reqBody)
	if err != nil {
		return "", err
	}
	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &types.ParseError{Provider: types.ProviderClaude, Raw: string(body), Err: err}
	}
	for _, block := range parsed.Content {
		if block.Type == "" || block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}

// postJSON sends one request and classifies any failure against provider.
func postJSON(ctx context.Context, hc *http.Client, provider, url string, headers map[string]string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		metrics.RecordVendorCall(provider, "generate", 0, time.Since(start))
		return nil, &types.NetworkError{Source: types.SourceInsights, Provider: provider, Op: "generate", Err: err}
	}
	defer resp.Body.Close()
	metrics.RecordVendorCall(provider, "generate", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.NetworkError{Source: types.SourceInsights, Provider: provider, Op: "generate", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, types.NewVendorError(types.SourceInsights, provider, "generate", resp.StatusCode, string(body))
	}
	return body, nil
}
