package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"supersoniq-insights/internal/metrics"
	"supersoniq-insights/internal/types"
)

const anthropicVersion = "2023-06-01"

// ClaudeProxy relays {apiKey, prompt} to the Claude messages endpoint and
// hands the vendor's JSON back unchanged.
type ClaudeProxy struct {
	http    *http.Client
	baseURL string
	model   string
	log     *logrus.Entry
}

func NewClaudeProxy(hc *http.Client, baseURL, model string, log *logrus.Entry) *ClaudeProxy {
	if hc == nil {
		hc = &http.Client{Timeout: 120 * time.Second}
	}
	return &ClaudeProxy{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		log:     log.WithField("component", "claude_proxy"),
	}
}

type proxyRequest struct {
	APIKey string `json:"apiKey"`
	Prompt string `json:"prompt"`
}

type proxyError struct {
	Error string `json:"error"`
}

func (p *ClaudeProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in proxyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.APIKey == "" || in.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, proxyError{Error: "Missing apiKey or prompt"})
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"model":      p.model,
		"max_tokens": 4096,
		"messages":   []map[string]string{{"role": "user", "content": in.Prompt}},
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, proxyError{Error: "Failed to connect to Claude API"})
		return
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, proxyError{Error: "Failed to connect to Claude API"})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", in.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := p.http.Do(req)
	if err != nil {
		metrics.RecordVendorCall(types.ProviderClaude, "proxy", 0, time.Since(start))
		p.log.WithError(err).Error("claude request failed")
		writeJSON(w, http.StatusInternalServerError, proxyError{Error: "Failed to connect to Claude API"})
		return
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	metrics.RecordVendorCall(types.ProviderClaude, "proxy", resp.StatusCode, time.Since(start))
	if err != nil {
		p.log.WithError(err).Error("claude response unreadable")
		writeJSON(w, http.StatusInternalServerError, proxyError{Error: "Failed to connect to Claude API"})
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.log.WithFields(logrus.Fields{"status": resp.StatusCode, "kind": types.ClassifyVendorError(resp.StatusCode, string(body))}).Warn("claude returned an error")
		writeJSON(w, resp.StatusCode, proxyError{Error: string(body)})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
