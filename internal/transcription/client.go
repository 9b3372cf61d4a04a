package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"supersoniq-insights/internal/metrics"
	"supersoniq-insights/internal/types"
)

const provider = "assemblyai"

// Options configures a Client. Zero values pick the documented defaults:
// poll every 3s with no attempt cap and no deadline.
type Options struct {
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
	MaxAttempts  int           // status checks before giving up; 0 = unbounded
	Timeout      time.Duration // overall poll deadline; 0 = none
	NewTimer     func() backoff.Timer
}

// Client talks to the transcription vendor's REST API.
type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
	maxAttempts  int
	timeout      time.Duration
	newTimer     func() backoff.Timer
	log          *logrus.Entry
}

func NewClient(opts Options, log *logrus.Entry) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		http:         opts.HTTPClient,
		pollInterval: opts.PollInterval,
		maxAttempts:  opts.MaxAttempts,
		timeout:      opts.Timeout,
		newTimer:     opts.NewTimer,
		log:          log.WithField("component", "transcription"),
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.assemblyai.com/v2"
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 120 * time.Second}
	}
	if c.pollInterval <= 0 {
		c.pollInterval = 3 * time.Second
	}
	return c
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type submitRequest struct {
	AudioURL string `json:"audio_url"`
	types.Features
}

type submitResponse struct {
	ID     string          `json:"id"`
	Status types.JobStatus `json:"status"`
}

// Upload sends the raw audio bytes and returns the vendor's upload handle.
func (c *Client) Upload(ctx context.Context, apiKey string, audio io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", audio)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := c.do(req, "upload", &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", types.NewVendorError(types.SourceTranscription, provider, "upload", http.StatusOK, "response carried no upload_url")
	}
	return out.UploadURL, nil
}

// Submit requests a transcription job for a previously uploaded file.
func (c *Client) Submit(ctx context.Context, apiKey, uploadURL string, features types.Features) (*types.Job, error) {
	body, err := json.Marshal(submitRequest{AudioURL: uploadURL, Features: features})
	if err != nil {
		return nil, fmt.Errorf("encode submit request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Authorization", apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out submitResponse
	if err := c.do(req, "submit", &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, types.NewVendorError(types.SourceTranscription, provider, "submit", http.StatusOK, "response carried no job id")
	}
	status := out.Status
	if status == "" {
		status = types.StatusQueued
	}
	return &types.Job{ID: out.ID, Status: status}, nil
}

// Get fetches the current job payload.
func (c *Client) Get(ctx context.Context, apiKey, id string) (*types.Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Authorization", apiKey)

	var out types.Transcript
	if err := c.do(req, "status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do executes req once. There is no retry: every failure is classified and
// returned to the caller.
func (c *Client) do(req *http.Request, op string, target interface{}) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordVendorCall(provider, op, 0, time.Since(start))
		return &types.NetworkError{Source: types.SourceTranscription, Provider: provider, Op: op, Err: err}
	}
	defer resp.Body.Close()
	metrics.RecordVendorCall(provider, op, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.NetworkError{Source: types.SourceTranscription, Provider: provider, Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		verr := types.NewVendorError(types.SourceTranscription, provider, op, resp.StatusCode, string(body))
		c.log.WithFields(logrus.Fields{
			"op":          op,
			"http_status": resp.StatusCode,
			"kind":        verr.Kind,
		}).Warn("vendor returned error")
		return verr
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%s: json decode error: %v body=%s", op, err, truncate(string(body), 512))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
