package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"supersoniq-insights/internal/config"
	"supersoniq-insights/internal/keystore"
	"supersoniq-insights/internal/logger"
	"supersoniq-insights/internal/pipeline"
	"supersoniq-insights/internal/processor"
	"supersoniq-insights/internal/types"
)

type funcRunner func(ctx context.Context, in pipeline.Input) (types.InsightResult, error)

func (f funcRunner) Run(ctx context.Context, in pipeline.Input) (types.InsightResult, error) {
	return f(ctx, in)
}

func newTestServer(t *testing.T, runner processor.Runner, proxy *ClaudeProxy) (*httptest.Server, *keystore.Store) {
	t.Helper()
	cat := config.DefaultCatalog()
	log := logger.Discard()
	keys, err := keystore.New(keystore.NewMemoryBackend(), keystore.Config{
		Keys:         cat.StorageKeys(),
		SelectionKey: cat.SelectionKey,
	}, log.Entry)
	if err != nil {
		t.Fatalf("keystore.New: %v", err)
	}
	srv := NewServer(Deps{
		Keys:      keys,
		Processor: processor.New(runner, cat, log.Entry),
		Catalog:   cat,
		Proxy:     proxy,
		Log:       log,
		Metrics:   true,
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, keys
}

func do(t *testing.T, method, url, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func audioUpload(t *testing.T) (string, io.Reader) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "call.mp3")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("ID3audio"))
	mw.Close()
	return mw.FormDataContentType(), &buf
}

func okRunner(context.Context, pipeline.Input) (types.InsightResult, error) {
	return types.InsightResult{SummaryParagraph: "done", OverallSentiment: "POSITIVE", Quotes: []string{}}, nil
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t, funcRunner(okRunner), nil)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", nil)
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(b) != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, b)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/metrics", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}
}

func TestKeyLifecycle(t *testing.T) {
	ts, keys := newTestServer(t, funcRunner(okRunner), nil)

	resp := do(t, http.MethodPut, ts.URL+"/keys/openai", "application/json", strings.NewReader(`{"key":"sk-test-9876"}`))
	var st keyStatus
	decode(t, resp, &st)
	if resp.StatusCode != http.StatusOK || !st.Stored || st.Masked != "...9876" || st.Name != "OpenAI API" {
		t.Fatalf("put = %d %+v", resp.StatusCode, st)
	}
	if k, _ := keys.Retrieve(context.Background(), "openai"); k != "sk-test-9876" {
		t.Errorf("stored key = %q", k)
	}

	resp = do(t, http.MethodGet, ts.URL+"/keys/openai", "", nil)
	decode(t, resp, &st)
	if !st.Stored {
		t.Errorf("get = %+v", st)
	}

	if resp := do(t, http.MethodDelete, ts.URL+"/keys/openai", "", nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, ts.URL+"/keys/openai", "", nil)
	st = keyStatus{}
	decode(t, resp, &st)
	if st.Stored || st.Masked != "" {
		t.Errorf("after delete = %+v", st)
	}
}

func TestKeyValidation(t *testing.T) {
	ts, _ := newTestServer(t, funcRunner(okRunner), nil)
	tests := []struct {
		name, method, path, body string
	}{
		{"unknown provider", http.MethodGet, "/keys/mistral", ""},
		{"empty key", http.MethodPut, "/keys/gemini", `{"key":"  "}`},
		{"bad json", http.MethodPut, "/keys/gemini", `{`},
		{"bad provider selection", http.MethodPut, "/provider", `{"provider":"transcription"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, ts.URL+tt.path, "application/json", strings.NewReader(tt.body))
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestProviderSelection(t *testing.T) {
	ts, _ := newTestServer(t, funcRunner(okRunner), nil)
	var body providerBody

	decode(t, do(t, http.MethodGet, ts.URL+"/provider", "", nil), &body)
	if body.Provider != types.ProviderGemini {
		t.Errorf("default provider = %q", body.Provider)
	}
	do(t, http.MethodPut, ts.URL+"/provider", "application/json", strings.NewReader(`{"provider":"claude"}`))
	decode(t, do(t, http.MethodGet, ts.URL+"/provider", "", nil), &body)
	if body.Provider != types.ProviderClaude {
		t.Errorf("provider = %q", body.Provider)
	}
	do(t, http.MethodDelete, ts.URL+"/provider", "", nil)
	decode(t, do(t, http.MethodGet, ts.URL+"/provider", "", nil), &body)
	if body.Provider != types.ProviderGemini {
		t.Errorf("provider after clear = %q", body.Provider)
	}
}

func TestRunAndExport(t *testing.T) {
	inputs := make(chan pipeline.Input, 1)
	ts, _ := newTestServer(t, funcRunner(func(ctx context.Context, in pipeline.Input) (types.InsightResult, error) {
		b, _ := io.ReadAll(in.Audio)
		if string(b) != "ID3audio" {
			t.Errorf("audio = %q", b)
		}
		inputs <- in
		return okRunner(ctx, in)
	}), nil)

	if resp := do(t, http.MethodGet, ts.URL+"/runs/last", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("last before any run = %d", resp.StatusCode)
	}

	ct, body := audioUpload(t)
	resp := do(t, http.MethodPost, ts.URL+"/runs", ct, body)
	var out processor.RunResult
	decode(t, resp, &out)
	if resp.StatusCode != http.StatusOK || out.Result == nil || out.Result.SummaryParagraph != "done" {
		t.Fatalf("run = %d %+v", resp.StatusCode, out)
	}
	if got := <-inputs; got.Filename != "call.mp3" || got.Size != 8 {
		t.Errorf("input = %+v", got)
	}

	resp = do(t, http.MethodGet, ts.URL+"/runs/last/export?format=txt", "", nil)
	text, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(text), "SUPERSONIQ INSIGHTS\n") {
		t.Errorf("export = %d %q", resp.StatusCode, text)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "supersoniq-insights-") || !strings.Contains(cd, ".txt") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/runs/last/export?format=pdf", "", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("pdf export status = %d", resp.StatusCode)
	}

	if resp := do(t, http.MethodDelete, ts.URL+"/runs/last", "", nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("reset status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/runs/last/export", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("export after reset = %d", resp.StatusCode)
	}
}

func TestRunFailureStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   types.ErrorKind
	}{
		{"validation", &types.ValidationError{Field: "key", Reason: "Please add your AssemblyAI API key first"}, http.StatusBadRequest, types.KindGeneral},
		{"quota", types.NewVendorError(types.SourceTranscription, "assemblyai", "upload", 429, ""), http.StatusBadGateway, types.KindQuota},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(t, funcRunner(func(context.Context, pipeline.Input) (types.InsightResult, error) {
				return types.InsightResult{}, tt.err
			}), nil)
			ct, body := audioUpload(t)
			resp := do(t, http.MethodPost, ts.URL+"/runs", ct, body)
			var out processor.RunResult
			decode(t, resp, &out)
			if resp.StatusCode != tt.status || out.Error == nil || out.Error.Kind != tt.kind {
				t.Errorf("run = %d %+v", resp.StatusCode, out.Error)
			}
		})
	}
}

func TestRunConflict(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	ts, _ := newTestServer(t, funcRunner(func(context.Context, pipeline.Input) (types.InsightResult, error) {
		close(started)
		<-release
		return types.InsightResult{}, nil
	}), nil)

	done := make(chan int, 1)
	go func() {
		ct, body := audioUpload(t)
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/runs", body)
		req.Header.Set("Content-Type", ct)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	<-started

	ct, body := audioUpload(t)
	if resp := do(t, http.MethodPost, ts.URL+"/runs", ct, body); resp.StatusCode != http.StatusConflict {
		t.Errorf("concurrent run status = %d, want 409", resp.StatusCode)
	}
	close(release)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first run status = %d", code)
	}
}

func TestRunMissingFile(t *testing.T) {
	ts, _ := newTestServer(t, funcRunner(func(_ context.Context, in pipeline.Input) (types.InsightResult, error) {
		if in.Audio == nil {
			return types.InsightResult{}, &types.ValidationError{Field: "file", Reason: "Please upload an audio file"}
		}
		return types.InsightResult{}, nil
	}), nil)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "no audio")
	mw.Close()

	resp := do(t, http.MethodPost, ts.URL+"/runs", mw.FormDataContentType(), &buf)
	var out processor.RunResult
	decode(t, resp, &out)
	if resp.StatusCode != http.StatusBadRequest || out.Error == nil || out.Error.Message != "Please upload an audio file" {
		t.Errorf("run = %d %+v", resp.StatusCode, out.Error)
	}
}
