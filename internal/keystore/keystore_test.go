package keystore

import (
	"context"
	"errors"
	"testing"

	"supersoniq-insights/internal/logger"
	"supersoniq-insights/internal/types"
)

func testConfig() Config {
	return Config{
		Keys: map[string]string{
			types.ProviderTranscription: "supersoniq_api_key",
			types.ProviderGemini:        "supersoniq_ai_key",
			types.ProviderOpenAI:        "supersoniq_openai_key",
			types.ProviderClaude:        "supersoniq_claude_key",
		},
		SelectionKey: "supersoniq_ai_provider",
	}
}

func newStore(t *testing.T, b Backend) *Store {
	t.Helper()
	s, err := New(b, testConfig(), logger.Discard().Entry)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	sq, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"sqlite": sq,
	}
}

func TestObfuscateKnownValue(t *testing.T) {
	// value written by the browser build for the same passphrase
	const stored = "BwcRCwEQHQcZBUQGAF4CAhFZQh9F"
	if got := Obfuscate("transcription-key-123"); got != stored {
		t.Errorf("Obfuscate = %q, want %q", got, stored)
	}
	if got := Deobfuscate(stored); got != "transcription-key-123" {
		t.Errorf("Deobfuscate = %q", got)
	}
}

func TestDeobfuscateCorrupt(t *testing.T) {
	for _, in := range []string{"%%%not-base64%%%", "abc", "plain-text-key"} {
		if got := Deobfuscate(in); got != "" {
			t.Errorf("Deobfuscate(%q) = %q, want empty", in, got)
		}
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, b)
			if err := s.Store(ctx, types.ProviderTranscription, "transcription-key-123"); err != nil {
				t.Fatalf("Store: %v", err)
			}
			got, err := s.Retrieve(ctx, types.ProviderTranscription)
			if err != nil || got != "transcription-key-123" {
				t.Fatalf("Retrieve = %q, %v", got, err)
			}

			raw, _, _ := b.Get(ctx, "supersoniq_api_key")
			if raw == "transcription-key-123" {
				t.Error("key stored in plain text")
			}

			if err := s.Clear(ctx, types.ProviderTranscription); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			got, err = s.Retrieve(ctx, types.ProviderTranscription)
			if err != nil || got != "" {
				t.Errorf("after Clear Retrieve = %q, %v", got, err)
			}
		})
	}
}

func TestRetrieveForeignValue(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	s := newStore(t, b)
	_ = b.Set(ctx, "supersoniq_ai_key", "!!corrupted!!")

	got, err := s.Retrieve(ctx, types.ProviderGemini)
	if err != nil {
		t.Fatalf("Retrieve returned error for corrupt value: %v", err)
	}
	if got != "" {
		t.Errorf("Retrieve = %q, want empty", got)
	}
}

func TestProvidersAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, NewMemoryBackend())
	_ = s.Store(ctx, types.ProviderGemini, "gem-key")
	_ = s.Store(ctx, types.ProviderOpenAI, "oa-key")
	_ = s.Clear(ctx, types.ProviderGemini)

	if got, _ := s.Retrieve(ctx, types.ProviderOpenAI); got != "oa-key" {
		t.Errorf("openai key = %q", got)
	}
	if got, _ := s.Retrieve(ctx, types.ProviderGemini); got != "" {
		t.Errorf("gemini key = %q", got)
	}
}

func TestStoreRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, NewMemoryBackend())
	var ve *types.ValidationError

	if err := s.Store(ctx, "deepgram", "x"); !errors.As(err, &ve) {
		t.Errorf("unknown provider: err = %v", err)
	}
	if err := s.Store(ctx, types.ProviderGemini, "   "); !errors.As(err, &ve) {
		t.Errorf("empty key: err = %v", err)
	}
}

func TestProviderSelection(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	s := newStore(t, b)

	if p, _ := s.RetrieveProvider(ctx); p != types.ProviderGemini {
		t.Errorf("default provider = %q", p)
	}
	if err := s.StoreProvider(ctx, types.ProviderClaude); err != nil {
		t.Fatalf("StoreProvider: %v", err)
	}
	if p, _ := s.RetrieveProvider(ctx); p != types.ProviderClaude {
		t.Errorf("provider = %q", p)
	}
	if err := s.StoreProvider(ctx, "transcription"); err == nil {
		t.Error("transcription is not an insights provider")
	}

	_ = b.Set(ctx, "supersoniq_ai_provider", "mistral")
	if p, _ := s.RetrieveProvider(ctx); p != types.ProviderGemini {
		t.Errorf("unknown stored provider should fall back, got %q", p)
	}
	_ = s.ClearProvider(ctx)
	if p, _ := s.RetrieveProvider(ctx); p != types.ProviderGemini {
		t.Errorf("after clear provider = %q", p)
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"abc":               "...abc",
		"sk-live-123456789": "...6789",
	}
	for in, want := range tests {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
