package keystore

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"supersoniq-insights/internal/types"
)

// Config maps provider ids to the namespaced storage key of their credential.
type Config struct {
	Keys            map[string]string
	SelectionKey    string
	DefaultProvider string
}

// Store persists obfuscated vendor credentials and the selected insights
// provider.
type Store struct {
	backend Backend
	cfg     Config
	log     *logrus.Entry
}

func New(backend Backend, cfg Config, log *logrus.Entry) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("keystore: backend is required")
	}
	if len(cfg.Keys) == 0 {
		return nil, fmt.Errorf("keystore: no provider storage keys configured")
	}
	if cfg.SelectionKey == "" {
		return nil, fmt.Errorf("keystore: selection key is required")
	}
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = types.ProviderGemini
	}
	return &Store{backend: backend, cfg: cfg, log: log.WithField("component", "keystore")}, nil
}

func (s *Store) storageKey(provider string) (string, error) {
	k, ok := s.cfg.Keys[provider]
	if !ok {
		return "", &types.ValidationError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", provider)}
	}
	return k, nil
}

// Store saves key for provider, replacing any previous value.
func (s *Store) Store(ctx context.Context, provider, key string) error {
	sk, err := s.storageKey(provider)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return &types.ValidationError{Field: "key", Reason: "API key must not be empty"}
	}
	if err := s.backend.Set(ctx, sk, Obfuscate(key)); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"provider": provider, "key": Mask(key)}).Info("credential stored")
	return nil
}

// Retrieve returns the stored key for provider, or "" when absent or unreadable.
func (s *Store) Retrieve(ctx context.Context, provider string) (string, error) {
	sk, err := s.storageKey(provider)
	if err != nil {
		return "", err
	}
	v, ok, err := s.backend.Get(ctx, sk)
	if err != nil || !ok {
		return "", err
	}
	key := Deobfuscate(v)
	if key == "" {
		s.log.WithField("provider", provider).Warn("stored credential could not be decoded")
	}
	return key, nil
}

func (s *Store) Clear(ctx context.Context, provider string) error {
	sk, err := s.storageKey(provider)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, sk); err != nil {
		return err
	}
	s.log.WithField("provider", provider).Info("credential cleared")
	return nil
}

// StoreProvider records the selected insights provider in plain text.
func (s *Store) StoreProvider(ctx context.Context, provider string) error {
	if !isInsightProvider(provider) {
		return &types.ValidationError{Field: "provider", Reason: fmt.Sprintf("unsupported insights provider %q", provider)}
	}
	return s.backend.Set(ctx, s.cfg.SelectionKey, provider)
}

// RetrieveProvider returns the selected insights provider, falling back to
// the default when nothing valid is stored.
func (s *Store) RetrieveProvider(ctx context.Context) (string, error) {
	v, ok, err := s.backend.Get(ctx, s.cfg.SelectionKey)
	if err != nil {
		return "", err
	}
	if !ok || !isInsightProvider(v) {
		return s.cfg.DefaultProvider, nil
	}
	return v, nil
}

func (s *Store) ClearProvider(ctx context.Context) error {
	return s.backend.Delete(ctx, s.cfg.SelectionKey)
}

func isInsightProvider(p string) bool {
	for _, known := range types.InsightProviders {
		if p == known {
			return true
		}
	}
	return false
}
