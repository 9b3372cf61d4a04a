package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Provider describes one vendor credential slot.
type Provider struct {
	Name        string `yaml:"name"`
	StorageKey  string `yaml:"storage_key"`
	KeyLink     string `yaml:"key_link"`
	BillingLink string `yaml:"billing_link"`
}

// Catalog maps provider ids (transcription, gemini, openai, claude) to their
// storage keys and remediation links.
type Catalog struct {
	SelectionKey string              `yaml:"selection_key"`
	Providers    map[string]Provider `yaml:"providers"`
}

// DefaultCatalog keeps the storage keys of existing installs: the gemini slot
// reuses the legacy shared AI key.
func DefaultCatalog() Catalog {
	return Catalog{
		SelectionKey: "supersoniq_ai_provider",
		Providers: map[string]Provider{
			"transcription": {
				Name:        "AssemblyAI",
				StorageKey:  "supersoniq_api_key",
				KeyLink:     "https://www.assemblyai.com/",
				BillingLink: "https://www.assemblyai.com/dashboard",
			},
			"gemini": {
				Name:        "Gemini API",
				StorageKey:  "supersoniq_ai_key",
				KeyLink:     "https://aistudio.google.com/app/apikey",
				BillingLink: "https://aistudio.google.com/app/apikey",
			},
			"openai": {
				Name:        "OpenAI API",
				StorageKey:  "supersoniq_openai_key",
				KeyLink:     "https://platform.openai.com/api-keys",
				BillingLink: "https://platform.openai.com/settings/organization/billing",
			},
			"claude": {
				Name:        "Claude API",
				StorageKey:  "supersoniq_claude_key",
				KeyLink:     "https://console.anthropic.com/settings/keys",
				BillingLink: "https://console.anthropic.com/settings/billing",
			},
		},
	}
}

// LoadCatalog overlays the YAML file at path on the defaults. An empty path
// returns the defaults.
func LoadCatalog(path string) (Catalog, error) {
	cat := DefaultCatalog()
	if path == "" {
		return cat, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read providers file: %w", err)
	}
	var file Catalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("parse providers file: %w", err)
	}
	if file.SelectionKey != "" {
		cat.SelectionKey = file.SelectionKey
	}
	for id, p := range file.Providers {
		base := cat.Providers[id]
		if p.Name != "" {
			base.Name = p.Name
		}
		if p.StorageKey != "" {
			base.StorageKey = p.StorageKey
		}
		if p.KeyLink != "" {
			base.KeyLink = p.KeyLink
		}
		if p.BillingLink != "" {
			base.BillingLink = p.BillingLink
		}
		cat.Providers[id] = base
	}
	return cat, cat.Validate()
}

func (c Catalog) Validate() error {
	if c.SelectionKey == "" {
		return fmt.Errorf("selection_key is required")
	}
	seen := map[string]string{c.SelectionKey: "selection"}
	for id, p := range c.Providers {
		if p.StorageKey == "" {
			return fmt.Errorf("provider %s: storage_key is required", id)
		}
		if other, dup := seen[p.StorageKey]; dup {
			return fmt.Errorf("provider %s: storage_key %q already used by %s", id, p.StorageKey, other)
		}
		seen[p.StorageKey] = id
	}
	return nil
}

// StorageKeys returns the provider -> storage key mapping for the key store.
func (c Catalog) StorageKeys() map[string]string {
	out := make(map[string]string, len(c.Providers))
	for id, p := range c.Providers {
		out[id] = p.StorageKey
	}
	return out
}

// Lookup returns the catalog entry for a provider id. The assemblyai vendor
// name resolves to the transcription slot.
func (c Catalog) Lookup(id string) (Provider, bool) {
	if id == "assemblyai" {
		id = "transcription"
	}
	p, ok := c.Providers[id]
	return p, ok
}
