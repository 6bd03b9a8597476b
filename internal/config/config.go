// Package config loads and persists the on-disk configuration record: the
// single YAML file under the kaizen config directory that selects the
// storage backend, embedding provider, and tunes every threshold the core
// components expose (ranking weights, decay/prune, privacy scrub rules,
// auto-capture noise thresholds, consolidation clustering, and the
// context-pack token budget).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kaizen-dev/memento/internal/capture"
	"github.com/kaizen-dev/memento/internal/consolidate"
	"github.com/kaizen-dev/memento/internal/embedding"
	"github.com/kaizen-dev/memento/internal/privacy"
	"github.com/kaizen-dev/memento/internal/ranking"
	"github.com/kaizen-dev/memento/internal/trust"
)

// LLMConfig selects and configures the text-completion collaborator used
// by auto-tagging and session compression. Only Ollama is wired: nothing
// in this module constructs an OpenAI/Anthropic TextGenerator, so those
// provider fields from the teacher's LLMConfig are dropped rather than
// carried unused.
type LLMConfig struct {
	OllamaURL   string `yaml:"ollama_url"`
	OllamaModel string `yaml:"ollama_model"`
}

// StorageConfig selects and configures one of the two storage backends.
type StorageConfig struct {
	// Backend is "sqlite" or "remote".
	Backend string `yaml:"backend"`
	// DSN is the sqlite file path, or the remote backend's base URL.
	DSN string `yaml:"dsn"`
	// RemoteAPIKey is sent as a bearer token when Backend is "remote".
	RemoteAPIKey string `yaml:"remote_api_key,omitempty"`
	// RemoteRequestsPerSecond paces calls to the remote backend. Zero
	// disables pacing.
	RemoteRequestsPerSecond float64 `yaml:"remote_requests_per_second,omitempty"`
}

// Config is the full in-process configuration record. Every field has a
// documented default from DefaultConfig; Load overlays whatever the
// on-disk YAML file sets on top of those defaults.
type Config struct {
	Storage        StorageConfig      `yaml:"storage"`
	LLM            LLMConfig          `yaml:"llm"`
	Embedding      embedding.Config   `yaml:"embedding"`
	Ranking        ranking.Weights    `yaml:"ranking"`
	Decay          trust.DecayConfig  `yaml:"decay"`
	Privacy        privacy.Config     `yaml:"privacy"`
	Capture        capture.Config     `yaml:"capture"`
	Consolidate    consolidate.Config `yaml:"consolidate"`
	ContextBudget  int                `yaml:"context_budget"`
	HistoryEnabled bool               `yaml:"history_enabled"`
}

// DefaultContextBudget is the token budget a context pack is built
// against absent an override.
const DefaultContextBudget = 4000

// DefaultConfig returns every knob at its documented default, mirroring
// the teacher's buildBaseConfig() shape (one function assembling the
// whole record from each component's own DefaultConfig/DefaultWeights).
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "sqlite",
			DSN:     "./kaizen.db",
		},
		LLM: LLMConfig{
			OllamaURL:   "http://localhost:11434",
			OllamaModel: "qwen2.5:7b",
		},
		Embedding: embedding.Config{
			Kind: embedding.ProviderHash,
		},
		Ranking:        ranking.DefaultWeights(),
		Decay:          trust.DefaultDecayConfig(),
		Privacy:        privacy.DefaultConfig(),
		Capture:        capture.DefaultConfig(),
		Consolidate:    consolidate.DefaultConfig(),
		ContextBudget:  DefaultContextBudget,
		HistoryEnabled: true,
	}
}

// Dir returns the per-user kaizen configuration directory: $XDG_CONFIG_HOME/kaizen
// or os.UserConfigDir()/kaizen, matching the persisted-layout section's
// "per-user configuration directory named kaizen/".
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(base, "kaizen"), nil
}

// Path returns the config file path within dir.
func Path(dir string) string {
	return filepath.Join(dir, "config.yaml")
}

// Load reads and parses the YAML config file at path, overlaying its
// fields onto DefaultConfig. A missing file is not an error: it returns
// the defaults unchanged, so a fresh install works without any setup
// step.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as
// needed.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("config: mkdir %s: %w", dir, err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
