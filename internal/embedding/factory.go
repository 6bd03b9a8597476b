package embedding

import "github.com/kaizen-dev/memento/internal/kerrors"

// ProviderKind selects which concrete Provider New builds.
type ProviderKind string

const (
	ProviderHash   ProviderKind = "hash"
	ProviderLocal  ProviderKind = "local"
	ProviderOpenAI ProviderKind = "openai"
	ProviderGemini ProviderKind = "gemini"
)

// Config is the on-disk shape for selecting and configuring an
// embedding provider; internal/config embeds this.
type Config struct {
	Kind ProviderKind `yaml:"kind"`

	Model      string  `yaml:"model,omitempty"`
	Dimensions int     `yaml:"dimensions,omitempty"`
	APIKey     string  `yaml:"api_key,omitempty"`
	BaseURL    string  `yaml:"base_url,omitempty"`
	RateLimit  float64 `yaml:"rate_limit,omitempty"`
}

// New builds the Provider selected by cfg.Kind.
func New(cfg Config) (Provider, error) {
	switch cfg.Kind {
	case "", ProviderHash:
		return NewHashProvider(), nil
	case ProviderLocal:
		return NewLocalProvider(cfg.Model, cfg.Dimensions), nil
	case ProviderOpenAI:
		return NewOpenAICompatProvider(OpenAICompatConfig{
			APIKey:            cfg.APIKey,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			BaseURL:           cfg.BaseURL,
			RequestsPerSecond: cfg.RateLimit,
		}), nil
	case ProviderGemini:
		return NewGeminiProvider(GeminiConfig{
			APIKey:            cfg.APIKey,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			BaseURL:           cfg.BaseURL,
			RequestsPerSecond: cfg.RateLimit,
		}), nil
	default:
		return nil, kerrors.ConfigErr("unknown embedding provider kind: " + string(cfg.Kind))
	}
}
