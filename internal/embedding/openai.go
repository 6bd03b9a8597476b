package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/internal/resilience"
	"github.com/kaizen-dev/memento/internal/retry"
	"golang.org/x/time/rate"
)

// OpenAICompatConfig configures a provider against any OpenAI-compatible
// embeddings endpoint (OpenAI itself, or a self-hosted gateway that
// mirrors its wire format).
type OpenAICompatConfig struct {
	APIKey     string
	Model      string
	Dimensions int
	BaseURL    string
	Timeout    time.Duration
	// RequestsPerSecond bounds outbound call rate; 0 disables limiting.
	RequestsPerSecond float64
}

// OpenAICompatProvider calls POST {base_url}/embeddings with bearer auth.
type OpenAICompatProvider struct {
	cfg     OpenAICompatConfig
	client  *http.Client
	breaker *resilience.Breaker
	limiter *rate.Limiter
}

// NewOpenAICompatProvider applies OpenAI's own defaults when fields are
// left zero: text-embedding-3-small, 1536 dimensions, api.openai.com.
func NewOpenAICompatProvider(cfg OpenAICompatConfig) *OpenAICompatProvider {
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 1536
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &OpenAICompatProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: resilience.New("embedding-openai", resilience.DefaultConfig()),
		limiter: limiter,
	}
}

func (p *OpenAICompatProvider) Dimensions() int { return p.cfg.Dimensions }
func (p *OpenAICompatProvider) ModelID() string { return p.cfg.Model }

type openAIEmbedRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *OpenAICompatProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch retries transient failures with internal/retry around a
// circuit breaker guarding the actual call, so each retry attempt also
// re-checks breaker state and rate-limit pacing.
func (p *OpenAICompatProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return retry.With(ctx, retry.DefaultConfig(), func(ctx context.Context) ([][]float32, error) {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		result, err := p.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
			return p.embedBatch(ctx, texts)
		})
		if err == resilience.ErrOpen {
			return nil, kerrors.RemoteErr("openai embedding circuit breaker open")
		}
		if err != nil {
			return nil, err
		}
		return result.([][]float32), nil
	})
}

func (p *OpenAICompatProvider) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := openAIEmbedRequest{Input: texts, Model: p.cfg.Model}
	if p.cfg.Dimensions != 1536 {
		reqBody.Dimensions = p.cfg.Dimensions
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.Serialization, "marshal embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.Embedding, "build embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.Embedding, "embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, kerrors.EmbeddingErr(fmt.Sprintf("embedding provider returned status %d: %s", resp.StatusCode, string(body)))
	}

	var out openAIEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, kerrors.Wrap(kerrors.Serialization, "decode embedding response", err)
	}
	if len(out.Data) != len(texts) {
		return nil, kerrors.EmbeddingErr("embedding provider returned a mismatched number of vectors")
	}

	vecs := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

var _ Provider = (*OpenAICompatProvider)(nil)
