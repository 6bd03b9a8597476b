package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/internal/resilience"
	"github.com/kaizen-dev/memento/internal/retry"
	"golang.org/x/time/rate"
)

// GeminiConfig configures a provider against the Gemini embeddings API.
type GeminiConfig struct {
	APIKey            string
	Model             string
	Dimensions        int
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// GeminiProvider calls Gemini's embedContent (single) and
// batchEmbedContents (batch) endpoints.
type GeminiProvider struct {
	cfg     GeminiConfig
	client  *http.Client
	breaker *resilience.Breaker
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewGeminiProvider applies Gemini's own defaults: text-embedding-004,
// 768 dimensions, the public generativelanguage endpoint.
func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	if cfg.Model == "" {
		cfg.Model = "text-embedding-004"
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 768
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &GeminiProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: resilience.New("embedding-gemini", resilience.DefaultConfig()),
		limiter: limiter,
		logger:  cfg.Logger,
	}
}

func (p *GeminiProvider) Dimensions() int { return p.cfg.Dimensions }
func (p *GeminiProvider) ModelID() string { return p.cfg.Model }

type geminiContentPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiContentPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiEmbedValues struct {
	Values []float32 `json:"values"`
}

type geminiEmbedResponse struct {
	Embedding geminiEmbedValues `json:"embedding"`
}

type geminiBatchRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiBatchResponse struct {
	Embeddings []geminiEmbedValues `json:"embeddings"`
}

// Embed retries transient failures with internal/retry around the circuit
// breaker guarding embedContent, the same composition EmbedBatch uses, so a
// single-item embed re-checks breaker state and rate-limit pacing on every
// attempt rather than just the first.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return retry.With(ctx, retry.DefaultConfig(), func(ctx context.Context) ([]float32, error) {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		result, err := p.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
			return p.embedContent(ctx, text)
		})
		if err == resilience.ErrOpen {
			return nil, kerrors.RemoteErr("gemini embedding circuit breaker open")
		}
		if err != nil {
			return nil, err
		}
		return result.([]float32), nil
	})
}

func (p *GeminiProvider) embedContent(ctx context.Context, text string) ([]float32, error) {
	modelPath := "models/" + p.cfg.Model
	reqBody := geminiEmbedRequest{
		Model:   modelPath,
		Content: geminiContent{Parts: []geminiContentPart{{Text: text}}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.Serialization, "marshal gemini embed request", err)
	}

	url := fmt.Sprintf("%s/%s:embedContent?key=%s", p.cfg.BaseURL, modelPath, p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.Embedding, "build gemini embed request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.Embedding, "gemini embed request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, kerrors.EmbeddingErr(fmt.Sprintf("gemini returned status %d: %s", resp.StatusCode, string(body)))
	}

	var out geminiEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, kerrors.Wrap(kerrors.Serialization, "decode gemini embed response", err)
	}
	return out.Embedding.Values, nil
}

// EmbedBatch retries transient failures with internal/retry around the
// circuit breaker guarding batchEmbedContents, each attempt re-checking
// breaker state and rate-limit pacing; only once retries are exhausted does
// it fall back to embedBatchSequential, logging a warning, matching the
// original's batch-then-degrade behavior rather than failing the whole
// batch for one bad request.
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := retry.With(ctx, retry.DefaultConfig(), func(ctx context.Context) ([][]float32, error) {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		result, err := p.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
			return p.batchEmbedContents(ctx, texts)
		})
		if err == resilience.ErrOpen {
			return nil, kerrors.RemoteErr("gemini batch embedding circuit breaker open")
		}
		if err != nil {
			return nil, err
		}
		return result.([][]float32), nil
	})
	if err == nil {
		return result, nil
	}

	p.logger.Warn("gemini batch embedding failed, falling back to sequential calls", "error", err)
	return p.embedBatchSequential(ctx, texts)
}

func (p *GeminiProvider) batchEmbedContents(ctx context.Context, texts []string) ([][]float32, error) {
	modelPath := "models/" + p.cfg.Model
	reqs := make([]geminiEmbedRequest, len(texts))
	for i, t := range texts {
		reqs[i] = geminiEmbedRequest{Model: modelPath, Content: geminiContent{Parts: []geminiContentPart{{Text: t}}}}
	}

	payload, err := json.Marshal(geminiBatchRequest{Requests: reqs})
	if err != nil {
		return nil, kerrors.Wrap(kerrors.Serialization, "marshal gemini batch request", err)
	}

	url := fmt.Sprintf("%s/%s:batchEmbedContents?key=%s", p.cfg.BaseURL, modelPath, p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.Embedding, "build gemini batch request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.Embedding, "gemini batch request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, kerrors.EmbeddingErr(fmt.Sprintf("gemini batch returned status %d: %s", resp.StatusCode, string(body)))
	}

	var out geminiBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, kerrors.Wrap(kerrors.Serialization, "decode gemini batch response", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, kerrors.EmbeddingErr("gemini batch returned a mismatched number of vectors")
	}

	vecs := make([][]float32, len(out.Embeddings))
	for i, e := range out.Embeddings {
		vecs[i] = e.Values
	}
	return vecs, nil
}

// embedBatchSequential calls embedContent directly, bypassing the breaker
// and retry that guard the batch and single-item paths, so a batch failure
// that has tripped the breaker doesn't also doom the degrade path meant to
// rescue it.
func (p *GeminiProvider) embedBatchSequential(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.embedContent(ctx, t)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return vecs, nil
}

var _ Provider = (*GeminiProvider)(nil)
