// Package remote implements storage.Backend against a graph database
// reachable over HTTP, as the second of the two backends the engine
// dispatches between. It speaks a small JSON/REST contract — one route
// per Backend method — rather than any wire protocol specific to one
// vendor, so any graph store can sit behind it by implementing the same
// routes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/internal/resilience"
	"github.com/kaizen-dev/memento/internal/retry"
	"github.com/kaizen-dev/memento/internal/storage"
)

// Config configures a Store against a running graph server.
type Config struct {
	// BaseURL is the server root, e.g. "http://localhost:8182".
	BaseURL string
	// APIKey, if set, is sent as a Bearer token on every request.
	APIKey string
	// Timeout bounds each individual HTTP call.
	Timeout time.Duration
	// RequestsPerSecond paces outbound calls. Zero disables pacing.
	RequestsPerSecond float64
}

// Store calls a remote graph backend over HTTP, guarding every call with
// a circuit breaker and an optional rate limiter so a failing or
// overloaded upstream degrades predictably instead of stacking up
// timeouts.
type Store struct {
	cfg     Config
	client  *http.Client
	breaker *resilience.Breaker
	limiter *rate.Limiter
}

// New constructs a Store. BaseURL defaults to http://localhost:8182,
// Timeout to 5 seconds.
func New(cfg Config) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8182"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Store{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: resilience.New("storage-remote", resilience.DefaultConfig()),
		limiter: limiter,
	}
}

// Close is a no-op: the HTTP client holds no long-lived connection that
// needs releasing beyond what the transport already pools.
func (s *Store) Close() error { return nil }

// doJSON executes one request/response round trip, retrying transient
// failures with internal/retry around a circuit breaker guarding the
// underlying call: each retry attempt re-checks the breaker, so a tripped
// breaker fails the remaining attempts fast instead of retrying against a
// upstream already known to be down. Non-2xx responses (other than 404,
// which becomes NotFound) become a kerrors.Storage error carrying the
// upstream status code, which is what retry's transience check inspects
// via kerrors.IsTransient.
func (s *Store) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	_, err := retry.With(ctx, retry.DefaultConfig(), func(ctx context.Context) (any, error) {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		_, err := s.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
			return nil, s.roundTrip(ctx, method, path, reqBody, respBody)
		})
		if err == resilience.ErrOpen {
			return nil, kerrors.RemoteErr("remote storage circuit breaker open")
		}
		return nil, err
	})
	return err
}

func (s *Store) roundTrip(ctx context.Context, method, path string, reqBody, respBody any) error {
	var payload io.Reader
	if reqBody != nil {
		buf, err := json.Marshal(reqBody)
		if err != nil {
			return kerrors.Wrap(kerrors.Serialization, "marshal remote request", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, payload)
	if err != nil {
		return kerrors.Wrap(kerrors.Http, "build remote request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return kerrors.Wrap(kerrors.Http, "remote request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return kerrors.NotFound(fmt.Sprintf("%s %s: not found", method, path))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return kerrors.StorageErr(fmt.Sprintf("%s %s returned status %d: %s", method, path, resp.StatusCode, string(body)))
	}

	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return kerrors.Wrap(kerrors.Serialization, "decode remote response", err)
	}
	return nil
}

var _ storage.Backend = (*Store)(nil)
