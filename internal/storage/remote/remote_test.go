package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

func TestSaveAndGetMemoryRoundTrip(t *testing.T) {
	m := model.New("title", "content", model.KindFact, "claude")

	var saved model.Memory
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&struct {
				Memory *model.Memory `json:"memory"`
			}{Memory: &saved}))
		case http.MethodGet:
			json.NewEncoder(w).Encode(saved)
		}
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	require.NoError(t, s.SaveMemory(context.Background(), m, nil))

	got, err := s.GetMemory(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.Title, got.Title)
}

func TestGetMemoryNotFoundReturnsKError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	_, err := s.GetMemory(context.Background(), uuid.Must(uuid.NewV7()))
	require.Error(t, err)
	assert.True(t, kerrors.Is(err, kerrors.NotFoundKind))
}

func TestServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	_, err := s.GetMemory(context.Background(), uuid.Must(uuid.NewV7()))
	require.Error(t, err)
	assert.True(t, kerrors.IsTransient(err))
}

func TestVectorSearchSendsQueryAndLimit(t *testing.T) {
	m := model.New("a", "b", model.KindFact, "claude")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req vectorSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 5, req.Limit)
		assert.Equal(t, []float32{0.1, 0.2}, req.QueryEmbedding)
		json.NewEncoder(w).Encode(vectorSearchResponse{
			Results: []storage.ScoredMemory{{Memory: m, Score: 0.9}},
		})
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	results, err := s.VectorSearch(context.Background(), []float32{0.1, 0.2}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.9, results[0].Score)
}

func TestAddRelationAndGetRelations(t *testing.T) {
	rel := model.NewRelation(uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), model.RelationFixes, 0.7)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(getRelationsResponse{Relations: []model.Relation{*rel}})
		}
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	require.NoError(t, s.AddRelation(context.Background(), rel))

	got, err := s.GetRelations(context.Background(), rel.SourceID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rel.ID, got[0].ID)
}

func TestCountRelationsEmptyIDsSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	counts, err := s.CountRelations(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, counts)
	assert.False(t, called)
}

func TestAuthorizationHeaderSentWhenAPIKeySet(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL, APIKey: "secret-token"})
	session := model.NewSession(nil)
	require.NoError(t, s.SaveSession(context.Background(), session))
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestRateLimiterPacesRequests(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL, RequestsPerSecond: 1000})
	session := model.NewSession(nil)
	require.NoError(t, s.SaveSession(context.Background(), session))
	require.NoError(t, s.SaveSession(context.Background(), session))
	assert.Equal(t, 2, calls)
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	var lastErr error
	for i := 0; i < 10; i++ {
		_, lastErr = s.GetMemory(context.Background(), uuid.Must(uuid.NewV7()))
	}
	require.Error(t, lastErr)
	assert.Equal(t, "open", s.breaker.State())
}
