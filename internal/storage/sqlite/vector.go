package sqlite

import (
	"context"
	"encoding/binary"
	"math"
	"sort"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/internal/storage"
)

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// VectorSearch brute-forces cosine similarity over every stored
// embedding. The embedded backend has no native vector index; this
// trades scan cost for zero extra dependencies, matching the contract's
// requirement that the remote backend (which pushes search into the
// remote query) and the embedded backend both satisfy the same
// interface without the embedded side needing an index library.
func (s *Store) VectorSearch(ctx context.Context, queryEmbedding []float32, limit int) ([]storage.ScoredMemory, error) {
	if limit <= 0 {
		return nil, nil
	}

	var results []storage.ScoredMemory
	err := s.withConn(ctx, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT m.`+memoryColumns+`, e.vector, e.dimensions
			FROM memories m JOIN embeddings e ON e.memory_id = m.id
		`)
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "vector_search", err)
		}
		defer rows.Close()

		for rows.Next() {
			var vecBlob []byte
			var dims int
			m, err := scanMemoryWithTrailing(rows, &vecBlob, &dims)
			if err != nil {
				return kerrors.Wrap(kerrors.Storage, "vector_search: scan row", err)
			}
			vec := decodeVector(vecBlob)
			if len(vec) != len(queryEmbedding) {
				continue
			}
			score := cosineSimilarity(queryEmbedding, vec)
			results = append(results, storage.ScoredMemory{Memory: m, Score: score})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
