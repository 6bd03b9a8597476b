package model

import "github.com/google/uuid"

// Embedding is an unnormalized float vector associated one-to-one with a
// Memory. Dimensions is stored alongside the vector so mismatched vectors
// (e.g. after switching embedding providers) are detectable rather than
// silently compared.
type Embedding struct {
	MemoryID   uuid.UUID `json:"memory_id"`
	Vector     []float32 `json:"vector"`
	Dimensions int       `json:"dimensions"`
}

// NewEmbedding constructs an Embedding, recording the vector's own length
// as Dimensions.
func NewEmbedding(memoryID uuid.UUID, vector []float32) Embedding {
	return Embedding{MemoryID: memoryID, Vector: vector, Dimensions: len(vector)}
}

// Valid reports whether Dimensions matches the actual vector length.
func (e Embedding) Valid() bool {
	return e.Dimensions == len(e.Vector)
}
