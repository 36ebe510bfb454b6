package store

import "errors"

var (
	ErrEmbeddingFailed   = errors.New("embedding provider failed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
