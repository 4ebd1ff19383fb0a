package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a Pipeline is built without storage.
	ErrRepositoryRequired = errors.New("chunk repository is required")

	// ErrEmbedderRequired is returned when a Pipeline is built without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")
)
