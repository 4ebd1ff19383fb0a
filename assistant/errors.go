package assistant

import "errors"

var (
	// ErrRetrieverRequired is returned when an Assistant is built without a retriever.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrGeneratorRequired is returned when an Assistant is built without a generator.
	ErrGeneratorRequired = errors.New("generator is required")
)
