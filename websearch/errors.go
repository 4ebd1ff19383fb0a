package websearch

import "errors"

var (
	// ErrAPIKeyRequired is returned when no Google API key is configured.
	ErrAPIKeyRequired = errors.New("google api key is required")

	// ErrEngineIDRequired is returned when no search engine ID is configured.
	ErrEngineIDRequired = errors.New("search engine id is required")
)
