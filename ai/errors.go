package ai

import "errors"

var (
	// ErrMalformedResponse indicates the model replied but the response was
	// missing the expected fields (no choices, empty content).
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrMissingAPIKey indicates the chat model credential was not configured.
	// This is a fatal configuration error, surfaced at construction time.
	ErrMissingAPIKey = errors.New("ai config: APIKey is required for the chat model")
)
