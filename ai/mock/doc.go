// Package mock provides deterministic test doubles for the ai package
// interfaces. The mock embedder derives unit vectors from a text hash so
// retrieval tests are repeatable without an embedding server; the mock chat
// model records prompts and returns injected replies.
package mock
