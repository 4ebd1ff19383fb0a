// Package websearch provides a small Google Custom Search client used as a
// fallback context source when local retrieval is weak or the corpus is
// silent on a question. Search never returns an error; failures degrade to
// an empty result so the answering path stays on the happy path.
package websearch
