// Package ingestion builds the searchable corpus: it reads line-delimited
// JSON chunk records, embeds their text concurrently in batches, and stores
// chunk and vector together as one composite record. Bad input lines are
// skipped rather than fatal, and a fresh index is a re-run away.
package ingestion
