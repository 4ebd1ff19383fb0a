package ingestion

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mediqa/mediqa/core"
)

// maxRecordSize bounds a single JSONL line. Chunk texts are a few hundred
// tokens; 1 MiB leaves generous headroom.
const maxRecordSize = 1 << 20

// chunkRecord is the on-disk JSONL shape of one corpus chunk.
type chunkRecord struct {
	Filename      string   `json:"filename"`
	TopicTitle    string   `json:"topic_title"`
	Section       string   `json:"section"`
	ChunkId       int      `json:"chunk_id"`
	Text          string   `json:"text"`
	Sources       []string `json:"sources"`
	PublishedYear int      `json:"published_year"`
	Region        []string `json:"region"`
}

// ReadChunkRecords parses line-delimited JSON chunk records. Malformed or
// invalid lines are logged and skipped so one bad record never sinks a
// corpus load; only a read failure on the underlying stream is an error.
func ReadChunkRecords(r io.Reader) ([]*core.Chunk, error) {
	logger := slog.Default().With("component", "ingestion")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	var chunks []*core.Chunk
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var record chunkRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			logger.Warn("skipping malformed chunk record", "line", line, "error", err)
			continue
		}

		chunk := &core.Chunk{
			Filename:      record.Filename,
			TopicTitle:    record.TopicTitle,
			Section:       record.Section,
			ChunkId:       record.ChunkId,
			Text:          record.Text,
			Sources:       record.Sources,
			PublishedYear: record.PublishedYear,
			Region:        record.Region,
		}
		if err := core.ValidateChunk(chunk); err != nil {
			logger.Warn("skipping invalid chunk record", "line", line, "error", err)
			continue
		}
		chunks = append(chunks, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunk records: %w", err)
	}
	return chunks, nil
}
