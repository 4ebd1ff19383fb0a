package core

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from content-based hashing so repeated ingestion of the
// same chunk produces the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceKind identifies which evidence source an answer was grounded on.
type SourceKind int

const (
	// SourceRAG means the answer was grounded on the local vector index.
	SourceRAG SourceKind = iota + 1
	// SourceWebSearch means web search results contributed to the answer.
	SourceWebSearch
)

// String returns the human-readable label for the source kind.
func (s SourceKind) String() string {
	switch s {
	case SourceRAG:
		return "RAG"
	case SourceWebSearch:
		return "Web Search"
	default:
		return "Unknown"
	}
}

// ResponseMode is a caller-selected verbosity directive for generated answers.
type ResponseMode int

const (
	// ModeConcise targets roughly 80-120 words, facts only.
	ModeConcise ResponseMode = iota + 1
	// ModeDetailed targets roughly 200-300 words with cause/treatment/prevention framing.
	ModeDetailed
)

// String returns the mode name.
func (m ResponseMode) String() string {
	switch m {
	case ModeConcise:
		return "Concise"
	case ModeDetailed:
		return "Detailed"
	default:
		return "Unknown"
	}
}

// ParseResponseMode parses a mode name, case-insensitively.
// Unrecognized values default to ModeConcise.
func ParseResponseMode(s string) ResponseMode {
	if strings.EqualFold(strings.TrimSpace(s), "detailed") {
		return ModeDetailed
	}
	return ModeConcise
}

// Chunk is the atomic unit of retrieval: a bounded span of source-document
// text with provenance metadata and its embedding vector. Records are
// immutable after ingestion; the vector is persisted together with the chunk
// identity so the index and the chunk store cannot drift out of sync.
type Chunk struct {
	Id            ID
	Filename      string
	TopicTitle    string
	Section       string
	ChunkId       int // Unique within Filename
	Text          string
	Sources       []string // Provenance labels, e.g. "WHO", "CDC"
	PublishedYear int
	Region        []string
	Vector        []float32 // L2-normalized embedding (populated during ingestion)
	InsertedAt    time.Time
}

// ContentKey returns the string the chunk's deterministic ID is derived from.
func (c *Chunk) ContentKey() string {
	return c.Filename + ":" + strconv.Itoa(c.ChunkId)
}

// ScoredChunk pairs a retrieved chunk with its squared L2 distance to the query.
type ScoredChunk struct {
	Chunk    *Chunk
	Distance float32
}

// RetrievalResult is the outcome of a single retrieval pass.
// Sources are deduplicated in first-occurrence order so identical queries
// against an unchanged index produce identical results.
type RetrievalResult struct {
	Chunks      []ScoredChunk
	Context     string
	Sources     []string
	AvgDistance float64
	Accepted    bool
}

// Answer is the final product of the answering pipeline.
type Answer struct {
	Text       string
	Sources    []string
	SourceUsed SourceKind
}
