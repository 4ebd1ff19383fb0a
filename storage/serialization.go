// Copyright 2026 MediQA Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"time"

	"github.com/mediqa/mediqa/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Element serializers for the repeated chunk fields.
var (
	stringSliceMUS  = ord.NewSliceSer[string](ord.String)
	float32SliceMUS = ord.NewSliceSer[float32](raw.Float32)
)

// chunkSer is the hand-written MUS serializer for core.Chunk.
// Field order is fixed; timestamps are encoded as Unix microseconds.
type chunkSer struct{}

// ChunkMUS serializes core.Chunk values in MUS format.
var ChunkMUS = chunkSer{}

func (chunkSer) Marshal(c core.Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(c.Id), bs)
	n += ord.String.Marshal(c.Filename, bs[n:])
	n += ord.String.Marshal(c.TopicTitle, bs[n:])
	n += ord.String.Marshal(c.Section, bs[n:])
	n += varint.Int.Marshal(c.ChunkId, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += stringSliceMUS.Marshal(c.Sources, bs[n:])
	n += varint.Int.Marshal(c.PublishedYear, bs[n:])
	n += stringSliceMUS.Marshal(c.Region, bs[n:])
	n += float32SliceMUS.Marshal(c.Vector, bs[n:])
	n += varint.Int64.Marshal(c.InsertedAt.UnixMicro(), bs[n:])
	return n
}

func (chunkSer) Unmarshal(bs []byte) (c core.Chunk, n int, err error) {
	var n1 int

	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Id = core.ID(id)

	if c.Filename, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.TopicTitle, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Section, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.ChunkId, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Sources, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.PublishedYear, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Region, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Vector, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1

	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	c.InsertedAt = time.UnixMicro(micros).UTC()

	return
}

func (chunkSer) Size(c core.Chunk) (size int) {
	size = varint.Uint64.Size(uint64(c.Id))
	size += ord.String.Size(c.Filename)
	size += ord.String.Size(c.TopicTitle)
	size += ord.String.Size(c.Section)
	size += varint.Int.Size(c.ChunkId)
	size += ord.String.Size(c.Text)
	size += stringSliceMUS.Size(c.Sources)
	size += varint.Int.Size(c.PublishedYear)
	size += stringSliceMUS.Size(c.Region)
	size += float32SliceMUS.Size(c.Vector)
	size += varint.Int64.Size(c.InsertedAt.UnixMicro())
	return size
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	return core.ID(id), err
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, ChunkMUS.Size(*chunk))
	ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}
