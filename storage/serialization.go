// Copyright 2025 Poiesic Systems
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
	"fmt"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/coursegraph/core"
)

// MUS serializers for stored records. Written by hand rather than generated;
// field order is part of the on-disk format and must not change.
var (
	vectorSer   = ord.NewSliceSer[float32](raw.Float32)
	chaptersSer = ord.NewMapSer[string, core.ChapterContent](ord.String, chapterContentSer)
)

var chapterContentSer = chapterContentSerT{}

type chapterContentSerT struct{}

var _ mus.Serializer[core.ChapterContent] = chapterContentSerT{}

func (chapterContentSerT) Marshal(c core.ChapterContent, bs []byte) (n int) {
	n = ord.String.Marshal(c.Definition, bs)
	n += ord.String.Marshal(c.Example, bs[n:])
	return
}

func (chapterContentSerT) Unmarshal(bs []byte) (c core.ChapterContent, n int, err error) {
	c.Definition, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	c.Example, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (chapterContentSerT) Size(c core.ChapterContent) (size int) {
	return ord.String.Size(c.Definition) + ord.String.Size(c.Example)
}

func (chapterContentSerT) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

var conceptSer = conceptSerT{}

type conceptSerT struct{}

var _ mus.Serializer[core.Concept] = conceptSerT{}

func (conceptSerT) Marshal(c core.Concept, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(c.Id), bs)
	n += ord.String.Marshal(c.Name, bs[n:])
	n += ord.String.Marshal(c.Definition, bs[n:])
	n += ord.String.Marshal(c.Example, bs[n:])
	n += varint.Int.Marshal(int(c.SourceType), bs[n:])
	n += raw.Float32.Marshal(c.CredibilityWeight, bs[n:])
	n += vectorSer.Marshal(c.Vector, bs[n:])
	n += chaptersSer.Marshal(c.Chapters, bs[n:])
	n += varint.Int64.Marshal(c.InsertedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(c.UpdatedAt.UnixMicro(), bs[n:])
	return
}

func (conceptSerT) Unmarshal(bs []byte) (c core.Concept, n int, err error) {
	var (
		n1         int
		id         uint64
		sourceType int
		inserted   int64
		updated    int64
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Id = core.ID(id)
	c.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Definition, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Example, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	sourceType, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.SourceType = core.SourceType(sourceType)
	c.CredibilityWeight, n1, err = raw.Float32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Vector, n1, err = vectorSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if len(c.Vector) == 0 {
		c.Vector = nil
	}
	c.Chapters, n1, err = chaptersSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if len(c.Chapters) == 0 {
		c.Chapters = nil
	}
	inserted, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.InsertedAt = time.UnixMicro(inserted).UTC()
	updated, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.UpdatedAt = time.UnixMicro(updated).UTC()
	return
}

func (conceptSerT) Size(c core.Concept) (size int) {
	size = varint.Uint64.Size(uint64(c.Id))
	size += ord.String.Size(c.Name)
	size += ord.String.Size(c.Definition)
	size += ord.String.Size(c.Example)
	size += varint.Int.Size(int(c.SourceType))
	size += raw.Float32.Size(c.CredibilityWeight)
	size += vectorSer.Size(c.Vector)
	size += chaptersSer.Size(c.Chapters)
	size += varint.Int64.Size(c.InsertedAt.UnixMicro())
	size += varint.Int64.Size(c.UpdatedAt.UnixMicro())
	return
}

func (conceptSerT) Skip(bs []byte) (n int, err error) {
	var n1 int
	skippers := []func([]byte) (int, error){
		varint.Uint64.Skip,
		ord.String.Skip,
		ord.String.Skip,
		ord.String.Skip,
		varint.Int.Skip,
		raw.Float32.Skip,
		vectorSer.Skip,
		chaptersSer.Skip,
		varint.Int64.Skip,
		varint.Int64.Skip,
	}
	for _, skip := range skippers {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

var indexMetaSer = indexMetaSerT{}

type indexMetaSerT struct{}

var _ mus.Serializer[VectorIndexMeta] = indexMetaSerT{}

func (indexMetaSerT) Marshal(m VectorIndexMeta, bs []byte) (n int) {
	n = ord.String.Marshal(m.Model, bs)
	n += varint.Int.Marshal(m.Dimensions, bs[n:])
	n += varint.Int64.Marshal(m.BuiltAt.UnixMicro(), bs[n:])
	return
}

func (indexMetaSerT) Unmarshal(bs []byte) (m VectorIndexMeta, n int, err error) {
	var (
		n1      int
		builtAt int64
	)
	m.Model, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	m.Dimensions, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	builtAt, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.BuiltAt = time.UnixMicro(builtAt).UTC()
	return
}

func (indexMetaSerT) Size(m VectorIndexMeta) (size int) {
	size = ord.String.Size(m.Model)
	size += varint.Int.Size(m.Dimensions)
	size += varint.Int64.Size(m.BuiltAt.UnixMicro())
	return
}

func (indexMetaSerT) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
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
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return core.ID(id), nil
}

// MarshalConcept serializes a Concept to bytes.
func MarshalConcept(concept *core.Concept) []byte {
	buf := make([]byte, conceptSer.Size(*concept))
	conceptSer.Marshal(*concept, buf)
	return buf
}

// UnmarshalConcept deserializes a Concept from bytes.
func UnmarshalConcept(data []byte) (*core.Concept, error) {
	concept, _, err := conceptSer.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &concept, nil
}

// MarshalIndexMeta serializes a VectorIndexMeta to bytes.
func MarshalIndexMeta(meta *VectorIndexMeta) []byte {
	buf := make([]byte, indexMetaSer.Size(*meta))
	indexMetaSer.Marshal(*meta, buf)
	return buf
}

// UnmarshalIndexMeta deserializes a VectorIndexMeta from bytes.
func UnmarshalIndexMeta(data []byte) (*VectorIndexMeta, error) {
	meta, _, err := indexMetaSer.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &meta, nil
}
