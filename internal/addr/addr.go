// Copyright 2026 The Ramfs Authors.
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

// Package addr implements chunk addressing (C5): translating a logical
// (file, logical_chunk, offset) into a physical dispatch on either the
// memory or spillover store (spec.md §4.4).
package addr

import (
	"math/bits"

	"github.com/hpc-scratch/ramfs/internal/errs"
)

// Tier discriminates which physical store a ChunkRef's ID refers to. This
// collapses the source's redundant location_tag + offset-encoded physical
// ID into one tagged value (spec.md §9 DESIGN NOTES, REDESIGN FLAGS).
type Tier uint8

const (
	Unallocated Tier = iota
	Memory
	Spillover
)

// ChunkRef is one file's per-logical-chunk record (spec.md §3's
// chunk_meta[i]): which tier owns the chunk and its index within that
// tier's own ID space.
type ChunkRef struct {
	Tier Tier
	ID   uint32
}

// Geometry precomputes the shift/mask pair used to split a byte offset into
// (logical_chunk, chunk_offset) without a division on the hot path. chunkBits
// must be log2(chunkSize); chunkSize must therefore be a power of two
// (spec.md §4.4: "widths must be chosen so the shift does not overflow").
type Geometry struct {
	ChunkSize int
	chunkBits uint
	mask      int64
}

// NewGeometry validates chunkSize is a power of two and returns its Geometry.
func NewGeometry(chunkSize int) (Geometry, error) {
	if chunkSize <= 0 || chunkSize&(chunkSize-1) != 0 {
		return Geometry{}, errs.Inval
	}
	bitsLen := bits.Len(uint(chunkSize)) - 1
	return Geometry{
		ChunkSize: chunkSize,
		chunkBits: uint(bitsLen),
		mask:      int64(chunkSize - 1),
	}, nil
}

// Split returns the logical chunk index and the in-chunk offset for a byte
// offset into a file.
func (g Geometry) Split(offset int64) (logicalChunk int, chunkOffset int) {
	return int(offset >> g.chunkBits), int(offset & g.mask)
}

// LogicalChunkCount returns the number of logical chunks needed to cover
// length bytes (spec.md §4.6's "keep = ceil(length / CHUNK_SIZE)").
func (g Geometry) LogicalChunkCount(length int64) int {
	if length == 0 {
		return 0
	}
	return int((length + int64(g.ChunkSize) - 1) >> g.chunkBits)
}

// Dispatch resolves a single ChunkRef into a physical location. It returns
// errs.IO if the ref is Unallocated, which spec.md §4.4 calls "a pipeline
// error, never a sparse hole" — the pipeline must never ask addr to
// dispatch a chunk it has not allocated.
func Dispatch(ref ChunkRef) (Tier, uint32, error) {
	switch ref.Tier {
	case Memory, Spillover:
		return ref.Tier, ref.ID, nil
	default:
		return Unallocated, 0, errs.IO
	}
}
