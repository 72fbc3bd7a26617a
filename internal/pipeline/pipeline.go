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

// Package pipeline implements the File I/O Pipeline (C8): read, write,
// extend, truncate, and unlink over the chunk-addressing abstraction
// (spec.md §4.6).
package pipeline

import (
	"github.com/hpc-scratch/ramfs/internal/addr"
	"github.com/hpc-scratch/ramfs/internal/chunkstore"
	"github.com/hpc-scratch/ramfs/internal/errs"
	"github.com/hpc-scratch/ramfs/internal/meta"
	"github.com/hpc-scratch/ramfs/internal/metrics"
	"github.com/hpc-scratch/ramfs/internal/shm"
	"github.com/hpc-scratch/ramfs/internal/stack"
)

// Pipeline ties the chunk geometry, the two physical stores, their free-list
// stacks, and the file metadata table together into the read/write/extend/
// truncate/unlink/size operations spec.md §4.6 specifies. One Pipeline is
// shared by every descriptor in an Engine.
type Pipeline struct {
	geo addr.Geometry

	memory    chunkstore.Store // nil if the memory tier is disabled
	spillover chunkstore.Store // nil if spillover is disabled

	memoryStack    stack.Stack
	spilloverStack stack.Stack

	mu    shm.Mutex
	table *meta.Table
	metr  *metrics.Registry // nil in tests that don't care about observability
}

// New builds a Pipeline from its collaborators. memory/spillover may be nil
// to model a tier being disabled at mount time (spec.md §6 USE_SPILLOVER,
// and the memory tier's implicit always-on default). metr may be nil; every
// gauge update guards against that so callers that don't wire a registry
// (most pipeline tests) don't need a throwaway one.
func New(geo addr.Geometry, memory, spillover chunkstore.Store, memoryStack, spilloverStack stack.Stack, mu shm.Mutex, table *meta.Table, metr *metrics.Registry) *Pipeline {
	return &Pipeline{
		geo:            geo,
		memory:         memory,
		spillover:      spillover,
		memoryStack:    memoryStack,
		spilloverStack: spilloverStack,
		mu:             mu,
		table:          table,
		metr:           metr,
	}
}

// Size returns the fid's logical length.
func (p *Pipeline) Size(fid int) int64 {
	return p.table.Record(fid).Size()
}

// allocateOne pops a physical chunk, preferring memory and falling back to
// spillover on exhaustion, per spec.md §4.6's allocation policy. Returns
// errs.NoSpc if no tier can supply one.
func (p *Pipeline) allocateOne() (addr.ChunkRef, error) {
	if p.memory != nil {
		p.mu.Lock()
		id := p.memoryStack.Pop()
		p.mu.Unlock()
		if id != stack.Empty {
			if p.metr != nil {
				p.metr.ChunksInUse.Inc()
			}
			return addr.ChunkRef{Tier: addr.Memory, ID: uint32(id)}, nil
		}
	}
	if p.spillover != nil {
		p.mu.Lock()
		id := p.spilloverStack.Pop()
		p.mu.Unlock()
		if id != stack.Empty {
			if p.metr != nil {
				p.metr.SpilloverChunksInUse.Inc()
			}
			return addr.ChunkRef{Tier: addr.Spillover, ID: uint32(id)}, nil
		}
	}
	if p.metr != nil {
		p.metr.ENOSPCTotal.Inc()
	}
	return addr.ChunkRef{}, errs.NoSpc
}

func (p *Pipeline) freeOne(ref addr.ChunkRef) {
	switch ref.Tier {
	case addr.Memory:
		p.mu.Lock()
		p.memoryStack.Push(int32(ref.ID))
		p.mu.Unlock()
		if p.metr != nil {
			p.metr.ChunksInUse.Dec()
		}
	case addr.Spillover:
		// SPEC_FULL.md §9: the source never returns spillover IDs to their
		// free stack; that is a bug, fixed here.
		p.mu.Lock()
		p.spilloverStack.Push(int32(ref.ID))
		p.mu.Unlock()
		if p.metr != nil {
			p.metr.SpilloverChunksInUse.Dec()
		}
	}
}

func (p *Pipeline) storeFor(tier addr.Tier) chunkstore.Store {
	if tier == addr.Memory {
		return p.memory
	}
	return p.spillover
}

// Extend grows fid's reservation until chunks*CHUNK_SIZE >= newLength, then
// (only on full success) raises size to newLength (spec.md §4.6, §7 — a
// failed extend keeps already-allocated chunks but leaves size unchanged).
func (p *Pipeline) Extend(fid int, newLength int64) error {
	rec := p.table.Record(fid)
	if newLength <= rec.Size() {
		return nil
	}

	wantChunks := p.geo.LogicalChunkCount(newLength)
	maxPerFile := rec.MaxChunksPerFile()

	cur := rec.Chunks()
	for cur < wantChunks {
		if cur >= maxPerFile {
			return errs.NoSpc
		}
		ref, err := p.allocateOne()
		if err != nil {
			return err
		}
		rec.SetChunkRef(cur, ref)
		cur++
		rec.SetChunks(cur)
	}

	rec.SetSize(newLength)
	return nil
}

// Truncate frees chunks from the tail while chunks > keep, then sets size.
// It never reallocates: raising length via Truncate does not populate
// chunks (spec.md §4.6, documented divergence from POSIX, SPEC_FULL.md §9).
func (p *Pipeline) Truncate(fid int, length int64) error {
	if length < 0 {
		return errs.Inval
	}
	rec := p.table.Record(fid)
	keep := p.geo.LogicalChunkCount(length)

	cur := rec.Chunks()
	for cur > keep {
		cur--
		ref := rec.ChunkRef(cur)
		p.freeOne(ref)
		rec.SetChunks(cur)
	}

	rec.SetSize(length)
	return nil
}

// Unlink frees every chunk (Truncate to zero); releasing the fid itself to
// the filename table is the caller's responsibility (spec.md §4.6).
func (p *Pipeline) Unlink(fid int) error {
	return p.Truncate(fid, 0)
}

// Read clips count so pos+count <= size, then walks logical chunks issuing
// per-chunk reads bounded by the chunk tail, returning bytes actually
// copied (spec.md §4.6).
func (p *Pipeline) Read(fid int, pos int64, buf []byte) (int, error) {
	rec := p.table.Record(fid)
	size := rec.Size()
	if pos >= size {
		return 0, nil
	}
	count := int64(len(buf))
	if pos+count > size {
		count = size - pos
	}

	return p.walk(rec, pos, buf[:count], func(store chunkstore.Store, physID uint32, chunkOff int, dst []byte) (int, error) {
		return store.Read(physID, chunkOff, dst)
	})
}

// Write extends fid to cover pos+len(buf), then walks logical chunks
// issuing per-chunk writes, returning len(buf) on success (spec.md §4.6).
func (p *Pipeline) Write(fid int, pos int64, buf []byte) (int, error) {
	if err := p.Extend(fid, pos+int64(len(buf))); err != nil {
		return 0, err
	}
	rec := p.table.Record(fid)
	return p.walk(rec, pos, buf, func(store chunkstore.Store, physID uint32, chunkOff int, src []byte) (int, error) {
		return store.Write(physID, chunkOff, src)
	})
}

// walk implements the chunk loop invariant from spec.md §4.6: at the start
// of each iteration remaining = count - processed, chunk_offset = 0 except
// on the first iteration, num = min(remaining, CHUNK_SIZE).
func (p *Pipeline) walk(rec interface {
	ChunkRef(int) addr.ChunkRef
}, pos int64, buf []byte, op func(chunkstore.Store, uint32, int, []byte) (int, error)) (int, error) {
	processed := 0
	remaining := len(buf)
	logicalChunk, chunkOffset := p.geo.Split(pos)

	for remaining > 0 {
		num := p.geo.ChunkSize - chunkOffset
		if num > remaining {
			num = remaining
		}

		ref := rec.ChunkRef(logicalChunk)
		tier, physID, err := addr.Dispatch(ref)
		if err != nil {
			return processed, err
		}
		store := p.storeFor(tier)
		if store == nil {
			return processed, errs.IO
		}

		n, err := op(store, physID, chunkOffset, buf[processed:processed+num])
		processed += n
		if err != nil {
			return processed, err
		}
		if n < num {
			return processed, errs.IO
		}

		remaining -= num
		logicalChunk++
		chunkOffset = 0
	}

	return processed, nil
}
