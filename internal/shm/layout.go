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

// Package shm manages the superblock: one contiguous region of process-shared
// memory holding every free-list stack, the filename and file-metadata
// tables, and (when the memory tier is enabled) the chunk pool itself.
// Layout is computed deterministically from configuration so every process
// that attaches to the same segment recomputes identical offsets (spec.md
// §3, §4.2).
package shm

import "github.com/hpc-scratch/ramfs/internal/stack"

// filenameEntrySize is 1 in-use byte followed by the inline name buffer.
func filenameEntrySize(maxFilename int) int { return 1 + maxFilename }

// chunkRefSize is the on-disk width of one {tier, physical_id} pair.
const chunkRefSize = 1 + 4

// filemetaRecordSize is the on-disk width of one File Metadata Record:
// size(8) + chunks(4) + isDir(1) + flock(1) + chunkMeta[maxChunksPerFile].
func filemetaRecordSize(maxChunksPerFile int) int {
	return 8 + 4 + 1 + 1 + maxChunksPerFile*chunkRefSize
}

// Dims are the size-determining configuration constants from spec.md §6:
// MAX_FILES, MAX_FILENAME, CHUNK_SIZE, MAX_CHUNKS, MAX_SPILL_CHUNKS, plus
// the per-file chunk-slot cap and which storage tiers are enabled. They are
// fixed for the lifetime of a mounted superblock (spec.md §4.2 invariant).
type Dims struct {
	MaxFiles         int
	MaxFilename      int
	ChunkSize        int
	MaxChunks        int
	MaxChunksPerFile int
	MaxSpillChunks   int
	UseMemory        bool
	UseSpillover     bool
}

// Layout is the result of laying Dims out into the superblock, one region
// after another as drawn in spec.md §3, preceded by the MutexSize-byte
// SpinMutex word at offset 0:
//
//	[ free_fid_stack ][ filename_table ][ filemeta_table ]
//	[ free_chunk_stack ][ free_spillchunk_stack? ][ chunk_pool? ]
type Layout struct {
	Dims Dims

	MutexOff int // MutexSize bytes reserved for the shared-mode SpinMutex word

	FreeFidStackOff int
	FreeFidStackLen int

	FilenameTableOff int
	FilenameEntryLen int
	FilenameTableLen int

	FilemetaTableOff int
	FilemetaRecordLen int
	FilemetaTableLen int

	FreeChunkStackOff int
	FreeChunkStackLen int

	FreeSpillStackOff int // 0 if spillover disabled
	FreeSpillStackLen int

	ChunkPoolOff int // 0 if memory tier disabled
	ChunkPoolLen int

	Total int
}

// NewLayout computes B, the total superblock size, and every sub-region
// offset from dims. The computation is pure and deterministic: two
// processes given the same Dims always agree (spec.md §4.2).
func NewLayout(dims Dims) Layout {
	l := Layout{Dims: dims}
	off := 0

	l.MutexOff = off
	off += MutexSize

	l.FreeFidStackOff = off
	l.FreeFidStackLen = stack.Size(dims.MaxFiles)
	off += l.FreeFidStackLen

	l.FilenameTableOff = off
	l.FilenameEntryLen = filenameEntrySize(dims.MaxFilename)
	l.FilenameTableLen = l.FilenameEntryLen * dims.MaxFiles
	off += l.FilenameTableLen

	l.FilemetaTableOff = off
	l.FilemetaRecordLen = filemetaRecordSize(dims.MaxChunksPerFile)
	l.FilemetaTableLen = l.FilemetaRecordLen * dims.MaxFiles
	off += l.FilemetaTableLen

	// The memory free-chunk stack is always present in the layout (it has
	// no '?' in spec.md §3's diagram); when the memory tier is disabled it
	// is simply sized to zero capacity so it never yields an ID.
	l.FreeChunkStackOff = off
	chunkStackCap := dims.MaxChunks
	if !dims.UseMemory {
		chunkStackCap = 0
	}
	l.FreeChunkStackLen = stack.Size(chunkStackCap)
	off += l.FreeChunkStackLen

	if dims.UseSpillover {
		l.FreeSpillStackOff = off
		l.FreeSpillStackLen = stack.Size(dims.MaxSpillChunks)
		off += l.FreeSpillStackLen
	}

	if dims.UseMemory {
		l.ChunkPoolOff = off
		l.ChunkPoolLen = dims.MaxChunks * dims.ChunkSize
		off += l.ChunkPoolLen
	}

	l.Total = off
	return l
}
