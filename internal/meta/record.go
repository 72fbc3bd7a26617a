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

// Package meta implements the File Metadata Table (C6) and the flat
// namespace's directory semantics (C7) described in spec.md §4.5.
package meta

import (
	"encoding/binary"
	"os"

	"github.com/hpc-scratch/ramfs/internal/addr"
)

// recordLayout is the fixed byte layout of one File Metadata Record:
//
//	size       uint64 (8 bytes)
//	chunks     uint32 (4 bytes)
//	isDir      byte   (1 byte)
//	flock      byte   (1 byte, advisory, reserved — spec.md §3, §5)
//	chunkMeta  [maxChunksPerFile]{tier byte, id uint32} (5 bytes each)
const (
	offSize   = 0
	offChunks = 8
	offIsDir  = 12
	offFlock  = 13
	offMeta   = 14

	chunkRefSize = 5
)

// RecordSize is the on-disk width of one record for the given per-file
// chunk-slot cap (spec.md §3's MAX_CHUNKS_PER_FILE).
func RecordSize(maxChunksPerFile int) int {
	return offMeta + maxChunksPerFile*chunkRefSize
}

// Record is a view over one file's RecordSize()-byte region within the
// filemeta_table. It owns no memory; all state lives in the shared buffer.
type Record struct {
	buf              []byte
	maxChunksPerFile int
}

func newRecord(buf []byte, maxChunksPerFile int) Record {
	return Record{buf: buf[:RecordSize(maxChunksPerFile)], maxChunksPerFile: maxChunksPerFile}
}

func (r Record) Size() int64 { return int64(binary.LittleEndian.Uint64(r.buf[offSize : offSize+8])) }

// SetSize updates the logical file length (spec.md §4.6: only written after
// the chunk count is successfully advanced, never before — callers enforce
// ordering, not this accessor).
func (r Record) SetSize(v int64) {
	binary.LittleEndian.PutUint64(r.buf[offSize:offSize+8], uint64(v))
}

func (r Record) Chunks() int { return int(binary.LittleEndian.Uint32(r.buf[offChunks : offChunks+4])) }

// SetChunks updates the high-water logical chunk count.
func (r Record) SetChunks(v int) {
	binary.LittleEndian.PutUint32(r.buf[offChunks:offChunks+4], uint32(v))
}

func (r Record) IsDir() bool { return r.buf[offIsDir] != 0 }

func (r Record) SetIsDir(v bool) {
	if v {
		r.buf[offIsDir] = 1
	} else {
		r.buf[offIsDir] = 0
	}
}

// MaxChunksPerFile reports this record's configured per-file chunk-slot cap.
func (r Record) MaxChunksPerFile() int { return r.maxChunksPerFile }

func (r Record) chunkOff(i int) int { return offMeta + i*chunkRefSize }

// ChunkRef returns the logical chunk slot i's {tier, physical_id} pair. i
// must be < Chunks() for the value to be meaningful (spec.md §3: "for i >=
// chunks, chunk_meta[i] is ignored").
func (r Record) ChunkRef(i int) addr.ChunkRef {
	off := r.chunkOff(i)
	return addr.ChunkRef{
		Tier: addr.Tier(r.buf[off]),
		ID:   binary.LittleEndian.Uint32(r.buf[off+1 : off+5]),
	}
}

// SetChunkRef assigns logical chunk slot i's {tier, physical_id} pair.
func (r Record) SetChunkRef(i int, ref addr.ChunkRef) {
	off := r.chunkOff(i)
	r.buf[off] = byte(ref.Tier)
	binary.LittleEndian.PutUint32(r.buf[off+1:off+5], ref.ID)
}

// clear resets a record to the empty ALLOCATED state produced by
// add_new_file: zero size, zero chunks, not a directory. It does not touch
// chunkMeta slots, which are ignored until Chunks() grows past them
// (spec.md §3 invariant).
func (r Record) clear() {
	r.SetSize(0)
	r.SetChunks(0)
	r.SetIsDir(false)
	r.buf[offFlock] = 0
}

// Mode reports the best-effort os.FileMode for stat family calls: a regular
// file or directory bit plus a fixed permission pattern, matching the
// original CRUISE implementation's always-0644/0755 stat fill rather than
// an all-zero mode (SPEC_FULL.md §9.1).
func (r Record) Mode() os.FileMode {
	if r.IsDir() {
		return os.ModeDir | 0o755
	}
	return 0o644
}
