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

package chunkstore

import "github.com/hpc-scratch/ramfs/internal/errs"

// Memory is the memory-backed chunk store (C3): a byte copy from/to
// chunkPoolBase + physical_id*CHUNK_SIZE + offset, all within the
// superblock segment itself.
type Memory struct {
	pool      []byte // the chunk_pool sub-region of the superblock
	chunkSize int
}

// NewMemory wraps pool, which must be exactly maxChunks*chunkSize bytes (the
// ChunkPoolLen computed by internal/shm.Layout).
func NewMemory(pool []byte, chunkSize int) *Memory {
	return &Memory{pool: pool, chunkSize: chunkSize}
}

func (m *Memory) ChunkSize() int { return m.chunkSize }

func (m *Memory) bounds(physID uint32, offset, count int) (int, int, error) {
	if offset < 0 || count < 0 || offset+count > m.chunkSize {
		return 0, 0, errs.Inval
	}
	base := int(physID) * m.chunkSize
	if base+m.chunkSize > len(m.pool) {
		return 0, 0, errs.IO
	}
	return base + offset, base + offset + count, nil
}

func (m *Memory) Read(physID uint32, offset int, buf []byte) (int, error) {
	start, end, err := m.bounds(physID, offset, len(buf))
	if err != nil {
		return 0, err
	}
	return copy(buf, m.pool[start:end]), nil
}

func (m *Memory) Write(physID uint32, offset int, buf []byte) (int, error) {
	start, end, err := m.bounds(physID, offset, len(buf))
	if err != nil {
		return 0, err
	}
	return copy(m.pool[start:end], buf), nil
}
