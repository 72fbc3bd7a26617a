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

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/hpc-scratch/ramfs/internal/errs"
)

// Spillover is the local-disk-backed chunk store (C4): positional read/write
// against a preallocated backing file, indexed by physical_id*CHUNK_SIZE.
// physical_id here is the spillover-local index in [0, maxChunks), as stored
// in an addr.ChunkRef whose Tier is Spillover; no MAX_CHUNKS offset is added
// or subtracted anywhere.
type Spillover struct {
	f         *os.File
	chunkSize int
	maxChunks int
}

// OpenSpillover creates the backing file at path with O_EXCL on first use,
// preallocating it to maxChunks*chunkSize bytes; if it already exists, it is
// attached without re-truncating (spec.md §4.3, §6).
func OpenSpillover(path string, maxChunks, chunkSize int) (*Spillover, error) {
	size := int64(maxChunks) * int64(chunkSize)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if os.IsExist(err) {
		f, err = os.OpenFile(path, os.O_RDWR, 0o600)
		if err != nil {
			return nil, fmt.Errorf("ramfs: attach spillover file %s: %w", path, err)
		}
		return &Spillover{f: f, chunkSize: chunkSize, maxChunks: maxChunks}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ramfs: create spillover file %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("ramfs: preallocate spillover file %s: %w", path, err)
	}
	return &Spillover{f: f, chunkSize: chunkSize, maxChunks: maxChunks}, nil
}

func (s *Spillover) ChunkSize() int { return s.chunkSize }

func (s *Spillover) Close() error { return s.f.Close() }

func (s *Spillover) bounds(physID uint32, offset, count int) (int64, error) {
	if offset < 0 || count < 0 || offset+count > s.chunkSize {
		return 0, errs.Inval
	}
	if int(physID) >= s.maxChunks {
		return 0, errs.IO
	}
	return int64(physID)*int64(s.chunkSize) + int64(offset), nil
}

func (s *Spillover) Read(physID uint32, offset int, buf []byte) (int, error) {
	at, err := s.bounds(physID, offset, len(buf))
	if err != nil {
		return 0, err
	}
	n, err := unix.Pread(int(s.f.Fd()), buf, at)
	if err != nil {
		return n, errs.IO
	}
	return n, nil
}

func (s *Spillover) Write(physID uint32, offset int, buf []byte) (int, error) {
	at, err := s.bounds(physID, offset, len(buf))
	if err != nil {
		return 0, err
	}
	n, err := unix.Pwrite(int(s.f.Fd()), buf, at)
	if err != nil {
		return n, errs.IO
	}
	return n, nil
}
