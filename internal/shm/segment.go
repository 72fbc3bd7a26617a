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

package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Segment is the process-shared memory region backing a mounted superblock.
// Created returns whether this call is the one that had to initialize the
// region from scratch; an attaching process must never re-run Init logic
// (spec.md §4.2: "The attacher never re-initializes.").
type Segment struct {
	Bytes   []byte
	Created bool

	path string // "" in private mode
	f    *os.File
}

// Open creates or attaches the superblock segment of the given size.
//
// In shared (multi-owner) mode, path names a file under a shared-memory
// filesystem (conventionally /dev/shm) keyed by SUPERBLOCK_KEY+rank; the
// first process to create it with O_EXCL initializes the contents, later
// attachers just mmap it (spec.md §4.2, §6). In private (single-owner)
// mode, path is empty and an anonymous MAP_SHARED|MAP_ANONYMOUS region is
// used instead, which by construction is always freshly created.
func Open(path string, size int) (*Segment, error) {
	if path == "" {
		b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANON)
		if err != nil {
			return nil, fmt.Errorf("ramfs: anonymous shared mapping: %w", err)
		}
		return &Segment{Bytes: b, Created: true}, nil
	}

	created := true
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if os.IsExist(err) {
		created = false
		f, err = os.OpenFile(path, os.O_RDWR, 0o600)
	}
	if err != nil {
		return nil, fmt.Errorf("ramfs: open superblock segment %s: %w", path, err)
	}

	if created {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			os.Remove(path)
			return nil, fmt.Errorf("ramfs: preallocate superblock segment %s: %w", path, err)
		}
	}

	b, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ramfs: mmap superblock segment %s: %w", path, err)
	}

	return &Segment{Bytes: b, Created: created, path: path, f: f}, nil
}

// Close unmaps the segment. The engine never removes the backing file
// itself (spec.md §5: resources are released only at process exit, never
// explicitly torn down — consistent with the scratch-tier use case).
func (s *Segment) Close() error {
	if s.Bytes == nil {
		return nil
	}
	err := unix.Munmap(s.Bytes)
	s.Bytes = nil
	if s.f != nil {
		if cerr := s.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
