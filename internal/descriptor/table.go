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

// Package descriptor implements the Descriptor Table (C9): numeric handles
// binding (file, position) for open instances (spec.md §3, §4.7).
//
// Unlike the File Metadata Table, a descriptor's index is its own slot in
// this table, not the underlying file's fid — two independent opens of the
// same file get two independent positions (spec.md §8 scenario 6), even
// though both descriptors name the same fid.
package descriptor

import (
	"sync"

	"github.com/hpc-scratch/ramfs/internal/errs"
)

// Whence mirrors lseek's SEEK_SET/SEEK_CUR/SEEK_END (spec.md §4.7, §6).
type Whence int

const (
	SeekSet Whence = iota
	SeekCur
	SeekEnd
)

// entry is one open instance's mutable state.
type entry struct {
	inUse    bool
	fid      int
	position int64
	append   bool // O_APPEND: every write repositions to size first
}

// Table is a process-local pool of open-instance slots. It is deliberately
// not stored in the superblock: open/close state is per-process, unlike the
// file metadata it points at (spec.md §3 Ownership).
type Table struct {
	mu      sync.Mutex
	entries []entry
	free    []int
}

// New creates a descriptor table with capacity slots, matching the file
// table's capacity is typical but not required — a single file may be
// opened many times concurrently.
func New(capacity int) *Table {
	t := &Table{entries: make([]entry, capacity)}
	t.free = make([]int, capacity)
	for i := range t.free {
		t.free[i] = capacity - 1 - i
	}
	return t
}

// Open allocates a descriptor slot bound to fid, positioned at 0. If append
// is set, the slot is only marked; the repositioning to the file's size
// happens in the caller's write path (see IsAppend).
func (t *Table) Open(fid int, append bool) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.free) == 0 {
		return -1, errs.NoSpc
	}
	idx := t.free[len(t.free)-1]
	t.free = t.free[:len(t.free)-1]
	t.entries[idx] = entry{inUse: true, fid: fid, append: append}
	return idx, nil
}

// Close releases a descriptor slot. Unlike the source (DESIGN.md, Open
// Question resolution 6), this is not a no-op: the slot returns to the free
// pool.
func (t *Table) Close(d int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkLocked(d); err != nil {
		return err
	}
	t.entries[d] = entry{}
	t.free = append(t.free, d)
	return nil
}

func (t *Table) checkLocked(d int) error {
	if d < 0 || d >= len(t.entries) || !t.entries[d].inUse {
		return errs.BadF
	}
	return nil
}

// Fid returns the file bound to descriptor d.
func (t *Table) Fid(d int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkLocked(d); err != nil {
		return -1, err
	}
	return t.entries[d].fid, nil
}

// Position returns d's current offset.
func (t *Table) Position(d int) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkLocked(d); err != nil {
		return 0, err
	}
	return t.entries[d].position, nil
}

// Advance moves d's position forward by n bytes, as after a read or write.
// For an append-mode write the caller first calls SetPosition with the
// pre-write size and then Advance with the bytes written.
func (t *Table) Advance(d int, n int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkLocked(d); err != nil {
		return err
	}
	t.entries[d].position += n
	return nil
}

// SetPosition overwrites d's position outright (used by Write to reposition
// before an O_APPEND write; Seek updates the position itself).
func (t *Table) SetPosition(d int, pos int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkLocked(d); err != nil {
		return err
	}
	t.entries[d].position = pos
	return nil
}

// IsAppend reports whether d was opened with O_APPEND semantics.
func (t *Table) IsAppend(d int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkLocked(d); err != nil {
		return false, err
	}
	return t.entries[d].append, nil
}

// Seek implements lseek's SET/CUR/END semantics (spec.md §4.7); size is the
// file's current logical length, supplied by the caller since only the
// pipeline/meta layer knows it.
func (t *Table) Seek(d int, offset int64, whence Whence, size int64) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkLocked(d); err != nil {
		return 0, err
	}

	var base int64
	switch whence {
	case SeekSet:
		base = 0
	case SeekCur:
		base = t.entries[d].position
	case SeekEnd:
		base = size
	default:
		return 0, errs.Inval
	}

	newPos := base + offset
	if newPos < 0 {
		return 0, errs.Inval
	}
	t.entries[d].position = newPos
	return newPos, nil
}
