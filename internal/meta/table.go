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

package meta

import (
	"strings"

	"github.com/hpc-scratch/ramfs/internal/errs"
	"github.com/hpc-scratch/ramfs/internal/shm"
	"github.com/hpc-scratch/ramfs/internal/stack"
)

// Table is the combined filename table and File Metadata Table (C6): a
// fixed-capacity array of file records indexed by fid, looked up by full
// absolute-path equality (spec.md §4.5 — "Lookup by path is linear over the
// in_use entries with full-string equality").
type Table struct {
	maxFiles         int
	maxFilename      int
	maxChunksPerFile int

	names      []byte // FilenameTableLen bytes: maxFiles * (1 + maxFilename)
	nameStride int

	records      []byte // FilemetaTableLen bytes: maxFiles * RecordSize
	recordStride int
}

// New wraps the filename and filemeta sub-regions of a superblock segment
// as a Table, per the offsets computed by internal/shm.Layout.
func New(l shm.Layout, seg []byte) *Table {
	t := &Table{
		maxFiles:         l.Dims.MaxFiles,
		maxFilename:      l.Dims.MaxFilename,
		maxChunksPerFile: l.Dims.MaxChunksPerFile,
		names:            seg[l.FilenameTableOff : l.FilenameTableOff+l.FilenameTableLen],
		nameStride:       l.FilenameEntryLen,
		records:          seg[l.FilemetaTableOff : l.FilemetaTableOff+l.FilemetaTableLen],
		recordStride:     l.FilemetaRecordLen,
	}
	return t
}

// Init clears every filename entry's in_use flag. Called only by the
// process that creates a fresh superblock (spec.md §4.2).
func (t *Table) Init() {
	for fid := 0; fid < t.maxFiles; fid++ {
		t.nameEntry(fid)[0] = 0
	}
}

func (t *Table) nameEntry(fid int) []byte {
	off := fid * t.nameStride
	return t.names[off : off+t.nameStride]
}

func (t *Table) inUse(fid int) bool { return t.nameEntry(fid)[0] != 0 }

func (t *Table) name(fid int) string {
	e := t.nameEntry(fid)
	raw := e[1:]
	n := len(raw)
	for i, b := range raw {
		if b == 0 {
			n = i
			break
		}
	}
	return string(raw[:n])
}

func (t *Table) setName(fid int, name string) error {
	if len(name) >= t.maxFilename {
		return errs.NameTooLong
	}
	e := t.nameEntry(fid)
	e[0] = 1
	raw := e[1:]
	n := copy(raw, name)
	for i := n; i < len(raw); i++ {
		raw[i] = 0
	}
	return nil
}

func (t *Table) clearInUse(fid int) { t.nameEntry(fid)[0] = 0 }

// Record returns the fid's File Metadata Record view. Callers must only use
// it while holding whatever external coordination the caller provides
// (spec.md §5: no two processes write the same file concurrently).
func (t *Table) Record(fid int) Record {
	off := fid * t.recordStride
	return newRecord(t.records[off:off+t.recordStride], t.maxChunksPerFile)
}

// Lookup returns the fid whose name equals path, or errs.NoEnt.
func (t *Table) Lookup(path string) (int, error) {
	for fid := 0; fid < t.maxFiles; fid++ {
		if t.inUse(fid) && t.name(fid) == path {
			return fid, nil
		}
	}
	return -1, errs.NoEnt
}

// AddNewFile pops a free fid from fidStack (guarded by mu), marks it in_use,
// clears its record, and assigns name. It fails with errs.Exist if name is
// already present and errs.NoSpc if the file table is full.
func (t *Table) AddNewFile(fidStack stack.Stack, mu shm.Mutex, name string, isDir bool) (int, error) {
	if _, err := t.Lookup(name); err == nil {
		return -1, errs.Exist
	}

	mu.Lock()
	fid := fidStack.Pop()
	mu.Unlock()
	if fid == stack.Empty {
		return -1, errs.NoSpc
	}

	if err := t.setName(int(fid), name); err != nil {
		mu.Lock()
		fidStack.Push(fid)
		mu.Unlock()
		return -1, err
	}
	rec := t.Record(int(fid))
	rec.clear()
	rec.SetIsDir(isDir)
	return int(fid), nil
}

// Remove clears fid's in_use flag and returns it to fidStack. The caller is
// responsible for having already freed the file's chunks (spec.md §4.6
// unlink: "truncate(fid, 0); clear in_use; push fid to free stack").
func (t *Table) Remove(fid int, fidStack stack.Stack, mu shm.Mutex) {
	t.clearInUse(fid)
	mu.Lock()
	fidStack.Push(int32(fid))
	mu.Unlock()
}

// Rename renames oldPath to newPath in place on the same fid (spec.md
// §4.5). Fails with errs.NoEnt if oldPath does not exist, errs.Exist if
// newPath already does.
func (t *Table) Rename(oldPath, newPath string) error {
	fid, err := t.Lookup(oldPath)
	if err != nil {
		return err
	}
	if _, err := t.Lookup(newPath); err == nil {
		return errs.Exist
	}
	return t.setName(fid, newPath)
}

// IsDirEmpty reports whether no other in-use entry has dirPath as a strict
// prefix (spec.md §4.5's flat-namespace emptiness test).
func (t *Table) IsDirEmpty(dirPath string) bool {
	prefix := dirPath
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	for fid := 0; fid < t.maxFiles; fid++ {
		if !t.inUse(fid) {
			continue
		}
		n := t.name(fid)
		if n != dirPath && strings.HasPrefix(n, prefix) {
			return false
		}
	}
	return true
}

// Stat describes the externally-visible attributes of one file (spec.md §6
// stat family): name, size, and directory flag. The best-effort mode comes
// from Record.Mode.
type Stat struct {
	Name  string
	Size  int64
	IsDir bool
}

// StatByFid returns the Stat for an in-use fid.
func (t *Table) StatByFid(fid int) Stat {
	rec := t.Record(fid)
	return Stat{Name: t.name(fid), Size: rec.Size(), IsDir: rec.IsDir()}
}

// MaxFiles reports the table's fixed file-slot capacity.
func (t *Table) MaxFiles() int { return t.maxFiles }
