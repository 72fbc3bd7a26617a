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

package ramfs

import (
	"github.com/hpc-scratch/ramfs/internal/errs"
)

// --- Path operations (spec.md §6) ---

// Access always succeeds for any in-use path under the mount and returns
// ENOENT otherwise — there are no permission bits to check (SPEC_FULL.md
// §9.1, following the original shim).
func (m *Mount) Access(path string) error {
	_, err := m.e.Table().Lookup(path)
	return m.observe("access", err)
}

// Mkdir creates a directory entry. Fails with EEXIST if path is already
// present (spec.md §8 idempotence law).
func (m *Mount) Mkdir(path string) error {
	_, err := m.e.NewFile(path, true)
	return m.observe("mkdir", err)
}

// Rmdir removes an empty directory entry (spec.md §4.5, §8 scenario 4).
func (m *Mount) Rmdir(path string) error {
	fid, err := m.e.Table().Lookup(path)
	if err != nil {
		return m.observe("rmdir", err)
	}
	if !m.e.Table().StatByFid(fid).IsDir {
		return m.observe("rmdir", errs.NotDir)
	}
	if !m.e.Table().IsDirEmpty(path) {
		return m.observe("rmdir", errs.NotEmpty)
	}
	return m.observe("rmdir", m.e.RemoveFile(fid))
}

// Rename renames oldPath to newPath within the mount. Both paths must fall
// under the same mount prefix; a newPath outside it is a cross-device
// rename (spec.md §4.5, §8 scenario 5).
func (m *Mount) Rename(oldPath, newPath string) error {
	if !m.e.Router().InterceptPath(newPath) {
		return m.observe("rename", errs.CrossDevice)
	}
	return m.observe("rename", m.e.Table().Rename(oldPath, newPath))
}

// Truncate resizes the file at path to length bytes (spec.md §4.6; growing
// never allocates — a documented POSIX divergence, SPEC_FULL.md §9).
func (m *Mount) Truncate(path string, length int64) error {
	fid, err := m.e.Table().Lookup(path)
	if err != nil {
		return m.observe("truncate", err)
	}
	return m.observe("truncate", m.e.Pipeline().Truncate(fid, length))
}

// Unlink removes a file entry, freeing its chunks first (spec.md §4.6).
func (m *Mount) Unlink(path string) error {
	fid, err := m.e.Table().Lookup(path)
	if err != nil {
		return m.observe("unlink", err)
	}
	if m.e.Table().StatByFid(fid).IsDir {
		return m.observe("unlink", errs.IsDir)
	}
	return m.observe("unlink", m.e.RemoveFile(fid))
}

// Stat fills size and mode for path; all other fields are zeroed per
// spec.md §6.
func (m *Mount) Stat(path string) (Stat, error) {
	fid, err := m.e.Table().Lookup(path)
	if err != nil {
		return Stat{}, m.observe("stat", err)
	}
	return m.statByFid(fid), m.observe("stat", nil)
}

func (m *Mount) statByFid(fid int) Stat {
	s := m.e.Table().StatByFid(fid)
	return Stat{Size: s.Size, Mode: m.e.Table().Record(fid).Mode()}
}

// --- Descriptor operations (spec.md §6) ---

// Handle is an externally-visible numeric handle, already aliased above
// FD_LIMIT by internal/router (spec.md §3, §4.9).
type Handle int

// Creat is shorthand for Open(path, O_CREAT|O_EXCL|O_RDWR).
func (m *Mount) Creat(path string) (Handle, error) {
	return m.Open(path, OCreat|OExcl)
}

// Open resolves path per flags and returns a routed handle (spec.md §6).
// O_CREAT creates the file if absent; O_EXCL additionally fails with EEXIST
// if it is already present; O_TRUNC truncates an existing file to zero;
// O_APPEND marks the descriptor so every write repositions to the file's
// current size first (SPEC_FULL.md §9.1); O_DIRECTORY requires the
// resolved entry to be a directory.
func (m *Mount) Open(path string, flags int) (Handle, error) {
	fid, err := m.e.Table().Lookup(path)
	if err != nil {
		if err != errs.NoEnt || flags&OCreat == 0 {
			return 0, m.observe("open", err)
		}
		fid, err = m.e.NewFile(path, false)
		if err != nil {
			return 0, m.observe("open", err)
		}
	} else if flags&OCreat != 0 && flags&OExcl != 0 {
		return 0, m.observe("open", errs.Exist)
	}

	st := m.e.Table().StatByFid(fid)
	if flags&ODirectory != 0 && !st.IsDir {
		return 0, m.observe("open", errs.NotDir)
	}
	if flags&OTrunc != 0 && !st.IsDir {
		if err := m.e.Pipeline().Truncate(fid, 0); err != nil {
			return 0, m.observe("open", err)
		}
	}

	d, err := m.e.Descriptors().Open(fid, flags&OAppend != 0)
	if err != nil {
		return 0, m.observe("open", err)
	}
	m.e.Metr.DescriptorsOpen.Inc()
	return Handle(m.e.Router().Encode(d)), m.observe("open", nil)
}

func (m *Mount) descriptor(h Handle) (int, error) {
	hi := int(h)
	if !m.e.Router().InterceptHandle(hi) {
		return 0, errs.NotSupported
	}
	return m.e.Router().Decode(hi), nil
}

// Close releases a descriptor slot (DESIGN.md, Open Question resolution 6:
// unlike the source, this actually frees it for reuse).
func (m *Mount) Close(h Handle) error {
	d, err := m.descriptor(h)
	if err != nil {
		return m.observe("close", err)
	}
	if err := m.e.Descriptors().Close(d); err != nil {
		return m.observe("close", err)
	}
	m.e.Metr.DescriptorsOpen.Dec()
	return m.observe("close", nil)
}

// Read reads up to len(buf) bytes from h's current position, advancing it
// by the number of bytes actually read.
func (m *Mount) Read(h Handle, buf []byte) (int, error) {
	d, err := m.descriptor(h)
	if err != nil {
		return 0, m.observe("read", err)
	}
	fid, err := m.e.Descriptors().Fid(d)
	if err != nil {
		return 0, m.observe("read", err)
	}
	pos, err := m.e.Descriptors().Position(d)
	if err != nil {
		return 0, m.observe("read", err)
	}
	n, err := m.e.Pipeline().Read(fid, pos, buf)
	if err != nil {
		return n, m.observe("read", err)
	}
	return n, m.observe("read", m.e.Descriptors().Advance(d, int64(n)))
}

// Write writes buf at h's current position (or at the file's size first,
// if h was opened with O_APPEND), advancing the position afterward.
func (m *Mount) Write(h Handle, buf []byte) (int, error) {
	d, err := m.descriptor(h)
	if err != nil {
		return 0, m.observe("write", err)
	}
	fid, err := m.e.Descriptors().Fid(d)
	if err != nil {
		return 0, m.observe("write", err)
	}

	isAppend, err := m.e.Descriptors().IsAppend(d)
	if err != nil {
		return 0, m.observe("write", err)
	}
	pos, err := m.e.Descriptors().Position(d)
	if err != nil {
		return 0, m.observe("write", err)
	}
	if isAppend {
		pos = m.e.Pipeline().Size(fid)
		if err := m.e.Descriptors().SetPosition(d, pos); err != nil {
			return 0, m.observe("write", err)
		}
	}

	n, err := m.e.Pipeline().Write(fid, pos, buf)
	if err != nil {
		return n, m.observe("write", err)
	}
	return n, m.observe("write", m.e.Descriptors().Advance(d, int64(n)))
}

// Pread reads from a fixed offset without disturbing h's position
// (spec.md §8 scenario 6).
func (m *Mount) Pread(h Handle, buf []byte, offset int64) (int, error) {
	d, err := m.descriptor(h)
	if err != nil {
		return 0, m.observe("pread", err)
	}
	fid, err := m.e.Descriptors().Fid(d)
	if err != nil {
		return 0, m.observe("pread", err)
	}
	n, err := m.e.Pipeline().Read(fid, offset, buf)
	return n, m.observe("pread", err)
}

// Pwrite writes at a fixed offset without disturbing h's position.
func (m *Mount) Pwrite(h Handle, buf []byte, offset int64) (int, error) {
	d, err := m.descriptor(h)
	if err != nil {
		return 0, m.observe("pwrite", err)
	}
	fid, err := m.e.Descriptors().Fid(d)
	if err != nil {
		return 0, m.observe("pwrite", err)
	}
	n, err := m.e.Pipeline().Write(fid, offset, buf)
	return n, m.observe("pwrite", err)
}

// Lseek repositions h per whence (spec.md §4.7).
func (m *Mount) Lseek(h Handle, offset int64, whence Whence) (int64, error) {
	d, err := m.descriptor(h)
	if err != nil {
		return 0, m.observe("lseek", err)
	}
	fid, err := m.e.Descriptors().Fid(d)
	if err != nil {
		return 0, m.observe("lseek", err)
	}
	size := m.e.Pipeline().Size(fid)
	pos, err := m.e.Descriptors().Seek(d, offset, whence, size)
	return pos, m.observe("lseek", err)
}

// Ftruncate resizes the file behind h (SPEC_FULL.md §9.1: both a path-based and
// a descriptor-based entry point share the same pipeline function).
func (m *Mount) Ftruncate(h Handle, length int64) error {
	d, err := m.descriptor(h)
	if err != nil {
		return m.observe("ftruncate", err)
	}
	fid, err := m.e.Descriptors().Fid(d)
	if err != nil {
		return m.observe("ftruncate", err)
	}
	return m.observe("ftruncate", m.e.Pipeline().Truncate(fid, length))
}

// Fstat is Stat by descriptor.
func (m *Mount) Fstat(h Handle) (Stat, error) {
	d, err := m.descriptor(h)
	if err != nil {
		return Stat{}, m.observe("fstat", err)
	}
	fid, err := m.e.Descriptors().Fid(d)
	if err != nil {
		return Stat{}, m.observe("fstat", err)
	}
	return m.statByFid(fid), m.observe("fstat", nil)
}

// Fsync is a no-op: every write already lands in the superblock or the
// spillover file synchronously (spec.md §6).
func (m *Mount) Fsync(h Handle) error {
	_, err := m.descriptor(h)
	return m.observe("fsync", err)
}

// Flock is a no-op: file metadata records carry an advisory spinlock
// reserved for a future range-lock feature, not taken on this path
// (spec.md §5).
func (m *Mount) Flock(h Handle) error {
	_, err := m.descriptor(h)
	return m.observe("flock", err)
}

// Mmap is a read-only snapshot: it copies the file's current bytes into a
// freshly allocated buffer. It is NOT a real memory mapping and does not
// support PROT_WRITE semantics (spec.md §9 open question, DESIGN.md Open
// Question resolution 5) — writes to the returned slice are never reflected
// back to the file.
func (m *Mount) Mmap(h Handle) ([]byte, error) {
	d, err := m.descriptor(h)
	if err != nil {
		return nil, m.observe("mmap", err)
	}
	fid, err := m.e.Descriptors().Fid(d)
	if err != nil {
		return nil, m.observe("mmap", err)
	}
	size := m.e.Pipeline().Size(fid)
	buf := make([]byte, size)
	if _, err := m.e.Pipeline().Read(fid, 0, buf); err != nil {
		return nil, m.observe("mmap", err)
	}
	return buf, m.observe("mmap", nil)
}

// Munmap is explicitly unsupported: Mmap never produced a real mapping to
// release (spec.md §6).
func (m *Mount) Munmap([]byte) error { return m.observe("munmap", errs.NotSupported) }

// Msync is explicitly unsupported, for the same reason as Munmap.
func (m *Mount) Msync(h Handle) error { return m.observe("msync", errs.NotSupported) }

// Readv and Writev are explicitly unsupported (spec.md §6).
func (m *Mount) Readv(h Handle, bufs [][]byte) (int, error) {
	return 0, m.observe("readv", errs.NotSupported)
}

func (m *Mount) Writev(h Handle, bufs [][]byte) (int, error) {
	return 0, m.observe("writev", errs.NotSupported)
}

// Fadvise is unsupported beyond recognizing the call (spec.md §6).
func (m *Mount) Fadvise(h Handle, offset int64, length int64, advice int) error {
	return m.observe("fadvise", errs.NotSupported)
}

// Open64, Lseek64, and Stat64 are the 64-bit syscall variants spec.md §6
// explicitly excludes from intercepted paths.
func (m *Mount) Open64(path string, flags int) (Handle, error) {
	return 0, m.observe("open64", errs.NotSupported)
}

func (m *Mount) Lseek64(h Handle, offset int64, whence Whence) (int64, error) {
	return 0, m.observe("lseek64", errs.NotSupported)
}

func (m *Mount) Stat64(path string) (Stat, error) {
	return Stat{}, m.observe("stat64", errs.NotSupported)
}
