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
	"runtime"
	"sync/atomic"
)

// Mutex guards transitions of the free-list stacks (spec.md §4.1, §5). The
// lock policy is a configuration-time variant selected once at mount — not
// a runtime branch taken on every operation (spec.md §9) — so both NullMutex
// and SpinMutex satisfy the same interface and the rest of the engine never
// needs to know which one it was handed.
type Mutex interface {
	Lock()
	Unlock()
}

// MutexSize is the number of header bytes SpinMutex needs reserved for it
// inside the segment.
const MutexSize = 4

// NullMutex is used in private (single-owner) mode: since no other process
// can attach the segment, acquiring a lock around stack transitions would
// only add contention cost for no correctness benefit (spec.md §4.1, §5).
type NullMutex struct{}

func (NullMutex) Lock()   {}
func (NullMutex) Unlock() {}

// SpinMutex is a process-shared lock living inside the mmap'd segment
// itself. Ordinary atomic compare-and-swap instructions are coherent across
// processes mapping the same physical pages, so no OS-level named mutex or
// futex syscall is needed beyond the mapping already established by
// Segment.Open — only a spin loop with a cooperative backoff.
type SpinMutex struct {
	word []byte // MutexSize bytes within the shared segment
}

// NewSpinMutex wraps the MutexSize bytes at buf as a process-shared lock.
// The caller is responsible for zeroing buf exactly once, at superblock
// creation time; an attaching process must not re-zero it.
func NewSpinMutex(buf []byte) *SpinMutex {
	return &SpinMutex{word: buf[:MutexSize]}
}

func (m *SpinMutex) ptr() *uint32 {
	return (*uint32)(asPointer(m.word))
}

func (m *SpinMutex) Lock() {
	p := m.ptr()
	spins := 0
	for !atomic.CompareAndSwapUint32(p, 0, 1) {
		spins++
		if spins > 64 {
			runtime.Gosched()
			spins = 0
		}
	}
}

func (m *SpinMutex) Unlock() {
	atomic.StoreUint32(m.ptr(), 0)
}
