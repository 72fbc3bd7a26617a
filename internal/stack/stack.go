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

// Package stack implements the fixed-capacity LIFO free-list described in
// spec.md §4.1 (C1): a stack of small integer IDs packed into a byte region
// so it can live inside the superblock without any separate allocation.
package stack

import "encoding/binary"

// Empty is the distinguished sentinel Pop returns when the stack holds no
// free IDs.
const Empty int32 = -1

// headerSize is the byte width of the capacity+top header preceding the
// slot array: two little-endian uint32s.
const headerSize = 8

// Size returns the number of bytes a stack of the given capacity occupies,
// including its header. Callers use this to carve the stack's sub-region
// out of the superblock during layout (internal/shm.Layout).
func Size(capacity int) int {
	return headerSize + capacity*4
}

// Stack is a thin view over a byte slice that already holds (or will hold)
// a stack's header and slots. It owns no memory of its own; the same bytes
// may be the backing superblock segment, letting every attached process see
// identical state.
type Stack struct {
	buf []byte
}

// New wraps buf, which must be at least Size(capacity) bytes, as a Stack.
// It does not initialize the contents; call Init for a fresh stack or rely
// on a previous Init when attaching to an existing segment.
func New(buf []byte) Stack {
	return Stack{buf: buf}
}

func (s Stack) capacity() int32 { return int32(binary.LittleEndian.Uint32(s.buf[0:4])) }
func (s Stack) top() int32      { return int32(binary.LittleEndian.Uint32(s.buf[4:8])) }
func (s Stack) setTop(v int32)  { binary.LittleEndian.PutUint32(s.buf[4:8], uint32(v)) }

func (s Stack) slot(i int32) int32 {
	off := headerSize + i*4
	return int32(binary.LittleEndian.Uint32(s.buf[off : off+4]))
}

func (s Stack) setSlot(i, v int32) {
	off := headerSize + i*4
	binary.LittleEndian.PutUint32(s.buf[off:off+4], uint32(v))
}

// Init populates the stack with every ID in [0, capacity), leaving it full
// (every ID considered free). It is only ever called once, by whichever
// process creates the superblock; an attaching process must not call it.
func Init(buf []byte, capacity int) {
	s := Stack{buf: buf}
	binary.LittleEndian.PutUint32(s.buf[0:4], uint32(capacity))
	s.setTop(int32(capacity))
	for i := int32(0); i < int32(capacity); i++ {
		s.setSlot(i, i)
	}
}

// Pop removes and returns a free ID, or Empty if none remain. Constant time.
// Callers sharing the stack across processes must hold the guarding mutex
// (internal/shm.Mutex) around the call; single-owner mode may skip it.
func (s Stack) Pop() int32 {
	t := s.top()
	if t <= 0 {
		return Empty
	}
	t--
	id := s.slot(t)
	s.setTop(t)
	return id
}

// Push returns id to the free pool. The caller must not push an ID that is
// already present, and must hold the guarding mutex as for Pop.
func (s Stack) Push(id int32) {
	t := s.top()
	s.setSlot(t, id)
	s.setTop(t + 1)
}

// Len reports how many IDs are currently free.
func (s Stack) Len() int32 { return s.top() }

// Cap reports the stack's total capacity.
func (s Stack) Cap() int32 { return s.capacity() }
