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

import "unsafe"

// asPointer reinterprets the first bytes of a byte slice as a pointer to
// the word atomic.CompareAndSwapUint32 operates on. buf must be at least 4
// bytes and 4-byte aligned, which Layout guarantees by construction (the
// mutex word sits at offset 0 of the page-aligned mapping).
func asPointer(buf []byte) unsafe.Pointer {
	return unsafe.Pointer(&buf[0])
}
