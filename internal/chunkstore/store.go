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

// Package chunkstore implements the two physical chunk stores described in
// spec.md §4.3: a memory pool living inside the superblock (C3) and a
// spillover pool backed by a local disk file (C4). Both satisfy the same
// Store interface so internal/pipeline can dispatch to either without
// caring which tier it landed on.
package chunkstore

// Store reads and writes within a single physical chunk. Both
// implementations reject a span with offset+count > chunk size (errs.Inval)
// rather than splitting it — the caller (internal/pipeline, via
// internal/addr) is responsible for splitting writes on chunk boundaries
// (spec.md §4.3).
type Store interface {
	Read(physID uint32, offset int, buf []byte) (int, error)
	Write(physID uint32, offset int, buf []byte) (int, error)
	ChunkSize() int
}
