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

package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpc-scratch/ramfs/internal/addr"
	"github.com/hpc-scratch/ramfs/internal/chunkstore"
	"github.com/hpc-scratch/ramfs/internal/meta"
	"github.com/hpc-scratch/ramfs/internal/shm"
	"github.com/hpc-scratch/ramfs/internal/stack"
)

type harness struct {
	p        *Pipeline
	table    *meta.Table
	fidStack stack.Stack
}

func dimsSmall(useMemory, useSpillover bool) shm.Dims {
	return shm.Dims{
		MaxFiles:         8,
		MaxFilename:      32,
		ChunkSize:        16,
		MaxChunks:        4,
		MaxChunksPerFile: 8,
		MaxSpillChunks:   4,
		UseMemory:        useMemory,
		UseSpillover:     useSpillover,
	}
}

func newHarness(t *testing.T, dims shm.Dims) *harness {
	t.Helper()
	l := shm.NewLayout(dims)
	seg := make([]byte, l.Total)

	stack.Init(seg[l.FreeFidStackOff:l.FreeFidStackOff+l.FreeFidStackLen], dims.MaxFiles)
	fidStack := stack.New(seg[l.FreeFidStackOff : l.FreeFidStackOff+l.FreeFidStackLen])

	tbl := meta.New(l, seg)
	tbl.Init()

	geo, err := addr.NewGeometry(dims.ChunkSize)
	require.NoError(t, err)

	var memStore chunkstore.Store
	var memStack stack.Stack
	if dims.UseMemory {
		stack.Init(seg[l.FreeChunkStackOff:l.FreeChunkStackOff+l.FreeChunkStackLen], dims.MaxChunks)
		memStack = stack.New(seg[l.FreeChunkStackOff : l.FreeChunkStackOff+l.FreeChunkStackLen])
		memStore = chunkstore.NewMemory(seg[l.ChunkPoolOff:l.ChunkPoolOff+l.ChunkPoolLen], dims.ChunkSize)
	}

	var spillStore chunkstore.Store
	var spillStack stack.Stack
	if dims.UseSpillover {
		stack.Init(seg[l.FreeSpillStackOff:l.FreeSpillStackOff+l.FreeSpillStackLen], dims.MaxSpillChunks)
		spillStack = stack.New(seg[l.FreeSpillStackOff : l.FreeSpillStackOff+l.FreeSpillStackLen])
		sp, err := chunkstore.OpenSpillover(filepath.Join(t.TempDir(), "spill.bin"), dims.MaxSpillChunks, dims.ChunkSize)
		require.NoError(t, err)
		t.Cleanup(func() { sp.Close() })
		spillStore = sp
	}

	p := New(geo, memStore, spillStore, memStack, spillStack, shm.NullMutex{}, tbl, nil)
	return &harness{p: p, table: tbl, fidStack: fidStack}
}

func (h *harness) newFile(t *testing.T, name string) int {
	t.Helper()
	fid, err := h.table.AddNewFile(h.fidStack, shm.NullMutex{}, name, false)
	require.NoError(t, err)
	return fid
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	h := newHarness(t, dimsSmall(true, false))
	fid := h.newFile(t, "/tmp/a")

	n, err := h.p.Write(fid, 0, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = h.p.Read(fid, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestWriteSpanningMultipleChunks(t *testing.T) {
	h := newHarness(t, dimsSmall(true, false))
	fid := h.newFile(t, "/tmp/b")

	data := make([]byte, 40) // chunk size 16 -> spans 3 chunks
	for i := range data {
		data[i] = byte(i % 251)
	}

	n, err := h.p.Write(fid, 0, data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	assert.EqualValues(t, 3, h.table.Record(fid).Chunks())
	assert.EqualValues(t, 40, h.p.Size(fid))

	got := make([]byte, 40)
	n, err = h.p.Read(fid, 0, got)
	require.NoError(t, err)
	assert.Equal(t, 40, n)
	assert.Equal(t, data, got)
}

func TestReadClipsToSize(t *testing.T) {
	h := newHarness(t, dimsSmall(true, false))
	fid := h.newFile(t, "/tmp/c")
	_, err := h.p.Write(fid, 0, []byte("hi"))
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := h.p.Read(fid, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTruncateGrowDoesNotAllocate(t *testing.T) {
	h := newHarness(t, dimsSmall(true, false))
	fid := h.newFile(t, "/tmp/d")

	require.NoError(t, h.p.Truncate(fid, 0))
	n, err := h.p.Write(fid, 0, []byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, h.p.Truncate(fid, 100))
	assert.EqualValues(t, 100, h.p.Size(fid))
	assert.EqualValues(t, 1, h.table.Record(fid).Chunks()) // unchanged, no realloc

	buf := make([]byte, 2)
	_, err = h.p.Read(fid, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(buf))

	_, err = h.p.Read(fid, 16, buf) // second logical chunk was never allocated
	assert.Error(t, err)
}

func TestTruncateDownFreesChunks(t *testing.T) {
	h := newHarness(t, dimsSmall(true, false))
	fid := h.newFile(t, "/tmp/e")
	_, err := h.p.Write(fid, 0, make([]byte, 40))
	require.NoError(t, err)
	require.EqualValues(t, 3, h.table.Record(fid).Chunks())

	require.NoError(t, h.p.Truncate(fid, 5))
	assert.EqualValues(t, 1, h.table.Record(fid).Chunks())
	assert.EqualValues(t, 5, h.p.Size(fid))
	assert.EqualValues(t, 3, h.p.memoryStack.Len())
}

func TestUnlinkFreesAllChunks(t *testing.T) {
	h := newHarness(t, dimsSmall(true, false))
	fid := h.newFile(t, "/tmp/f")
	_, err := h.p.Write(fid, 0, make([]byte, 40))
	require.NoError(t, err)

	require.NoError(t, h.p.Unlink(fid))
	assert.EqualValues(t, 0, h.p.Size(fid))
	assert.EqualValues(t, 4, h.p.memoryStack.Len())
}

func TestExtendFailsWhenNoSpaceAndNoFallback(t *testing.T) {
	h := newHarness(t, dimsSmall(true, false))
	fid := h.newFile(t, "/tmp/full")

	// MaxChunks = 4; exhaust the memory pool.
	_, err := h.p.Write(fid, 0, make([]byte, 64))
	require.NoError(t, err)

	_, err = h.p.Write(fid, 64, []byte("x"))
	assert.Error(t, err)
	assert.EqualValues(t, 64, h.p.Size(fid)) // size unchanged on failed extend
}

func TestExtendFallsBackToSpilloverWhenMemoryExhausted(t *testing.T) {
	h := newHarness(t, dimsSmall(true, true))
	fid := h.newFile(t, "/tmp/spill")

	_, err := h.p.Write(fid, 0, make([]byte, 64)) // fills 4 memory chunks
	require.NoError(t, err)

	n, err := h.p.Write(fid, 64, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec := h.table.Record(fid)
	ref := rec.ChunkRef(4)
	assert.Equal(t, addr.Spillover, ref.Tier)

	buf := make([]byte, 1)
	_, err = h.p.Read(fid, 64, buf)
	require.NoError(t, err)
	assert.Equal(t, "x", string(buf))
}

func TestExtendFailsWithoutSpilloverEnabled(t *testing.T) {
	h := newHarness(t, dimsSmall(true, false))
	fid := h.newFile(t, "/tmp/nospill")
	_, err := h.p.Write(fid, 0, make([]byte, 64))
	require.NoError(t, err)

	_, err = h.p.Write(fid, 64, []byte("x"))
	assert.Error(t, err)
}
