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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpc-scratch/ramfs/internal/stack"
)

func smallDims() Dims {
	return Dims{
		MaxFiles:         4,
		MaxFilename:      16,
		ChunkSize:        64,
		MaxChunks:        4,
		MaxChunksPerFile: 4,
		MaxSpillChunks:   2,
		UseMemory:        true,
		UseSpillover:     true,
	}
}

func TestLayoutRegionsDoNotOverlap(t *testing.T) {
	l := NewLayout(smallDims())

	type region struct {
		name string
		off  int
		ln   int
	}
	regions := []region{
		{"mutex", l.MutexOff, MutexSize},
		{"fid_stack", l.FreeFidStackOff, l.FreeFidStackLen},
		{"filename_table", l.FilenameTableOff, l.FilenameTableLen},
		{"filemeta_table", l.FilemetaTableOff, l.FilemetaTableLen},
		{"chunk_stack", l.FreeChunkStackOff, l.FreeChunkStackLen},
		{"spill_stack", l.FreeSpillStackOff, l.FreeSpillStackLen},
		{"chunk_pool", l.ChunkPoolOff, l.ChunkPoolLen},
	}
	for i := 1; i < len(regions); i++ {
		prev, cur := regions[i-1], regions[i]
		assert.Equalf(t, prev.off+prev.ln, cur.off, "%s should immediately follow %s", cur.name, prev.name)
	}
	assert.Equal(t, l.ChunkPoolOff+l.ChunkPoolLen, l.Total)
}

func TestLayoutDeterministicAcrossCalls(t *testing.T) {
	d := smallDims()
	assert.Equal(t, NewLayout(d), NewLayout(d))
}

func TestLayoutWithoutSpilloverHasNoSpillRegion(t *testing.T) {
	d := smallDims()
	d.UseSpillover = false
	l := NewLayout(d)
	assert.Zero(t, l.FreeSpillStackLen)
}

func TestLayoutSpilloverOnlyHasEmptyChunkStack(t *testing.T) {
	d := smallDims()
	d.UseMemory = false
	l := NewLayout(d)
	assert.Zero(t, l.ChunkPoolLen)
	assert.Equal(t, stack.Size(0), l.FreeChunkStackLen)
}

func TestSpinMutexExcludesConcurrentAccess(t *testing.T) {
	buf := make([]byte, MutexSize)
	m := NewSpinMutex(buf)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock()
			defer m.Unlock()
			counter++
		}()
	}
	wg.Wait()
	require.Equal(t, 100, counter)
}

func TestNullMutexIsNoOp(t *testing.T) {
	var m NullMutex
	m.Lock()
	m.Unlock()
}
