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
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpc-scratch/ramfs/cfg"
)

func smallConfig(t *testing.T) cfg.Config {
	c := cfg.Default()
	c.MountPrefix = "/tmp"
	c.MaxFiles = 16
	c.MaxFilename = 64
	c.ChunkSize = 1 << 10
	c.MaxChunks = 8
	c.MaxChunksPerFile = 4096
	return c
}

func mustMount(t *testing.T, c cfg.Config) *Mount {
	m, err := NewMount(c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// Scenario 1: hello-world read/write round trip.
func TestScenarioHelloWorldRoundTrip(t *testing.T) {
	m := mustMount(t, smallConfig(t))

	h1, err := m.Open("/tmp/a", OCreat)
	require.NoError(t, err)

	n, err := m.Write(h1, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	pos, err := m.Lseek(h1, 0, SeekSet)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)

	buf := make([]byte, 5)
	n, err = m.Read(h1, buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

// Scenario 2: multi-chunk write and stat, spanning several logical chunks.
func TestScenarioMultiChunkWriteAndStat(t *testing.T) {
	c := smallConfig(t)
	c.ChunkSize = 1 << 10 // 1 KiB, scaled down from the spec's 1 MiB
	c.MaxChunks = 8192
	c.MaxChunksPerFile = 8192
	m := mustMount(t, c)

	const total = 3 * (1 << 10) // "3 units" of chunk-size, scaled
	data := make([]byte, total)
	for i := range data {
		data[i] = byte(i % 251)
	}

	h, err := m.Open("/tmp/b", OCreat)
	require.NoError(t, err)

	n, err := m.Write(h, data)
	require.NoError(t, err)
	assert.Equal(t, total, n)

	st, err := m.Stat("/tmp/b")
	require.NoError(t, err)
	assert.Equal(t, int64(total), st.Size)

	readBack := make([]byte, total)
	n, err = m.Pread(h, readBack, 0)
	require.NoError(t, err)
	assert.Equal(t, total, n)
	assert.Equal(t, data, readBack)
}

// Scenario 3: memory-pool exhaustion falls back to spillover when enabled,
// and returns ENOSPC when it is not.
func TestScenarioPoolExhaustionFallsBackToSpillover(t *testing.T) {
	c := smallConfig(t)
	c.ChunkSize = 16
	c.MaxChunks = 4
	c.MaxChunksPerFile = 16
	c.UseSpillover = true
	c.MaxSpillChunks = 4
	c.SpilloverPath = t.TempDir() + "/spill.bin"
	m := mustMount(t, c)

	h, err := m.Open("/tmp/big", OCreat)
	require.NoError(t, err)

	// Exhausts the 4-chunk memory pool (64 bytes) and spills one more byte.
	_, err = m.Write(h, make([]byte, c.ChunkSize*4+1))
	require.NoError(t, err)
}

func TestScenarioPoolExhaustionReturnsENOSPCWithoutSpillover(t *testing.T) {
	c := smallConfig(t)
	c.ChunkSize = 16
	c.MaxChunks = 4
	c.MaxChunksPerFile = 16
	m := mustMount(t, c)

	h, err := m.Open("/tmp/big", OCreat)
	require.NoError(t, err)

	_, err = m.Write(h, make([]byte, c.ChunkSize*4+1))
	assert.Error(t, err)
}

// Scenario 4: mkdir/rmdir and ENOTEMPTY.
func TestScenarioMkdirRmdirNotEmpty(t *testing.T) {
	m := mustMount(t, smallConfig(t))

	require.NoError(t, m.Mkdir("/tmp/d"))

	_, err := m.Open("/tmp/d/f", OCreat)
	require.NoError(t, err)

	err = m.Rmdir("/tmp/d")
	assert.Error(t, err)

	require.NoError(t, m.Unlink("/tmp/d/f"))
	require.NoError(t, m.Rmdir("/tmp/d"))
}

// Scenario 5: cross-mount rename fails.
func TestScenarioCrossMountRenameFails(t *testing.T) {
	m := mustMount(t, smallConfig(t))

	_, err := m.Open("/tmp/x", OCreat)
	require.NoError(t, err)

	err = m.Rename("/tmp/x", "/other/x")
	assert.Error(t, err)
}

// Scenario 6: two descriptors on the same file track independent positions.
func TestScenarioIndependentDescriptorPositions(t *testing.T) {
	m := mustMount(t, smallConfig(t))

	h1, err := m.Open("/tmp/c", OCreat)
	require.NoError(t, err)
	h2, err := m.Open("/tmp/c", 0)
	require.NoError(t, err)

	_, err = m.Write(h1, []byte("AAAA"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	n, err := m.Pread(h2, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "AAAA", string(buf))

	_, err = m.Lseek(h1, 0, SeekSet)
	require.NoError(t, err)

	pos2, err := m.Lseek(h2, 0, SeekCur)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos2)
}

func TestIdempotenceLaws(t *testing.T) {
	m := mustMount(t, smallConfig(t))

	assert.Error(t, m.Unlink("/tmp/nope"))

	require.NoError(t, m.Mkdir("/tmp/again"))
	assert.Error(t, m.Mkdir("/tmp/again"))
}

func TestSeekInvarianceLaw(t *testing.T) {
	m := mustMount(t, smallConfig(t))

	h, err := m.Open("/tmp/s", OCreat)
	require.NoError(t, err)
	_, err = m.Write(h, []byte("0123456789"))
	require.NoError(t, err)

	pos, err := m.Lseek(h, 4, SeekSet)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)

	pos, err = m.Lseek(h, 0, SeekCur)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)
}

func TestAppendRepositionsToSizeBeforeWrite(t *testing.T) {
	m := mustMount(t, smallConfig(t))

	h, err := m.Open("/tmp/app", OCreat)
	require.NoError(t, err)
	_, err = m.Write(h, []byte("abc"))
	require.NoError(t, err)
	require.NoError(t, m.Close(h))

	h2, err := m.Open("/tmp/app", OAppend)
	require.NoError(t, err)
	_, err = m.Write(h2, []byte("def"))
	require.NoError(t, err)

	buf := make([]byte, 6)
	n, err := m.Pread(h2, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(buf[:n]))
}

func TestUnsupportedOperationsReturnNotSupported(t *testing.T) {
	m := mustMount(t, smallConfig(t))
	h, err := m.Open("/tmp/u", OCreat)
	require.NoError(t, err)

	_, err = m.Readv(h, nil)
	assert.Error(t, err)
	_, err = m.Writev(h, nil)
	assert.Error(t, err)
	assert.Error(t, m.Fadvise(h, 0, 0, 0))
	assert.Error(t, m.Munmap(nil))
	assert.Error(t, m.Msync(h))
	_, err = m.Open64("/tmp/u", OCreat)
	assert.Error(t, err)
}

func TestMetricsReflectRealOperationActivity(t *testing.T) {
	m := mustMount(t, smallConfig(t))

	h, err := m.Open("/tmp/metrics", OCreat)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.e.Metr.DescriptorsOpen))

	_, err = m.Write(h, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.e.Metr.ChunksInUse))

	require.NoError(t, m.Close(h))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.e.Metr.DescriptorsOpen))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.e.Metr.OpsTotal.WithLabelValues("open")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.e.Metr.OpsTotal.WithLabelValues("write")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.e.Metr.OpsTotal.WithLabelValues("close")))

	_, err = m.Open("/tmp/nope/missing", 0)
	assert.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.e.Metr.OpErrorsTotal.WithLabelValues("open", "ERR_NOENT")))
}

func TestENOSPCTotalIncrementsOnExhaustion(t *testing.T) {
	c := smallConfig(t)
	c.ChunkSize = 16
	c.MaxChunks = 4
	c.MaxChunksPerFile = 16
	m := mustMount(t, c)

	h, err := m.Open("/tmp/full", OCreat)
	require.NoError(t, err)

	_, err = m.Write(h, make([]byte, c.ChunkSize*4+1))
	assert.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.e.Metr.ENOSPCTotal))
}

func TestMmapIsAReadOnlySnapshot(t *testing.T) {
	m := mustMount(t, smallConfig(t))
	h, err := m.Open("/tmp/m", OCreat)
	require.NoError(t, err)
	_, err = m.Write(h, []byte("snapshot"))
	require.NoError(t, err)

	snap, err := m.Mmap(h)
	require.NoError(t, err)
	assert.Equal(t, "snapshot", string(snap))

	snap[0] = 'X'
	readBack := make([]byte, 8)
	_, err = m.Pread(h, readBack, 0)
	require.NoError(t, err)
	assert.Equal(t, "snapshot", string(readBack))
}
