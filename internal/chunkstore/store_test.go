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

package chunkstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	pool := make([]byte, 4*16)
	m := NewMemory(pool, 16)

	n, err := m.Write(2, 4, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = m.Read(2, 4, buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestMemoryRejectsOutOfChunkSpan(t *testing.T) {
	pool := make([]byte, 4*16)
	m := NewMemory(pool, 16)
	_, err := m.Write(0, 12, []byte("too long!!!!"))
	assert.Error(t, err)
}

func TestSpilloverRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSpillover(filepath.Join(dir, "spill.bin"), 4, 16)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Write(1, 0, []byte("spillover-data"))
	require.NoError(t, err)

	buf := make([]byte, len("spillover-data"))
	_, err = s.Read(1, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, "spillover-data", string(buf))
}

func TestSpilloverAttachesExistingFileWithoutReinitializing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spill.bin")

	s1, err := OpenSpillover(path, 4, 16)
	require.NoError(t, err)
	_, err = s1.Write(0, 0, []byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := OpenSpillover(path, 4, 16)
	require.NoError(t, err)
	defer s2.Close()

	buf := make([]byte, len("persisted"))
	_, err = s2.Read(0, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(buf))
}
