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

package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFillsFullRange(t *testing.T) {
	buf := make([]byte, Size(4))
	Init(buf, 4)
	s := New(buf)

	require.EqualValues(t, 4, s.Len())
	seen := map[int32]bool{}
	for i := 0; i < 4; i++ {
		id := s.Pop()
		require.NotEqual(t, Empty, id)
		seen[id] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, Empty, s.Pop())
}

func TestPushMakesIDAvailableAgain(t *testing.T) {
	buf := make([]byte, Size(2))
	Init(buf, 2)
	s := New(buf)

	a := s.Pop()
	b := s.Pop()
	assert.Equal(t, Empty, s.Pop())

	s.Push(a)
	assert.EqualValues(t, 1, s.Len())
	got := s.Pop()
	assert.Equal(t, a, got)

	s.Push(b)
	assert.EqualValues(t, 1, s.Len())
}

func TestZeroCapacityAlwaysEmpty(t *testing.T) {
	buf := make([]byte, Size(0))
	Init(buf, 0)
	s := New(buf)
	assert.Equal(t, Empty, s.Pop())
}
