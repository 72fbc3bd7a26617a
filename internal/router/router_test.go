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

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterceptPathMatchesPrefixOnly(t *testing.T) {
	r := New("/tmp", 1024, 128)
	assert.True(t, r.InterceptPath("/tmp/a"))
	assert.False(t, r.InterceptPath("/other/a"))
}

func TestInterceptHandleRangeBounds(t *testing.T) {
	r := New("/tmp", 1024, 128)
	assert.False(t, r.InterceptHandle(1023))
	assert.True(t, r.InterceptHandle(1024))
	assert.True(t, r.InterceptHandle(1024+127))
	assert.False(t, r.InterceptHandle(1024+128))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := New("/tmp", 1024, 128)
	h := r.Encode(5)
	assert.Equal(t, 1029, h)
	assert.Equal(t, 5, r.Decode(h))
}
