// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevillmanning/seqz/internal/arena"
)

func TestAllocAndGet(t *testing.T) {
	t.Parallel()

	a := arena.New[int](4)
	i1 := a.Alloc(10)
	i2 := a.Alloc(20)

	assert.NotEqual(t, arena.Nil, i1)
	assert.NotEqual(t, i1, i2)
	assert.Equal(t, 10, *a.Get(i1))
	assert.Equal(t, 20, *a.Get(i2))
	assert.Equal(t, 2, a.Len())
}

func TestFreeRecycles(t *testing.T) {
	t.Parallel()

	a := arena.New[string](2)
	i1 := a.Alloc("first")
	a.Free(i1)

	i2 := a.Alloc("second")
	assert.Equal(t, i1, i2, "freeing a slot should make it the next allocation")
	assert.Equal(t, "second", *a.Get(i2))
}

func TestExhaustionPanics(t *testing.T) {
	t.Parallel()

	a := arena.New[int](1)
	a.Alloc(1)

	require.Panics(t, func() {
		a.Alloc(2)
	})
}

func TestReset(t *testing.T) {
	t.Parallel()

	a := arena.New[int](4)
	a.Alloc(1)
	a.Alloc(2)
	a.Reset()

	assert.Equal(t, 0, a.Len())
	i := a.Alloc(99)
	assert.Equal(t, 99, *a.Get(i))
}

func TestFreeListOrderLIFO(t *testing.T) {
	t.Parallel()

	a := arena.New[int](4)
	i1 := a.Alloc(1)
	i2 := a.Alloc(2)
	a.Free(i1)
	a.Free(i2)

	// Free list is LIFO: the most recently freed slot comes back first.
	got := a.Alloc(3)
	assert.Equal(t, i2, got)
}
