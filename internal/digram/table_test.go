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

package digram_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nevillmanning/seqz/internal/arena"
	"github.com/nevillmanning/seqz/internal/digram"
)

func TestLookupMiss(t *testing.T) {
	t.Parallel()

	var tbl digram.Table
	_, ok := tbl.Lookup(digram.Pair{A: 'a', B: 'b'})
	assert.False(t, ok)
}

func TestInsertAndLookup(t *testing.T) {
	t.Parallel()

	var tbl digram.Table
	p := digram.Pair{A: 'a', B: 'b'}
	tbl.Insert(p, arena.Index(7))

	got, ok := tbl.Lookup(p)
	assert.True(t, ok)
	assert.Equal(t, arena.Index(7), got)
	assert.Equal(t, 1, tbl.Len())
}

func TestInsertOverwrites(t *testing.T) {
	t.Parallel()

	var tbl digram.Table
	p := digram.Pair{A: 'a', B: 'b'}
	tbl.Insert(p, arena.Index(1))
	tbl.Insert(p, arena.Index(2))

	got, ok := tbl.Lookup(p)
	assert.True(t, ok)
	assert.Equal(t, arena.Index(2), got)
}

func TestRemoveIfMatchesIsStaleSafe(t *testing.T) {
	t.Parallel()

	var tbl digram.Table
	p := digram.Pair{A: 'x', B: 'y'}
	tbl.Insert(p, arena.Index(1))

	// A stale remove referencing an old position is a no-op.
	tbl.RemoveIfMatches(p, arena.Index(99))
	_, ok := tbl.Lookup(p)
	assert.True(t, ok, "stale remove must not delete a live entry")

	tbl.RemoveIfMatches(p, arena.Index(1))
	_, ok = tbl.Lookup(p)
	assert.False(t, ok)
}

func TestReset(t *testing.T) {
	t.Parallel()

	var tbl digram.Table
	tbl.Insert(digram.Pair{A: 1, B: 2}, arena.Index(1))
	tbl.Reset()
	assert.Equal(t, 0, tbl.Len())
}

func TestDistinctOrderDistinctKey(t *testing.T) {
	t.Parallel()

	var tbl digram.Table
	tbl.Insert(digram.Pair{A: 1, B: 2}, arena.Index(1))
	tbl.Insert(digram.Pair{A: 2, B: 1}, arena.Index(2))
	assert.Equal(t, 2, tbl.Len())
}
