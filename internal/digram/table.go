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

// Package digram provides the index the grammar engine uses to detect a
// repeated digram: a hash map from an ordered pair of symbol values to the
// single body position holding that pair.
//
// At most one entry exists per digram across the entire grammar; this is the
// central invariant the Sequitur engine maintains. The table exposes
// Lookup/Insert/RemoveIfMatches rather than a plain map so that stale removes
// (a position is gone, but something else now occupies its digram) can be
// expressed as a no-op instead of a bug: see [Table.RemoveIfMatches].
package digram

import "github.com/nevillmanning/seqz/internal/arena"

// Pair is an ordered pair of symbol values, the key of the digram index.
type Pair struct {
	A, B int
}

// key packs a and b into a single 64-bit value. Symbol values never exceed
// 2^21-1 (see the codec's nonterminal ceiling), so 32 bits per side is
// generous headroom while keeping the packed key a plain comparable scalar.
func key(p Pair) uint64 {
	return uint64(uint32(p.A))<<32 | uint64(uint32(p.B))
}

// Table is the digram index.
//
// The zero Table is ready to use.
type Table struct {
	entries map[uint64]arena.Index
}

// Lookup returns the position currently indexed for the digram (a, b), and
// whether an entry was found.
func (t *Table) Lookup(p Pair) (arena.Index, bool) {
	if t.entries == nil {
		return arena.Nil, false
	}
	pos, ok := t.entries[key(p)]
	return pos, ok
}

// Insert records digram p as occurring at position pos, overwriting any
// existing entry.
//
// The engine only ever calls this once it has arranged for the old entry (if
// any) to be consumed by a substitution, so silently overwriting is correct.
func (t *Table) Insert(p Pair, pos arena.Index) {
	if t.entries == nil {
		t.entries = make(map[uint64]arena.Index)
	}
	t.entries[key(p)] = pos
}

// RemoveIfMatches deletes the entry for p, but only if it currently maps to
// pos. This makes removal idempotent and safe to call defensively: symbol
// recycling and rule inlining both issue removes for positions that may no
// longer own the index entry for their digram.
func (t *Table) RemoveIfMatches(p Pair, pos arena.Index) {
	if t.entries == nil {
		return
	}
	if cur, ok := t.entries[key(p)]; ok && cur == pos {
		delete(t.entries, key(p))
	}
}

// Len returns the number of digrams currently indexed.
func (t *Table) Len() int { return len(t.entries) }

// Reset empties the table for reuse across blocks.
func (t *Table) Reset() {
	clear(t.entries)
}
