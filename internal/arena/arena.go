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

// Package arena provides a fixed-capacity pool allocator addressed by index
// rather than by pointer.
//
// # Design
//
// The grammar engine needs a store of symbol cells that can reference each
// other (next/prev, nextr/prevr, rule) while also being recycled the instant
// a cell dies, without tripping over Go's garbage collector or resorting to
// unsafe pointer arithmetic. Representing every reference as an [Index] into
// a single backing slice sidesteps both problems: cells can point at each
// other cheaply, a freed cell is just a slice slot linked onto a free list,
// and the whole arena can be reused across blocks with one Reset call.
//
// A zero [Index] is reserved to mean "absent" so that the zero value of a
// struct embedding an Index is a valid empty reference; valid allocations
// therefore start at index 1.
package arena

import "github.com/nevillmanning/seqz/internal/dbg"

// Index identifies a slot owned by an [Arena]. The zero Index never refers to
// a live allocation.
type Index uint32

// Nil is the reserved "absent" index.
const Nil Index = 0

type slot[T any] struct {
	value T
	free  bool
	next  Index // Next free slot, when free.
}

// Arena is a fixed-capacity pool of T values, addressed by [Index].
//
// The zero Arena is not ready to use; construct one with [New].
type Arena[T any] struct {
	slots     []slot[T]
	watermark int // Index of the next never-yet-used slot.
	freeHead  Index
}

// New returns an Arena with room for exactly capacity live allocations.
func New[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots:     make([]slot[T], capacity+1),
		watermark: 1,
	}
}

// Len returns the number of slots currently allocated (free or live) out of
// the arena's capacity.
func (a *Arena[T]) Len() int { return a.watermark - 1 }

// Cap returns the arena's fixed capacity.
func (a *Arena[T]) Cap() int { return len(a.slots) - 1 }

// Alloc allocates a new cell holding value, reusing a freed slot if one is
// available, and returns its index.
//
// Alloc panics if the arena's capacity is exhausted; callers that can size
// the arena generously should prefer that to handling this failure, since the
// spec treats arena exhaustion as an unrecoverable invariant violation, not a
// recoverable error.
func (a *Arena[T]) Alloc(value T) Index {
	if a.freeHead != Nil {
		idx := a.freeHead
		s := &a.slots[idx]
		a.freeHead = s.next
		s.value = value
		s.free = false
		s.next = Nil
		dbg.Log(nil, "alloc", "reuse %d", idx)
		return idx
	}

	if a.watermark >= len(a.slots) {
		panic("arena: capacity exhausted")
	}

	idx := Index(a.watermark)
	a.watermark++
	a.slots[idx] = slot[T]{value: value}
	dbg.Log(nil, "alloc", "fresh %d", idx)
	return idx
}

// Free recycles the cell at idx. The caller must not dereference idx again
// until it is handed back out by a later Alloc.
func (a *Arena[T]) Free(idx Index) {
	s := &a.slots[idx]
	var zero T
	s.value = zero
	s.free = true
	s.next = a.freeHead
	a.freeHead = idx
	dbg.Log(nil, "free", "%d", idx)
}

// Get returns a pointer to the live value at idx.
//
// The pointer is invalidated by the next Reset, but not by further Alloc or
// Free calls, since the backing slice never reallocates after New.
func (a *Arena[T]) Get(idx Index) *T {
	return &a.slots[idx].value
}

// Reset restores the arena to its just-constructed state, dropping every
// live allocation. Capacity is unchanged.
func (a *Arena[T]) Reset() {
	clear(a.slots)
	a.watermark = 1
	a.freeHead = Nil
	dbg.Log(nil, "reset", "cap %d", a.Cap())
}
