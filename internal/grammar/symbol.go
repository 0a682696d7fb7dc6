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

// Package grammar implements the online Sequitur grammar: a symbol arena, a
// rule registry, and the digram-enforcement engine that keeps the grammar's
// two invariants (digram uniqueness, rule utility) satisfied after every
// input byte.
package grammar

import (
	"iter"

	"github.com/nevillmanning/seqz/internal/arena"
)

// FirstNonterminal is the smallest value a nonterminal symbol may carry.
// Values below it are terminal bytes.
const FirstNonterminal = 256

// MaxNonterminal is the largest value a 4-byte encode_int payload (21 bits)
// can carry; the block decoder rejects nonterminal references above it. The
// encoder itself only writes values below 0x10FFFF.
const MaxNonterminal = 1<<21 - 1

// Symbol is a node in the grammar. Every rule head and every rule-body
// position is a Symbol living in the same arena, addressed by [arena.Index].
//
// A cell is a rule head exactly when Rule == its own index; this is the
// "is a head" predicate recommended for an indexed reimplementation of the
// canonical pointer-chasing design; see [Registry.IsHead].
type Symbol struct {
	Value int // Terminal byte (0-255), or a nonterminal/rule id (>= FirstNonterminal).
	Rule  arena.Index

	// Next/Prev form the circular intra-rule body list. For a head, they
	// close the ring around the rule's body; an empty body is a head whose
	// Next/Prev point to itself.
	Next, Prev arena.Index

	// NextR/PrevR form the circular inter-rule list of rule heads. Defined
	// only on heads.
	NextR, PrevR arena.Index

	// Refcnt counts how many body positions reference this head. Defined
	// only on heads.
	Refcnt int

	// UseNext/UsePrev thread a second circular ring through every symbol
	// that references this head. Unlike the body ring, the head is not a
	// member of this ring; the head's own UseNext points at one of its
	// members. This isn't in the original data
	// model, which has no way to find a rule's remaining use once it drops
	// to one without an O(n) scan; threading a ring through the referencing
	// sites turns that lookup into the same O(1) ring-splice the rest of
	// the engine already relies on. See [Registry.SoleUse].
	UseNext, UsePrev arena.Index
}

// Registry owns the symbol arena, the rule registry (the circular list of
// rule heads anchored at the main/start rule), and the nonterminal-value
// counter. It corresponds to the source's global mutable state — main_rule,
// rule_map, next_nonterminal_value, and the arena — packaged into one value
// so a compressor and decompressor can each own an independent instance.
type Registry struct {
	arena   *arena.Arena[Symbol]
	main    arena.Index
	ruleMap map[int]arena.Index
	next    int
}

// NewRegistry returns a Registry whose symbol arena has room for exactly
// capacity live cells.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		arena:   arena.New[Symbol](capacity),
		ruleMap: make(map[int]arena.Index),
		next:    FirstNonterminal,
	}
}

// Reset reinitializes the registry for a new block: the arena is emptied,
// the rule ring is forgotten, and nonterminal numbering restarts at
// FirstNonterminal.
func (r *Registry) Reset() {
	r.arena.Reset()
	r.main = arena.Nil
	clear(r.ruleMap)
	r.next = FirstNonterminal
}

// Sym returns a pointer to the symbol at idx.
func (r *Registry) Sym(idx arena.Index) *Symbol { return r.arena.Get(idx) }

// IsHead reports whether idx is a rule head.
func (r *Registry) IsHead(idx arena.Index) bool { return r.arena.Get(idx).Rule == idx }

// Main returns the start rule's head, or [arena.Nil] if no rule has been
// added yet.
func (r *Registry) Main() arena.Index { return r.main }

// AllocNonterminal returns the next unused nonterminal value and advances
// the counter.
func (r *Registry) AllocNonterminal() int {
	v := r.next
	r.next++
	return v
}

// RuleByValue looks up a rule's head by its nonterminal value. The decoder
// in internal/codec keeps its own value-to-body map and does not use this.
func (r *Registry) RuleByValue(value int) (arena.Index, bool) {
	idx, ok := r.ruleMap[value]
	return idx, ok
}

// NewSymbol allocates a new symbol cell with the given value and, for a
// nonterminal body symbol, the rule it refers to.
//
// Passing a non-nil rule alongside a terminal value is a programming error:
// the spec defines a terminal as never carrying a rule reference.
func (r *Registry) NewSymbol(value int, rule arena.Index) arena.Index {
	if value < FirstNonterminal && rule != arena.Nil {
		panic("grammar: terminal symbol cannot carry a rule reference")
	}
	idx := r.arena.Alloc(Symbol{Value: value, Rule: rule})
	if rule != arena.Nil {
		r.Ref(rule, idx)
	}
	return idx
}

// NewRule allocates a rule head with the given nonterminal value and an
// empty body ring (Next == Prev == self).
func (r *Registry) NewRule(value int) arena.Index {
	idx := r.arena.Alloc(Symbol{})
	h := r.arena.Get(idx)
	h.Value = value
	h.Rule = idx
	h.Next, h.Prev = idx, idx
	return idx
}

// AddRule appends head to the global rule ring, registers it in the
// value-to-head map, and — if this is the first rule ever added — makes it
// the main/start rule.
func (r *Registry) AddRule(head arena.Index) {
	h := r.arena.Get(head)
	r.ruleMap[h.Value] = head

	if r.main == arena.Nil {
		r.main = head
		h.NextR, h.PrevR = head, head
		return
	}

	main := r.arena.Get(r.main)
	tail := r.arena.Get(main.PrevR)
	h.PrevR = main.PrevR
	h.NextR = r.main
	tail.NextR = head
	main.PrevR = head
}

// DeleteRule unlinks head from the global rule ring and the value map, and
// recycles its cell if its refcount is already zero.
func (r *Registry) DeleteRule(head arena.Index) {
	h := r.arena.Get(head)
	delete(r.ruleMap, h.Value)

	if h.NextR == head {
		if r.main == head {
			r.main = arena.Nil
		}
	} else {
		next := r.arena.Get(h.NextR)
		prev := r.arena.Get(h.PrevR)
		prev.NextR = h.NextR
		next.PrevR = h.PrevR
		if r.main == head {
			r.main = h.NextR
		}
	}

	if h.Refcnt == 0 {
		r.arena.Free(head)
	}
}

// Ref increments head's refcount and registers user as a reference site in
// head's use ring.
func (r *Registry) Ref(head, user arena.Index) {
	h := r.arena.Get(head)
	u := r.arena.Get(user)

	if h.Refcnt == 0 {
		u.UseNext, u.UsePrev = user, user
		h.UseNext, h.UsePrev = user, user
	} else {
		first := h.UseNext
		fs := r.arena.Get(first)
		last := fs.UsePrev
		ls := r.arena.Get(last)

		u.UsePrev = last
		u.UseNext = first
		ls.UseNext = user
		fs.UsePrev = user
	}
	h.Refcnt++
}

// Unref decrements head's refcount and removes user from head's use ring.
//
// Dropping a non-positive count is a fatal invariant violation, matching the
// spec's documented behavior for unref_rule.
func (r *Registry) Unref(head, user arena.Index) {
	h := r.arena.Get(head)
	if h.Refcnt <= 0 {
		panic("grammar: rule refcount underflow")
	}
	u := r.arena.Get(user)

	if u.UseNext == user {
		h.UseNext, h.UsePrev = arena.Nil, arena.Nil
	} else {
		ns := r.arena.Get(u.UseNext)
		ps := r.arena.Get(u.UsePrev)
		ns.UsePrev = u.UsePrev
		ps.UseNext = u.UseNext
		if h.UseNext == user {
			h.UseNext = u.UseNext
		}
		if h.UsePrev == user {
			h.UsePrev = u.UsePrev
		}
	}
	u.UseNext, u.UsePrev = arena.Nil, arena.Nil
	h.Refcnt--
}

// SoleUse returns the single remaining reference site for a rule whose
// refcount is exactly one — the position utility enforcement must inline
// the rule's body into.
func (r *Registry) SoleUse(head arena.Index) arena.Index {
	h := r.arena.Get(head)
	if h.Refcnt != 1 {
		panic("grammar: SoleUse requires a refcount of exactly one")
	}
	return h.UseNext
}

// InsertAfter splices s into the body ring immediately after p.
func (r *Registry) InsertAfter(p, s arena.Index) {
	ps := r.arena.Get(p)
	next := ps.Next
	ns := r.arena.Get(next)
	ss := r.arena.Get(s)

	ss.Prev = p
	ss.Next = next
	ps.Next = s
	ns.Prev = s
}

// Remove unlinks p from its body ring, decrementing and returning the rule
// it referenced (or [arena.Nil] for a terminal), then recycles p's cell.
func (r *Registry) Remove(p arena.Index) arena.Index {
	s := r.arena.Get(p)
	prev, next := s.Prev, s.Next
	ps := r.arena.Get(prev)
	ns := r.arena.Get(next)
	ps.Next = next
	ns.Prev = prev

	ref := arena.Nil
	if s.Rule != arena.Nil {
		ref = s.Rule
		r.Unref(ref, p)
	}
	r.arena.Free(p)
	return ref
}

// SpliceChain replaces the direct link prevPos -> nextPos with the chain
// first -> ... -> last, without touching anything strictly between first
// and last. It is used to inline a dissolved rule's body (of whatever
// length it has grown to) at the site of its sole remaining reference.
func (r *Registry) SpliceChain(prevPos, first, last, nextPos arena.Index) {
	ps := r.arena.Get(prevPos)
	fs := r.arena.Get(first)
	ls := r.arena.Get(last)
	ns := r.arena.Get(nextPos)

	ps.Next = first
	fs.Prev = prevPos
	ls.Next = nextPos
	ns.Prev = last
}

// Body ranges over the symbols in head's body, in order.
func (r *Registry) Body(head arena.Index) iter.Seq[arena.Index] {
	return func(yield func(arena.Index) bool) {
		h := r.arena.Get(head)
		for p := h.Next; p != head; p = r.arena.Get(p).Next {
			if !yield(p) {
				return
			}
		}
	}
}

// Rules ranges over every rule head in the registry, starting with the main
// rule, in registry order.
func (r *Registry) Rules() iter.Seq[arena.Index] {
	return func(yield func(arena.Index) bool) {
		if r.main == arena.Nil {
			return
		}
		h := r.main
		for {
			if !yield(h) {
				return
			}
			h = r.arena.Get(h).NextR
			if h == r.main {
				return
			}
		}
	}
}
