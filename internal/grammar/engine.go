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

package grammar

import (
	"github.com/nevillmanning/seqz/internal/arena"
	"github.com/nevillmanning/seqz/internal/dbg"
	"github.com/nevillmanning/seqz/internal/digram"
)

// Engine is the online Sequitur enforcement loop: it owns a [Registry] and
// the digram index, and keeps both of the grammar's invariants — digram
// uniqueness and rule utility — satisfied after every appended byte.
//
// The source this engine is modeled on does not actually show a
// check_digram implementation; the substitution and utility-enforcement
// rules below follow the canonical online Sequitur algorithm, which is what
// the surrounding block codec assumes.
type Engine struct {
	Reg   *Registry
	index digram.Table
}

// NewEngine returns an Engine over an already-constructed main rule.
//
// The caller is expected to have called reg.NewRule/reg.AddRule to set up
// the main rule before appending any bytes.
func NewEngine(reg *Registry) *Engine {
	return &Engine{Reg: reg}
}

// Reset clears the digram index, for reuse across blocks. The caller is
// responsible for resetting the Registry itself.
func (e *Engine) Reset() {
	e.index.Reset()
}

// Append adds a terminal byte to the end of the main rule's body and
// enforces the invariants for the digram this creates, if any.
func (e *Engine) Append(value int) {
	r := e.Reg
	main := r.Main()
	head := r.Sym(main)
	tail := head.Prev

	s := r.NewSymbol(value, arena.Nil)
	e.insertAfter(tail, s)

	if tail != main {
		e.CheckDigram(tail)
	}
}

// pairAt returns the digram formed by p and its successor.
func (e *Engine) pairAt(p arena.Index) digram.Pair {
	r := e.Reg
	s := r.Sym(p)
	return digram.Pair{A: s.Value, B: r.Sym(s.Next).Value}
}

// insertAfter splices s after p, first invalidating whatever digram entry
// was indexed for p's current (about to change) successor relationship.
func (e *Engine) insertAfter(p, s arena.Index) {
	r := e.Reg
	if !r.IsHead(p) && !r.IsHead(r.Sym(p).Next) {
		e.index.RemoveIfMatches(e.pairAt(p), p)
	}
	r.InsertAfter(p, s)
}

// removeSymbol unlinks and recycles p, first invalidating any digram entries
// that named p or p's predecessor (both relationships are about to change),
// then cascades utility enforcement if this dropped p's referenced rule to
// a refcount of exactly one.
func (e *Engine) removeSymbol(p arena.Index) {
	r := e.Reg
	s := r.Sym(p)

	if !r.IsHead(p) && !r.IsHead(s.Next) {
		e.index.RemoveIfMatches(e.pairAt(p), p)
	}
	if !r.IsHead(s.Prev) && !r.IsHead(p) {
		e.index.RemoveIfMatches(e.pairAt(s.Prev), s.Prev)
	}

	ref := r.Remove(p)
	if ref != arena.Nil && r.Sym(ref).Refcnt == 1 {
		e.enforceUtility(ref)
	}
}

// CheckDigram is check_digram: it inspects the digram at body position p
// (whose successor must also be a body symbol, not a head) and enforces
// digram uniqueness, recursing through every structural change it makes.
//
// This is true recursion rather than a loop that re-reads p after each
// substitution: a substitution can free p itself (if further re-examination
// folds it into yet another rule), so the only safe way to "keep checking"
// is for each substitution to recurse on the positions it just created,
// never touching p again afterward.
func (e *Engine) CheckDigram(p arena.Index) {
	r := e.Reg
	s := r.Sym(p)
	if r.IsHead(p) || r.IsHead(s.Next) {
		return
	}

	pair := e.pairAt(p)
	q, ok := e.index.Lookup(pair)
	if !ok {
		e.index.Insert(pair, p)
		return
	}
	if q == p {
		return
	}

	qs := r.Sym(q)

	// Overlap guard: a run like "aaa" produces two adjacent occurrences of
	// the same digram that share a symbol (q.Next == p, or its mirror
	// p.Next == q). Substituting one out from under the other would
	// corrupt the ring, so no substitution is made here: the digram entry
	// moves to p, the newer occurrence. Inside a run of one repeated byte
	// every append hits this case again, so the run's digrams are never
	// factored against each other (a run alone, like "zzzz", forms no rule).
	if qs.Next == p || s.Next == q {
		e.index.Insert(pair, p)
		return
	}

	if headIdx, ok := soleBodyRuleOf(r, q); ok {
		dbg.Log(nil, "digram", "case A: %v at %v reuses rule %v", pair, p, headIdx)
		e.substituteCaseA(p, headIdx)
		return
	}

	dbg.Log(nil, "digram", "case B: %v at %v/%v forms new rule", pair, p, q)
	e.substituteCaseB(p, q)
}

// soleBodyRuleOf reports whether q is the entire body of some rule: q's
// predecessor is a head H, and q's successor's successor is that same H.
func soleBodyRuleOf(r *Registry, q arena.Index) (head arena.Index, ok bool) {
	qs := r.Sym(q)
	if !r.IsHead(qs.Prev) {
		return arena.Nil, false
	}
	h := qs.Prev
	second := r.Sym(qs.Next)
	if second.Next != h {
		return arena.Nil, false
	}
	return h, true
}

// substituteCaseA replaces the digram at p (and its successor) with a
// single nonterminal symbol referencing the existing rule headIdx, then
// re-examines the boundary digrams this creates. It returns the position of
// the newly inserted nonterminal, for the caller to continue its scan from.
func (e *Engine) substituteCaseA(p, headIdx arena.Index) arena.Index {
	r := e.Reg
	ps := r.Sym(p)
	afterP := ps.Next
	prevPos := ps.Prev

	e.removeSymbol(afterP)
	e.removeSymbol(p)

	nt := r.NewSymbol(r.Sym(headIdx).Value, headIdx)
	e.insertAfter(prevPos, nt)

	e.CheckDigram(prevPos)
	e.CheckDigram(nt)
	return nt
}

// substituteCaseB creates a brand new rule whose body is exactly the
// digram (p, p.Next), replaces both occurrences (at p and at q) with a
// nonterminal referencing it, and re-examines all four resulting boundary
// digrams. It returns the position of the replacement at p, for the caller
// to continue its scan from.
func (e *Engine) substituteCaseB(p, q arena.Index) arena.Index {
	r := e.Reg
	ps := r.Sym(p)
	afterP := ps.Next
	afterPs := r.Sym(afterP)

	b1Val, b1Rule := ps.Value, ps.Rule
	b2Val, b2Rule := afterPs.Value, afterPs.Rule

	ntVal := r.AllocNonterminal()
	head := r.NewRule(ntVal)
	r.AddRule(head)

	// Build the new rule's two-symbol body. Creating these before removing
	// the originals means a rule that b1/b2 themselves reference never sees
	// its refcount dip below its true value along the way.
	s1 := r.NewSymbol(b1Val, b1Rule)
	r.InsertAfter(head, s1)
	s2 := r.NewSymbol(b2Val, b2Rule)
	r.InsertAfter(s1, s2)

	nt1 := e.replaceOccurrence(p, ntVal, head)
	nt2 := e.replaceOccurrence(q, ntVal, head)

	e.index.Insert(digram.Pair{A: b1Val, B: b2Val}, s1)

	e.CheckDigram(r.Sym(nt1).Prev)
	e.CheckDigram(nt1)
	e.CheckDigram(r.Sym(nt2).Prev)
	e.CheckDigram(nt2)

	return nt1
}

// replaceOccurrence removes the two symbols at pos and pos.Next and splices
// in a single nonterminal symbol referencing head in their place.
func (e *Engine) replaceOccurrence(pos arena.Index, value int, head arena.Index) arena.Index {
	r := e.Reg
	s := r.Sym(pos)
	prevPos := s.Prev
	afterPos := s.Next

	e.removeSymbol(afterPos)
	e.removeSymbol(pos)

	nt := r.NewSymbol(value, head)
	e.insertAfter(prevPos, nt)
	return nt
}

// enforceUtility inlines the body of a rule that has dropped to a single
// remaining use back into that use site, then deletes the rule.
func (e *Engine) enforceUtility(head arena.Index) {
	r := e.Reg
	t := r.SoleUse(head)
	prevPos := r.Sym(t).Prev
	nextPos := r.Sym(t).Next

	e.removeSymbol(t) // Drops head's refcount to zero.

	h := r.Sym(head)
	first, last := h.Next, h.Prev

	if !r.IsHead(prevPos) {
		e.index.RemoveIfMatches(e.pairAt(prevPos), prevPos)
	}
	r.SpliceChain(prevPos, first, last, nextPos)
	r.DeleteRule(head)

	e.CheckDigram(prevPos)
	e.CheckDigram(last)
}
