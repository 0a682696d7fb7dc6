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

package codec

import (
	"bufio"
	"io"

	"github.com/nevillmanning/seqz/internal/dbg"
	"github.com/nevillmanning/seqz/internal/grammar"
	"github.com/nevillmanning/seqz/internal/sync2"
)

// contBuf pools the up-to-3-byte continuation scratch buffer readToken
// fills while decoding a multi-byte encode_int value, since every call
// would otherwise allocate one: a 1024 KiB block can hold upwards of a
// million tokens.
var contBuf = sync2.Pool[[3]byte]{}

// reader tracks the byte offset consumed so far, purely so a [ParseError]
// can report where in the stream it went wrong.
type reader struct {
	*bufio.Reader
	offset int64
}

func (r *reader) ReadByte() (byte, error) {
	b, err := r.Reader.ReadByte()
	if err == nil {
		r.offset++
	}
	return b, err
}

// token is either a marker byte or a decoded encode_int value.
type token struct {
	marker   Marker
	value    int
	isMarker bool
}

// readToken reads one token from r: a single marker byte, or a complete
// encode_int value. It is the single dispatch point the entire decoder
// funnels through, per §4.6: "a continuation byte is a marker ... otherwise
// it starts an encode_int value".
func readToken(r *reader) (token, error) {
	start := r.offset
	b, err := r.ReadByte()
	if err != nil {
		return token{}, err
	}

	if IsContinuationPattern(b) {
		if !IsValidMarker(b) {
			return token{}, parseErr(ErrorInvalidMarker, start)
		}
		return token{marker: b, isMarker: true}, nil
	}

	n, ok := leaderSpan(b)
	if !ok {
		return token{}, parseErr(ErrorInvalidLeader, start)
	}

	buf, drop := contBuf.Get()
	defer drop()
	cont := buf[:n-1]
	for i := range cont {
		c, err := r.ReadByte()
		if err != nil {
			return token{}, err
		}
		if !IsContinuationPattern(c) {
			return token{}, parseErr(ErrorInvalidContinuation, r.offset-1)
		}
		cont[i] = c
	}

	return token{value: decodeIntBody(b, cont)}, nil
}

// ParsedBlock is the decoder's rebuilt rule table for a single block: every
// rule's body, keyed by its head's nonterminal value, plus which of them is
// the start rule.
type ParsedBlock struct {
	Main   int
	Bodies map[int][]int
}

// ParseBlock reads rules from r until EOB, starting immediately after the
// SOB marker the caller has already consumed. The first rule parsed is the
// start rule, per the encoder's "main rule is emitted first" contract
// (§4.5).
//
// The start rule is exempt from the undersized-rule check below: by
// construction (see grammar.Engine) every non-start rule is created with
// a two-symbol body and only ever grows, so "fewer than two body symbols"
// is a sound corruption signal for them, but the start rule can legally
// hold as few as zero (an empty block is never emitted, so in practice one)
// symbols — rejecting it would break round-tripping the boundary cases in
// the spec's own testable-properties section. This is a Go-layer
// resolution to a contradiction the source spec's plain reading of §4.6
// and §8 would otherwise leave open; see DESIGN.md.
func ParseBlock(br *bufio.Reader) (*ParsedBlock, error) {
	return parseBlock(&reader{Reader: br})
}

// parseBlock is ParseBlock over a reader whose offset continues the count of
// the enclosing stream.
func parseBlock(r *reader) (*ParsedBlock, error) {
	pb := &ParsedBlock{Bodies: make(map[int][]int)}

	isMain := true
	for {
		head, body, term, err := parseRule(r)
		if err != nil {
			return nil, err
		}
		if !isMain && len(body) < 2 {
			return nil, parseErr(ErrorUndersizedRule, r.offset)
		}
		if isMain {
			pb.Main = head
			isMain = false
		}
		pb.Bodies[head] = body
		dbg.Log(nil, "codec", "parsed rule %d, %d symbols, term %#x", head, len(body), term)

		if term == EOB {
			return pb, nil
		}
	}
}

// parseRule reads one head value followed by body values until a RD or EOB
// marker, which it consumes and returns as term.
func parseRule(r *reader) (head int, body []int, term Marker, err error) {
	tok, err := readToken(r)
	if err != nil {
		return 0, nil, 0, err
	}
	if tok.isMarker {
		return 0, nil, 0, parseErr(ErrorUnexpectedMarker, r.offset)
	}
	head = tok.value
	if head < grammar.FirstNonterminal {
		return 0, nil, 0, parseErr(ErrorHeadNotNonterminal, r.offset)
	}

	for {
		tok, err := readToken(r)
		if err != nil {
			return 0, nil, 0, err
		}
		if tok.isMarker {
			switch tok.marker {
			case RD, EOB:
				return head, body, tok.marker, nil
			default:
				return 0, nil, 0, parseErr(ErrorUnexpectedMarker, r.offset)
			}
		}
		body = append(body, tok.value)
	}
}

// Expand performs a depth-first expansion of the start rule and writes the
// resulting terminal bytes to w. It uses an explicit stack rather than
// recursion (per the spec's design notes on adversarial-input robustness)
// so a deeply nested grammar cannot overflow the goroutine stack.
func (pb *ParsedBlock) Expand(w *bufio.Writer) error {
	mainBody, ok := pb.Bodies[pb.Main]
	if !ok {
		return parseErr(ErrorUndefinedNonterminal, 0)
	}

	type frame struct {
		body []int
		pos  int
	}
	stack := []frame{{body: mainBody}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.pos >= len(top.body) {
			stack = stack[:len(stack)-1]
			continue
		}
		v := top.body[top.pos]
		top.pos++

		if v < grammar.FirstNonterminal {
			if err := w.WriteByte(byte(v)); err != nil {
				return err
			}
			continue
		}
		if v > grammar.MaxNonterminal {
			return parseErr(ErrorNonterminalRange, 0)
		}
		body, ok := pb.Bodies[v]
		if !ok {
			return parseErr(ErrorUndefinedNonterminal, 0)
		}
		stack = append(stack, frame{body: body})
	}
	return nil
}

// ReadTransmission parses a full `SOT (SOB rule (RD rule)* EOB)* EOT` stream
// from r, writing every block's expansion to w in order, then confirms no
// trailing bytes follow EOT.
func ReadTransmission(r *bufio.Reader, w *bufio.Writer) error {
	cr := &reader{Reader: r}

	tok, err := readToken(cr)
	if err == io.EOF {
		return parseErr(ErrorMissingSOT, 0)
	}
	if err != nil {
		return err
	}
	if !tok.isMarker || tok.marker != SOT {
		return parseErr(ErrorMissingSOT, 0)
	}

	for {
		tok, err := readToken(cr)
		if err == io.EOF {
			return parseErr(ErrorMissingEOT, cr.offset)
		}
		if err != nil {
			return err
		}
		if !tok.isMarker {
			return parseErr(ErrorUnexpectedMarker, cr.offset)
		}
		switch tok.marker {
		case SOB:
			block, err := parseBlock(cr)
			if err == io.EOF {
				return parseErr(ErrorMissingEOT, cr.offset)
			}
			if err != nil {
				return err
			}
			if err := block.Expand(w); err != nil {
				return err
			}
		case EOT:
			if _, err := r.ReadByte(); err != io.EOF {
				return parseErr(ErrorTrailingBytes, cr.offset)
			}
			return w.Flush()
		default:
			return parseErr(ErrorUnexpectedMarker, cr.offset)
		}
	}
}
