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
	"errors"
	"fmt"
)

const (
	ErrorOk ErrorCode = iota
	ErrorInvalidMarker
	ErrorInvalidLeader
	ErrorInvalidContinuation
	ErrorUndersizedRule
	ErrorHeadNotNonterminal
	ErrorUnexpectedMarker
	ErrorUndefinedNonterminal
	ErrorNonterminalRange
	ErrorMissingSOT
	ErrorMissingEOT
	ErrorTrailingBytes
	ErrorValueRange
)

var errs = [...]error{
	ErrorOk:                   nil,
	ErrorInvalidMarker:        errors.New("continuation byte does not name one of the five reserved markers"),
	ErrorInvalidLeader:        errors.New("byte is neither a marker nor a valid encode_int leader"),
	ErrorInvalidContinuation:  errors.New("expected a 10xxxxxx continuation byte"),
	ErrorUndersizedRule:       errors.New("non-start rule body has fewer than two symbols"),
	ErrorHeadNotNonterminal:   errors.New("rule head value is below FirstNonterminal"),
	ErrorUnexpectedMarker:     errors.New("marker not valid in this position"),
	ErrorUndefinedNonterminal: errors.New("nonterminal reference has no entry in the rule map"),
	ErrorNonterminalRange:     errors.New("nonterminal value exceeds the wire format's maximum"),
	ErrorMissingSOT:           errors.New("transmission does not begin with SOT"),
	ErrorMissingEOT:           errors.New("transmission does not end with EOT"),
	ErrorTrailingBytes:        errors.New("trailing bytes after EOT"),
	ErrorValueRange:           errors.New("value has no valid encode_int representation"),
}

// ErrorCode identifies one of the ways a [ParseError] can fail.
type ErrorCode int

// ParseError is returned by every decode-side failure in this package: a
// malformed marker, an undersized rule, an unresolved nonterminal, or a
// framing violation at the transmission level. The spec treats all of these
// uniformly as "surfaced identically to I/O errors" by the caller; offset
// is kept around for diagnostics, not for recovery.
type ParseError struct {
	code   ErrorCode
	offset int64
}

// Offset returns the byte offset within the stream at which the error was
// detected. Errors found while expanding an already parsed block carry no
// stream position and report 0.
func (e *ParseError) Offset() int64 { return e.offset }

// Unwrap implements error unwrapping via [errors.Unwrap].
func (e *ParseError) Unwrap() error { return errs[e.code] }

// Error implements [error].
func (e *ParseError) Error() string {
	return fmt.Sprintf("codec: parse error at offset %d/%#x: %v", e.offset, e.offset, e.Unwrap())
}

func parseErr(code ErrorCode, offset int64) error {
	return &ParseError{code: code, offset: offset}
}
