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

package seqz

import (
	"errors"
	"fmt"
)

// ErrFailed is the sentinel both Compress and Decompress wrap every failure
// in: a short write, a short read, or — for Decompress — any malformed-input
// condition from internal/codec. The spec describes this uniformly as "an
// end-of-file sentinel"; io.EOF itself is Go's spelling for a clean end of
// input, so rather than overload it this package follows the same pattern
// the rest of the corpus uses for its own parse/runtime errors (see
// internal/codec.ParseError) of a distinct sentinel callers can
// [errors.Is] against, with [errors.Unwrap] reaching the underlying cause.
var ErrFailed = errors.New("seqz: operation failed")

func fail(op string, cause error) error {
	return fmt.Errorf("seqz: %s: %w: %w", op, cause, ErrFailed)
}
