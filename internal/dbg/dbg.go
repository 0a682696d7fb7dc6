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

// Package dbg provides tracing helpers for the grammar engine and codec.
//
// Tracing is compiled out entirely unless the "debug" build tag is set, so
// the non-debug build pays no cost for the Log call sites sprinkled through
// the engine. This is a simplified rewrite of the teacher repo's
// build-tag-gated internal/debug package (internal/debug/debug.go), not a
// verbatim carryover: the goroutine-ID tagging (github.com/timandy/routine),
// the regexp-based `-hyperpb.filter` log filter, the runtime.Caller-based
// caller-name lookup, and the test-log capture hook all depend on things
// specific to that repo's test harness and are not reproduced here. What
// survives is the shape that matters for this module: an Enabled constant
// switched by the "debug" build tag (see enabled_on.go/enabled_off.go) and a
// Log(ctx, op, format, args...) call compiled away to nothing when disabled.
package dbg

import (
	"fmt"
	"os"
)

// Log writes a trace line to stderr when tracing is enabled.
//
// ctx is an optional slice of printf-style (format, args...) used as a
// caller-supplied prefix (e.g. the engine's current symbol); pass nil to
// omit it.
func Log(ctx []any, op, format string, args ...any) {
	if !Enabled {
		return
	}
	log(ctx, op, format, args...)
}

func log(ctx []any, op, format string, args ...any) {
	if len(ctx) > 0 {
		prefix, rest := ctx[0].(string), ctx[1:]
		fmt.Fprintf(os.Stderr, prefix+" ", rest...)
	}
	fmt.Fprintf(os.Stderr, "%s: "+format+"\n", append([]any{op}, args...)...)
}
