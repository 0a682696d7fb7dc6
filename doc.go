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

// Package seqz is a block-oriented grammar compressor built on the online
// Sequitur algorithm. It partitions an input byte stream into fixed-size
// blocks and, for each one, infers a context-free grammar whose single
// start rule expands to exactly that block's bytes — maintaining the two
// core Sequitur invariants (digram uniqueness, rule utility) incrementally
// as each byte is appended, rather than in a postprocessing pass.
//
// Use [NewCompressor] to compress a stream and [NewDecompressor] to reverse
// it. Both hold all of their working state in value form, so independent
// instances may be used concurrently (but each instance, like the Sequitur
// engine underneath it, is not itself safe for concurrent use).
//
// The grammar-inference engine and its supporting data structures are in
// internal/grammar; the wire format is in internal/codec.
package seqz
