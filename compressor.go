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
	"bufio"
	"io"
	"iter"

	"github.com/nevillmanning/seqz/internal/arena"
	"github.com/nevillmanning/seqz/internal/codec"
	"github.com/nevillmanning/seqz/internal/dbg"
	"github.com/nevillmanning/seqz/internal/grammar"
	"github.com/nevillmanning/seqz/internal/scc"
	"github.com/nevillmanning/seqz/internal/stats"
)

// MinBlockKiB and MaxBlockKiB bound the block size the CLI and
// [NewCompressor] accept, per spec §6. DefaultBlockKiB is used when no
// explicit block size is given.
const (
	MinBlockKiB     = 1
	MaxBlockKiB     = 1024
	DefaultBlockKiB = 1024
)

// arenaSlack is the multiple of a block's byte budget the symbol arena is
// sized to. The source treats arena capacity as a fixed compile-time
// constant, generous enough for its assignment's fixed block sizes; this
// package instead derives it from the configured block size, since an
// instance-scoped Compressor has no single compile time to fix it at. A
// block can never have more live
// symbols than roughly its byte budget — one per input byte in the worst
// (incompressible) case — plus headroom for the handful of extra cells
// (new rule heads and their two-symbol bodies) transiently alive
// mid-substitution.
const arenaSlack = 3

// Compressor compresses an input stream into the block transmission format
// of spec §4.5, inferring one grammar per block independently.
//
// The zero Compressor is not ready to use; construct one with
// [NewCompressor].
type Compressor struct {
	blockBytes int
	reg        *grammar.Registry
	engine     *grammar.Engine

	bytesIn  int64
	bytesOut int64

	// Ratio tracks output/input bytes per block; Rules tracks the number of
	// rules (including main) emitted per block. Both feed the CLI's
	// end-of-run report.
	Ratio stats.Mean
	Rules stats.Median
}

// NewCompressor returns a Compressor that partitions its input into blocks
// of blockKiB KiB, per spec §6. blockKiB must be in [MinBlockKiB,
// MaxBlockKiB]; NewCompressor panics otherwise, since validating that range
// is the CLI argument parser's job, not this constructor's.
func NewCompressor(blockKiB int) *Compressor {
	if blockKiB < MinBlockKiB || blockKiB > MaxBlockKiB {
		panic("seqz: block size out of range")
	}
	blockBytes := blockKiB * 1024
	reg := grammar.NewRegistry(blockBytes * arenaSlack)
	return &Compressor{
		blockBytes: blockBytes,
		reg:        reg,
		engine:     grammar.NewEngine(reg),
		Rules:      *stats.NewMedian(256),
	}
}

// BytesIn returns the total number of input bytes consumed so far.
func (c *Compressor) BytesIn() int64 { return c.bytesIn }

// BytesOut returns the total number of compressed bytes emitted so far.
func (c *Compressor) BytesOut() int64 { return c.bytesOut }

// Compress reads all of r, writing the compressed transmission to w. It
// returns the number of compressed bytes written, or an error wrapping
// [ErrFailed] on any I/O failure.
func (c *Compressor) Compress(r io.Reader, w io.Writer) (int64, error) {
	br := bufio.NewReader(r)
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	dbg.Log(nil, "compress", "start")

	if err := codec.WriteSOT(bw); err != nil {
		return 0, fail("compress", err)
	}

	next, err := br.ReadByte()
	for err != io.EOF {
		if err != nil {
			return 0, fail("compress", err)
		}
		if next, err = c.compressBlock(br, bw, cw, next); err != nil && err != io.EOF {
			return 0, fail("compress", err)
		}
	}

	if err := codec.WriteEOT(bw); err != nil {
		return 0, fail("compress", err)
	}

	c.bytesOut += cw.n
	dbg.Log(nil, "compress", "done, %d bytes in, %d bytes out", c.bytesIn, c.bytesOut)
	return cw.n, nil
}

// compressBlock reads up to c.blockBytes more bytes from br, starting with
// the byte already read into first (primed by the caller so that an EOF
// discovered mid-block ends the block early instead of losing that byte),
// infers a grammar for them, and serializes it. It returns the first byte
// of the next block and io.EOF once the stream is exhausted.
func (c *Compressor) compressBlock(br *bufio.Reader, bw *bufio.Writer, cw *countingWriter, first byte) (byte, error) {
	c.reg.Reset()
	c.engine.Reset()

	head := c.reg.NewRule(c.reg.AllocNonterminal())
	c.reg.AddRule(head)

	outStart := cw.n
	inStart := c.bytesIn

	next, nextErr := first, error(nil)
	blockIn := 0
	for {
		c.engine.Append(int(next))
		c.bytesIn++
		blockIn++
		if blockIn >= c.blockBytes {
			next, nextErr = br.ReadByte()
			break
		}
		next, nextErr = br.ReadByte()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			return 0, nextErr
		}
	}

	if dbg.Enabled {
		assertAcyclic(c.reg)
	}
	dbg.Log(nil, "compress", "block: %d bytes in", blockIn)

	ruleCount := 0
	for range c.reg.Rules() {
		ruleCount++
	}
	c.Rules.Record(float64(ruleCount))

	if err := codec.WriteBlock(bw, c.reg); err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}

	if blockInBytes := c.bytesIn - inStart; blockInBytes > 0 {
		c.Ratio.Record(float64(cw.n-outStart) / float64(blockInBytes))
	}

	return next, nextErr
}

// assertAcyclic is a debug-only invariant check: the rule-dependency graph
// built by one block's grammar inference must be acyclic, since every rule
// must expand to a finite string of terminals. A cycle here means
// the engine produced a malformed grammar — a programming bug, not a data
// problem — so this only runs under the "debug" build tag.
func assertAcyclic(reg *grammar.Registry) {
	deps := func(head arena.Index) iter.Seq[arena.Index] {
		return func(yield func(arena.Index) bool) {
			for pos := range reg.Body(head) {
				s := reg.Sym(pos)
				if s.Rule == arena.Nil {
					continue
				}
				if !yield(s.Rule) {
					return
				}
			}
		}
	}

	main := reg.Main()
	if main == arena.Nil {
		return
	}
	dag := scc.Sort(main, deps)
	if !dag.Acyclic() {
		panic("seqz: rule dependency graph has a cycle")
	}
}

// countingWriter tallies every byte written through it, used to measure the
// exact size of the compressed transmission (and each block's contribution
// to it) for the end-of-run report, without threading a counter through
// every codec call site.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
