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

	"github.com/nevillmanning/seqz/internal/codec"
	"github.com/nevillmanning/seqz/internal/dbg"
)

// Decompressor reverses the transmission format a [Compressor] produces. It
// holds no grammar-inference state of its own — the wire format is
// self-describing, so every block's rule table is rebuilt directly from
// what was read — which is why, unlike Compressor, it carries no
// internal/grammar dependency at all.
//
// The zero Decompressor is ready to use.
type Decompressor struct {
	bytesIn  int64
	bytesOut int64
}

// NewDecompressor returns a ready-to-use Decompressor.
func NewDecompressor() *Decompressor { return &Decompressor{} }

// BytesIn returns the total number of compressed bytes consumed so far.
func (d *Decompressor) BytesIn() int64 { return d.bytesIn }

// BytesOut returns the total number of decompressed bytes written so far.
func (d *Decompressor) BytesOut() int64 { return d.bytesOut }

// Decompress reads a full transmission from r and writes the original byte
// stream to w. It returns the number of bytes written, or an error wrapping
// [ErrFailed]: either an I/O failure, or — via [errors.Unwrap] down to a
// *[codec.ParseError] — a malformed transmission.
func (d *Decompressor) Decompress(r io.Reader, w io.Writer) (int64, error) {
	cr := &countingReader{r: r}
	br := bufio.NewReader(cr)
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	dbg.Log(nil, "decompress", "start")

	if err := codec.ReadTransmission(br, bw); err != nil {
		return 0, fail("decompress", err)
	}

	d.bytesIn += cr.n
	d.bytesOut += cw.n
	dbg.Log(nil, "decompress", "done, %d bytes in, %d bytes out", d.bytesIn, d.bytesOut)
	return cw.n, nil
}

// countingReader tallies every byte read through it, the mirror of
// countingWriter, so Decompress can report BytesIn without the codec
// package itself needing to know about accounting.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
