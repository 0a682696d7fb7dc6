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

package seqz_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevillmanning/seqz"
)

// roundTrip compresses in, then decompresses the result, and returns the
// final bytes alongside the compressed size.
func roundTrip(t *testing.T, blockKiB int, in []byte) (out []byte, compressedLen int) {
	t.Helper()

	var compressed bytes.Buffer
	c := seqz.NewCompressor(blockKiB)
	_, err := c.Compress(bytes.NewReader(in), &compressed)
	require.NoError(t, err)

	var decompressed bytes.Buffer
	d := seqz.NewDecompressor()
	_, err = d.Decompress(bytes.NewReader(compressed.Bytes()), &decompressed)
	require.NoError(t, err)

	return decompressed.Bytes(), compressed.Len()
}

func TestRoundTripEmptyInput(t *testing.T) {
	t.Parallel()

	out, compressedLen := roundTrip(t, 1, nil)
	assert.Empty(t, out)
	// Exactly SOT EOT: 2 bytes, no blocks at all.
	assert.Equal(t, 2, compressedLen)
}

func TestRoundTripSingleByte(t *testing.T) {
	t.Parallel()

	out, _ := roundTrip(t, 1, []byte("A"))
	assert.Equal(t, []byte("A"), out)
}

func TestRoundTripRepeatingPattern(t *testing.T) {
	t.Parallel()

	in := []byte(strings.Repeat("abc", 100))
	out, _ := roundTrip(t, 1, in)
	assert.Equal(t, in, out)
}

func TestRoundTripAllByteValues(t *testing.T) {
	t.Parallel()

	in := make([]byte, 256)
	for i := range in {
		in[i] = byte(i)
	}
	out, _ := roundTrip(t, 1, in)
	assert.Equal(t, in, out)
}

func TestRoundTripExactBlockBoundary(t *testing.T) {
	t.Parallel()

	// Block size of 1 KiB; feed exactly two blocks' worth of bytes so the
	// second block starts precisely at the boundary.
	in := bytes.Repeat([]byte{'z'}, 2*1024)
	out, _ := roundTrip(t, 1, in)
	assert.Equal(t, in, out)
}

func TestRoundTripSpanningMultipleBlocks(t *testing.T) {
	t.Parallel()

	in := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200))
	out, _ := roundTrip(t, 1, in)
	assert.Equal(t, in, out)
}

func TestCompressReportsByteCounts(t *testing.T) {
	t.Parallel()

	in := []byte(strings.Repeat("mississippi", 50))
	var compressed bytes.Buffer
	c := seqz.NewCompressor(1)
	n, err := c.Compress(bytes.NewReader(in), &compressed)
	require.NoError(t, err)

	assert.Equal(t, int64(len(in)), c.BytesIn())
	assert.Equal(t, n, c.BytesOut())
	assert.Equal(t, int64(compressed.Len()), c.BytesOut())
}

func TestNewCompressorPanicsOnBadBlockSize(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { seqz.NewCompressor(0) })
	assert.Panics(t, func() { seqz.NewCompressor(seqz.MaxBlockKiB + 1) })
}
