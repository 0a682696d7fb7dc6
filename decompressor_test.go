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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevillmanning/seqz"
)

func TestDecompressRejectsMissingSOT(t *testing.T) {
	t.Parallel()

	d := seqz.NewDecompressor()
	var out bytes.Buffer
	_, err := d.Decompress(bytes.NewReader([]byte{0x82}), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, seqz.ErrFailed)
}

func TestDecompressRejectsTrailingBytes(t *testing.T) {
	t.Parallel()

	d := seqz.NewDecompressor()
	var out bytes.Buffer
	_, err := d.Decompress(bytes.NewReader([]byte{0x81, 0x82, 0x00}), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, seqz.ErrFailed)
}

func TestDecompressRejectsGarbageInput(t *testing.T) {
	t.Parallel()

	d := seqz.NewDecompressor()
	var out bytes.Buffer
	_, err := d.Decompress(bytes.NewReader([]byte("not a seqz stream")), &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, seqz.ErrFailed))
}

func TestDecompressEmptyTransmission(t *testing.T) {
	t.Parallel()

	d := seqz.NewDecompressor()
	var out bytes.Buffer
	n, err := d.Decompress(bytes.NewReader([]byte{0x81, 0x82}), &out)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Empty(t, out.Bytes())
	assert.Equal(t, int64(2), d.BytesIn())
}
