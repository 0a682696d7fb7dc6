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

	"github.com/nevillmanning/seqz/internal/arena"
	"github.com/nevillmanning/seqz/internal/dbg"
	"github.com/nevillmanning/seqz/internal/grammar"
)

// WriteSOT writes the transmission-start marker.
func WriteSOT(w *bufio.Writer) error { return w.WriteByte(SOT) }

// WriteEOT writes the transmission-end marker and flushes w.
func WriteEOT(w *bufio.Writer) error {
	if err := w.WriteByte(EOT); err != nil {
		return err
	}
	return w.Flush()
}

// WriteBlock serializes every rule currently in reg as one SOB-delimited
// block: the start rule first, then every other rule in registry order,
// separated by RD, per §4.5's transmission grammar.
func WriteBlock(w *bufio.Writer, reg *grammar.Registry) error {
	if err := w.WriteByte(SOB); err != nil {
		return err
	}

	first := true
	for head := range reg.Rules() {
		if !first {
			if err := w.WriteByte(RD); err != nil {
				return err
			}
		}
		first = false

		if err := writeRule(w, reg, head); err != nil {
			return err
		}
	}

	dbg.Log(nil, "codec", "wrote block")
	return w.WriteByte(EOB)
}

func writeRule(w *bufio.Writer, reg *grammar.Registry, head arena.Index) error {
	s := reg.Sym(head)
	if err := EncodeInt(w, s.Value); err != nil {
		return err
	}
	for pos := range reg.Body(head) {
		if err := EncodeInt(w, reg.Sym(pos).Value); err != nil {
			return err
		}
	}
	return nil
}
