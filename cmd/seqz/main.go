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

// seqz compresses and decompresses streams using a block-oriented Sequitur
// grammar, per the "-h | -d | -c | -c -b N" argument grammar of
// internal/cliopts.
package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/nevillmanning/seqz"
	"github.com/nevillmanning/seqz/internal/cliopts"
)

const usage = `usage: seqz -h | -d | -c | -c -b <blocksize>

  -h            print this message
  -c            compress stdin to stdout, default block size (1024 KiB)
  -c -b N       compress stdin to stdout with an N KiB block size, 1 <= N <= 1024
  -d            decompress stdin to stdout
`

// report is the end-of-run compression summary, optionally emitted as
// YAML with --report yaml (see run).
type report struct {
	BytesIn   int64   `yaml:"bytes_in"`
	BytesOut  int64   `yaml:"bytes_out"`
	Ratio     float64 `yaml:"ratio"`
	RuleCount float64 `yaml:"median_rules_per_block"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	yamlReport := false
	if len(args) > 0 && args[len(args)-1] == "yaml" && len(args) > 1 && args[len(args)-2] == "--report" {
		yamlReport = true
		args = args[:len(args)-2]
	}

	opts, err := cliopts.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	if opts.Help() {
		fmt.Fprint(os.Stdout, usage)
		return 0
	}

	switch {
	case opts.Compress():
		return runCompress(opts.BlockKiB(), yamlReport)
	case opts.Decompress():
		return runDecompress()
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
}

func runCompress(blockKiB int, yamlReport bool) int {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "seqz: refusing to write compressed output to a terminal")
		return 1
	}

	c := seqz.NewCompressor(blockKiB)
	if _, err := c.Compress(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "seqz:", err)
		return 1
	}

	printReport(report{
		BytesIn:   c.BytesIn(),
		BytesOut:  c.BytesOut(),
		Ratio:     c.Ratio.Get(),
		RuleCount: c.Rules.Get(),
	}, yamlReport)
	return 0
}

func runDecompress() int {
	d := seqz.NewDecompressor()
	if _, err := d.Decompress(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "seqz:", err)
		return 1
	}
	return 0
}

func printReport(r report, asYAML bool) {
	if asYAML {
		enc := yaml.NewEncoder(os.Stderr)
		defer enc.Close()
		if err := enc.Encode(r); err != nil {
			fmt.Fprintln(os.Stderr, "seqz: report:", err)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "bytes in: %d, bytes out: %d, ratio: %.4f, median rules/block: %.1f\n",
		r.BytesIn, r.BytesOut, r.Ratio, r.RuleCount)
}
