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

// Package stats provides instrumentation counter primitives used to build a
// compression report.
//
// The compressor and decompressor are single-threaded, so unlike the
// counters this package is descended from, these are plain accumulators
// rather than atomics.
package stats

// Mean tracks an average statistic.
//
// The zero value is ready to use.
type Mean struct {
	total, samples float64
}

// Record records a sample.
func (m *Mean) Record(sample float64) {
	m.total += sample
	m.samples++
}

// Get returns the mean value of this statistic.
func (m *Mean) Get() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / m.samples
}

// Merge adds all of the samples from that to m.
func (m *Mean) Merge(that *Mean) {
	m.total += that.total
	m.samples += that.samples
}
