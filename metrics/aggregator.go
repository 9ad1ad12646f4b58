// Copyright 2026 The Gateway Core Authors
// This file is part of gateway-core.
//
// gateway-core is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gateway-core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with gateway-core. If not, see <http://www.gnu.org/licenses/>.

// Package metrics implements the per-run metrics aggregator (C8) the
// benchmark harness consumes, and the process-wide Prometheus registry the
// out-of-scope HTTP metrics endpoint scrapes (spec.md §4.7, §9).
package metrics

import "time"

// RunMetrics is one benchmark run's outcome, named to match the original
// Rust harness's field set (bench/src/metrics.rs) under Go casing, as noted
// in SPEC_FULL.md.
type RunMetrics struct {
	TxsSent               uint64
	TxsConfirmed          uint64
	TxsUnconfirmed        uint64
	AvgSendTimeMs         float64
	AvgConfirmationTimeMs float64
	AvgBytes              float64
	SendTPS               float64
}

// FinalizeRun derives a RunMetrics from raw per-transaction samples.
// Division by zero runs yields zeros, not NaN (spec.md §4.7).
func FinalizeRun(sends []time.Duration, confirmations []time.Duration, bytesSent []int, confirmed, unconfirmed uint64, wallClock time.Duration) RunMetrics {
	rm := RunMetrics{
		TxsSent:        uint64(len(sends)),
		TxsConfirmed:   confirmed,
		TxsUnconfirmed: unconfirmed,
	}
	if len(sends) > 0 {
		rm.AvgSendTimeMs = avgMillis(sends)
	}
	if len(confirmations) > 0 {
		rm.AvgConfirmationTimeMs = avgMillis(confirmations)
	}
	if len(bytesSent) > 0 {
		sum := 0
		for _, b := range bytesSent {
			sum += b
		}
		rm.AvgBytes = float64(sum) / float64(len(bytesSent))
	}
	if wallClock > 0 {
		rm.SendTPS = float64(rm.TxsSent) / wallClock.Seconds()
	}
	return rm
}

func avgMillis(ds []time.Duration) float64 {
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return float64(sum.Milliseconds()) / float64(len(ds))
}

// Aggregator rolls multiple RunMetrics up into an average-across-runs view.
// Finalizing is idempotent: calling Average twice without adding further
// runs returns the same result (spec.md §4.7).
type Aggregator struct {
	runs []RunMetrics
}

// NewAggregator constructs an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add records one run's metrics.
func (a *Aggregator) Add(rm RunMetrics) {
	a.runs = append(a.runs, rm)
}

// Average rolls every recorded run up into a single RunMetrics whose numeric
// fields are the arithmetic mean across runs. With zero runs recorded it
// returns the zero value.
func (a *Aggregator) Average() RunMetrics {
	n := len(a.runs)
	if n == 0 {
		return RunMetrics{}
	}
	var sum, mean RunMetrics
	for i, r := range a.runs {
		k := float64(i + 1)
		sum.TxsSent += r.TxsSent
		sum.TxsConfirmed += r.TxsConfirmed
		sum.TxsUnconfirmed += r.TxsUnconfirmed
		// Running means, exact when every run carries the same value.
		mean.AvgSendTimeMs += (r.AvgSendTimeMs - mean.AvgSendTimeMs) / k
		mean.AvgConfirmationTimeMs += (r.AvgConfirmationTimeMs - mean.AvgConfirmationTimeMs) / k
		mean.AvgBytes += (r.AvgBytes - mean.AvgBytes) / k
		mean.SendTPS += (r.SendTPS - mean.SendTPS) / k
	}
	return RunMetrics{
		TxsSent:               sum.TxsSent / uint64(n),
		TxsConfirmed:          sum.TxsConfirmed / uint64(n),
		TxsUnconfirmed:        sum.TxsUnconfirmed / uint64(n),
		AvgSendTimeMs:         mean.AvgSendTimeMs,
		AvgConfirmationTimeMs: mean.AvgConfirmationTimeMs,
		AvgBytes:              mean.AvgBytes,
		SendTPS:               mean.SendTPS,
	}
}

// RunCount reports how many runs have been recorded.
func (a *Aggregator) RunCount() int { return len(a.runs) }
