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

package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFinalizeRunZeroSamplesYieldsZeros(t *testing.T) {
	rm := FinalizeRun(nil, nil, nil, 0, 0, 0)
	require.Zero(t, rm.AvgSendTimeMs)
	require.Zero(t, rm.AvgConfirmationTimeMs)
	require.Zero(t, rm.AvgBytes)
	require.Zero(t, rm.SendTPS)
}

func TestAggregatorAverageOfZeroRunsIsZero(t *testing.T) {
	a := NewAggregator()
	require.Equal(t, RunMetrics{}, a.Average())
}

func TestAggregatorAverageOfIdenticalRunsEqualsThatRun(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rm := RunMetrics{
			TxsSent:               rapid.Uint64Range(0, 1000).Draw(t, "sent"),
			TxsConfirmed:          rapid.Uint64Range(0, 1000).Draw(t, "confirmed"),
			TxsUnconfirmed:        rapid.Uint64Range(0, 1000).Draw(t, "unconfirmed"),
			AvgSendTimeMs:         rapid.Float64Range(0, 1000).Draw(t, "sendMs"),
			AvgConfirmationTimeMs: rapid.Float64Range(0, 1000).Draw(t, "confirmMs"),
			AvgBytes:              rapid.Float64Range(0, 2000).Draw(t, "bytes"),
			SendTPS:               rapid.Float64Range(0, 1000).Draw(t, "tps"),
		}
		runs := rapid.IntRange(1, 10).Draw(t, "runs")
		a := NewAggregator()
		for i := 0; i < runs; i++ {
			a.Add(rm)
		}
		require.Equal(t, rm, a.Average())
	})
}

func TestAggregatorAverageWithAllZeroRunsIsZero(t *testing.T) {
	a := NewAggregator()
	for i := 0; i < 5; i++ {
		a.Add(RunMetrics{})
	}
	require.Equal(t, RunMetrics{}, a.Average())
}

func TestFinalizeRunComputesAverages(t *testing.T) {
	sends := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	confirms := []time.Duration{100 * time.Millisecond}
	sizes := []int{100, 200, 300}
	rm := FinalizeRun(sends, confirms, sizes, 1, 1, time.Second)
	require.InDelta(t, 15.0, rm.AvgSendTimeMs, 0.001)
	require.InDelta(t, 100.0, rm.AvgConfirmationTimeMs, 0.001)
	require.InDelta(t, 200.0, rm.AvgBytes, 0.001)
	require.InDelta(t, 2.0, rm.SendTPS, 0.001)
}

func TestRegistryRegistersWithoutPanicking(t *testing.T) {
	r := NewRegistry()
	r.TxsSubmitted.Inc()
	r.BlocksIngested.WithLabelValues("finalized").Inc()
	mfs, err := r.Gatherer().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}
