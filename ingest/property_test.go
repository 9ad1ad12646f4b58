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

package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/ingest/geyser"
)

// TestMergedStreamDedupAndOrdering is spec.md §8 invariants 1 & 2: within a
// single commitment level, the merged stream emits each slot at most once,
// and the emitted subsequence is slot-non-decreasing, no matter how many
// sources race to deliver it or in what order they arrive.
func TestMergedStreamDedupAndOrdering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numSources := rapid.IntRange(1, 3).Draw(t, "numSources")
		numEvents := rapid.IntRange(1, 20).Draw(t, "numEvents")

		chans := make([]chan geyser.Update, numSources)
		sources := make([]*Source, numSources)
		for i := range chans {
			chans[i] = make(chan geyser.Update)
			sources[i] = NewSource(SourceConfig{Endpoint: "fake", Commitment: block.Finalized}, &fakeDialer{ch: chans[i]}, nil)
		}

		mux := NewMultiplexer(block.Finalized, sources, 64, nil)
		sub := mux.Broadcaster().Subscribe()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go mux.Run(ctx)

		type event struct {
			source int
			slot   block.Slot
		}
		events := make([]event, numEvents)
		for i := range events {
			events[i] = event{
				source: rapid.IntRange(0, numSources-1).Draw(t, "source"),
				slot:   block.Slot(rapid.Uint64Range(1, 30).Draw(t, "slot")),
			}
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for _, e := range events {
				select {
				case chans[e.source] <- blockUpdate(e.slot):
				case <-ctx.Done():
					return
				}
			}
		}()
		<-done

		var got []block.Slot
		seen := map[block.Slot]int{}
	collect:
		for {
			recvCtx, recvCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			b, lagged, err := sub.Recv(recvCtx)
			recvCancel()
			if err != nil {
				break collect
			}
			if lagged > 0 {
				continue
			}
			got = append(got, b.Slot)
			seen[b.Slot]++
		}

		for slot, count := range seen {
			require.LessOrEqualf(t, count, 1, "slot %d emitted more than once", slot)
		}
		for i := 1; i < len(got); i++ {
			require.GreaterOrEqualf(t, got[i], got[i-1], "merged stream not slot-non-decreasing at index %d", i)
		}
	})
}
