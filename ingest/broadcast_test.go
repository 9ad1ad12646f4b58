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

	"github.com/stretchr/testify/require"

	"github.com/lite-svm/gateway-core/block"
)

func blockAtSlot(slot block.Slot) block.ProducedBlock {
	return block.ProducedBlock{Slot: slot, Commitment: block.Finalized}
}

// TestLaggingConsumerObservesGap is scenario S2 from spec.md §8: a consumer
// with a shallow queue depth that doesn't read promptly sees Lagged(n)
// followed by the blocks it could still observe; a prompt consumer sees
// every block.
func TestLaggingConsumerObservesGap(t *testing.T) {
	br := NewBroadcaster(4)
	x := br.Subscribe()
	y := br.Subscribe()

	ctx := context.Background()

	var gotY []block.Slot
	for i := block.Slot(1); i <= 10; i++ {
		br.Publish(blockAtSlot(i))
		b, lagged, err := y.Recv(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, lagged)
		gotY = append(gotY, b.Slot)
	}

	b, lagged, err := x.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, 6, lagged)
	require.Equal(t, block.ProducedBlock{}, b)

	var got []block.Slot
	for i := 0; i < 4; i++ {
		b, lagged, err := x.Recv(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, lagged)
		got = append(got, b.Slot)
	}
	require.Equal(t, []block.Slot{7, 8, 9, 10}, got)

	require.Equal(t, []block.Slot{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, gotY)
}

func TestRecvBlocksUntilPublishOrCancel(t *testing.T) {
	br := NewBroadcaster(4)
	sub := br.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := sub.Recv(ctx)
		done <- err
	}()
	cancel()
	require.Error(t, <-done)

	sub2 := br.Subscribe()
	done2 := make(chan block.ProducedBlock, 1)
	go func() {
		b, _, _ := sub2.Recv(context.Background())
		done2 <- b
	}()
	br.Publish(blockAtSlot(42))
	require.Equal(t, block.Slot(42), (<-done2).Slot)
}
