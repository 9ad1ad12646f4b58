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

package blockstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lite-svm/gateway-core/block"
)

// TestRoundTripUntilEviction is spec.md §8 invariant 3: every ProducedBlock
// submitted to Add is retrievable by slot and by blockhash until evicted.
// Staying well inside the retention window, nothing here should evict.
func TestRoundTripUntilEviction(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New(nil)
		n := rapid.IntRange(1, 50).Draw(t, "n")
		type rec struct {
			slot block.Slot
			hash block.Hash
		}
		recs := make([]rec, 0, n)
		for i := 0; i < n; i++ {
			slot := block.Slot(i + 1)
			var h block.Hash
			h[0] = byte(i)
			h[1] = byte(i >> 8)
			info := block.BlockInformation{Slot: slot, BlockHeight: uint64(slot), Blockhash: h, Commitment: block.Finalized}
			s.Add(info)
			recs = append(recs, rec{slot: slot, hash: h})
		}
		for _, r := range recs {
			got, ok := s.GetBlockInfoBySlot(r.slot)
			require.True(t, ok)
			require.Equal(t, r.slot, got.Slot)

			got, ok = s.GetBlockInfoByHash(r.hash)
			require.True(t, ok)
			require.Equal(t, r.slot, got.Slot)
		}
	})
}

// TestIsBlockhashValidMatchesDefinition is spec.md §8 invariant 4:
// is_blockhash_valid(h, c) is true iff the store contains h at commitment
// >= c with latest_height_at(c) - height(h) <= 150.
func TestIsBlockhashValidMatchesDefinition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New(nil)
		latestHeight := rapid.Uint64Range(150, 100000).Draw(t, "latestHeight")
		targetHeight := rapid.Uint64Range(0, latestHeight-1).Draw(t, "targetHeight")

		var target block.Hash
		target[0] = 0xAB
		s.Add(block.BlockInformation{Slot: block.Slot(targetHeight), BlockHeight: targetHeight, Blockhash: target, Commitment: block.Finalized})
		var latestHash block.Hash
		latestHash[0] = 0xCD
		s.Add(block.BlockInformation{Slot: block.Slot(latestHeight), BlockHeight: latestHeight, Blockhash: latestHash, Commitment: block.Finalized})

		res, err := s.IsBlockhashValid(context.Background(), target, block.Finalized)
		require.NoError(t, err)
		want := latestHeight-targetHeight <= block.MaxRecentBlockhashes
		require.Equal(t, want, res.Valid)
	})
}
