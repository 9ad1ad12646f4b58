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

package txtracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lite-svm/gateway-core/block"
)

// TestFinalizedNeverMutatesAgain is spec.md §8 invariant 7: once Finalized,
// no further state transitions alter the record, across an arbitrary
// sequence of further block observations and expiry checks.
func TestFinalizedNeverMutatesAgain(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := New(nil, alwaysAcceptForwarder{}, oneLeader)
		now := time.Now()
		sig, err := tr.Submit(context.Background(), sampleRawTx(byte(rapid.IntRange(0, 255).Draw(t, "marker"))), 0, 1000, 900, now)
		require.NoError(t, err)

		tr.ConsumeBlock(block.ProducedBlock{
			Slot:         1,
			Commitment:   block.Finalized,
			Transactions: []block.Transaction{{Signature: sig}},
		}, now)
		want, _ := tr.Lookup(sig)
		require.Equal(t, Finalized, want.Status)

		n := rapid.IntRange(0, 10).Draw(t, "n")
		for i := 0; i < n; i++ {
			commitment := block.CommitmentLevel(rapid.IntRange(0, 2).Draw(t, "commitment"))
			slot := block.Slot(rapid.Uint64Range(1, 100000).Draw(t, "slot"))
			tr.ConsumeBlock(block.ProducedBlock{
				Slot:         slot,
				Commitment:   commitment,
				Transactions: []block.Transaction{{Signature: sig}},
			}, now.Add(time.Duration(i+1)*time.Second))
			tr.ExpireCheck(rapid.Uint64Range(0, 5000).Draw(t, "finalizedHeight"), now)
		}

		got, _ := tr.Lookup(sig)
		require.Equal(t, want, got)
	})
}
