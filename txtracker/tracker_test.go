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

	"github.com/lite-svm/gateway-core/block"
)

type alwaysAcceptForwarder struct{}

func (alwaysAcceptForwarder) Forward(ctx context.Context, raw []byte, leader string) error {
	return nil
}

func sampleRawTx(marker byte) []byte {
	raw := make([]byte, 1+64+16)
	raw[0] = 1
	raw[1] = marker
	return raw
}

func oneLeader() []string { return []string{"leader-1"} }

// TestTransactionConfirmationPath is scenario S4 from spec.md §8.
func TestTransactionConfirmationPath(t *testing.T) {
	tr := New(nil, alwaysAcceptForwarder{}, oneLeader)
	now := time.Now()
	sig, err := tr.Submit(context.Background(), sampleRawTx(1), 0, 1000, 900, now)
	require.NoError(t, err)

	b := block.ProducedBlock{Slot: 950, Commitment: block.Processed, Transactions: []block.Transaction{{Signature: sig}}}
	tr.ConsumeBlock(b, now.Add(time.Second))

	st, ok := tr.Lookup(sig)
	require.True(t, ok)
	require.Equal(t, Landed, st.Status)

	b.Commitment = block.Confirmed
	tr.ConsumeBlock(b, now.Add(2*time.Second))
	st, _ = tr.Lookup(sig)
	require.Equal(t, Confirmed, st.Status)
	require.Greater(t, st.ConfirmationDuration(), time.Duration(0))

	b.Commitment = block.Finalized
	tr.ConsumeBlock(b, now.Add(3*time.Second))
	st, _ = tr.Lookup(sig)
	require.Equal(t, Finalized, st.Status)

	statuses := tr.GetSignatureStatuses([]block.Signature{sig})
	require.Len(t, statuses, 1)
	require.NotNil(t, statuses[0])
	require.Equal(t, Finalized, statuses[0].Status)
}

// TestTransactionExpiry is scenario S5 from spec.md §8.
func TestTransactionExpiry(t *testing.T) {
	tr := New(nil, alwaysAcceptForwarder{}, oneLeader)
	now := time.Now()
	sig, err := tr.Submit(context.Background(), sampleRawTx(2), 0, 1000, 900, now)
	require.NoError(t, err)

	tr.ExpireCheck(1001, now.Add(time.Second))

	st, ok := tr.Lookup(sig)
	require.True(t, ok)
	require.Equal(t, Expired, st.Status)

	statuses := tr.GetSignatureStatuses([]block.Signature{sig})
	require.Len(t, statuses, 1)
	require.Nil(t, statuses[0])
}

func TestFinalizedIsTerminalToFurtherTransitions(t *testing.T) {
	tr := New(nil, alwaysAcceptForwarder{}, oneLeader)
	now := time.Now()
	sig, err := tr.Submit(context.Background(), sampleRawTx(3), 0, 1000, 900, now)
	require.NoError(t, err)

	b := block.ProducedBlock{Slot: 950, Commitment: block.Finalized, Transactions: []block.Transaction{{Signature: sig}}}
	tr.ConsumeBlock(b, now)
	st, _ := tr.Lookup(sig)
	require.Equal(t, Finalized, st.Status)
	finalizedTS := st.FinalizedTS

	// Expiry check must not reopen a finalized record.
	tr.ExpireCheck(2000, now.Add(time.Hour))
	st, _ = tr.Lookup(sig)
	require.Equal(t, Finalized, st.Status)
	require.Equal(t, finalizedTS, st.FinalizedTS)

	// A later block arrival for the same signature must not alter it either.
	b2 := block.ProducedBlock{Slot: 960, Commitment: block.Processed, Transactions: []block.Transaction{{Signature: sig}}}
	tr.ConsumeBlock(b2, now.Add(2*time.Hour))
	st, _ = tr.Lookup(sig)
	require.Equal(t, Finalized, st.Status)
}

func TestRetryReaperReSubmitsUpToMaxRetries(t *testing.T) {
	calls := 0
	var fwd forwardFunc = func(ctx context.Context, raw []byte, leader string) error {
		calls++
		return nil
	}
	tr := New(nil, fwd, oneLeader)
	tr.retryInterval = time.Millisecond

	sig, err := tr.Submit(context.Background(), sampleRawTx(4), 2, 1000, 900, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, calls) // the initial send

	tr.retryOnce(context.Background())
	tr.retryOnce(context.Background())
	tr.retryOnce(context.Background()) // should be a no-op, retries exhausted

	st, _ := tr.Lookup(sig)
	require.Equal(t, 2, st.RetriesUsed)
	require.Equal(t, 3, calls) // initial send + 2 retries
}

type forwardFunc func(ctx context.Context, raw []byte, leader string) error

func (f forwardFunc) Forward(ctx context.Context, raw []byte, leader string) error {
	return f(ctx, raw, leader)
}
