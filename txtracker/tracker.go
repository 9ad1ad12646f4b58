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
	"fmt"
	"sync"
	"time"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/forwarder"
	"github.com/lite-svm/gateway-core/internal/gatewaylog"
)

const shardCount = 16

// DefaultRetryInterval is the fixed re-submission cadence while a
// transaction is Sent and not yet Landed (spec.md §4.5).
const DefaultRetryInterval = 2 * time.Second

// evictionGrace is the grace window named for terminal (Finalized/Expired)
// records. No code path reads it: the tracker never removes a record, so
// terminal entries stay in the signature map for the life of the process.
const evictionGrace = 2 * time.Minute

type shard struct {
	mu      sync.RWMutex
	entries map[block.Signature]*TxState
}

// Tracker is the transaction lifecycle tracker (C6). Its signature map is
// sharded by the high bits of the signature to distribute writer pressure
// from the block-ingest task (spec.md §5).
type Tracker struct {
	log           *gatewaylog.Logger
	fwd           forwarder.Forwarder
	leaders       func() []string
	retryInterval time.Duration
	shards        [shardCount]*shard
}

// New constructs a Tracker. leaders returns the current fan-out target list
// (current + next-N leaders, spec.md §6) at call time, since the schedule
// changes as slots advance.
func New(log *gatewaylog.Logger, fwd forwarder.Forwarder, leaders func() []string) *Tracker {
	if log == nil {
		log = gatewaylog.NewNop()
	}
	t := &Tracker{
		log:           log.With("component", "tx-tracker"),
		fwd:           fwd,
		leaders:       leaders,
		retryInterval: DefaultRetryInterval,
	}
	for i := range t.shards {
		t.shards[i] = &shard{entries: make(map[block.Signature]*TxState)}
	}
	return t
}

func (t *Tracker) shardFor(sig block.Signature) *shard {
	return t.shards[int(sig[0]>>4)%shardCount]
}

// Submit registers raw as a new tracked transaction, extracts its
// signature, and forwards it to the current leader fan-out. Returns the
// extracted signature on acceptance by at least one leader (spec.md §6:
// send_transaction).
func (t *Tracker) Submit(ctx context.Context, raw []byte, maxRetries int, lastValidBlockHeight uint64, firstSeenSlot block.Slot, now time.Time) (block.Signature, error) {
	sig, err := block.SignatureFromBytes(raw)
	if err != nil {
		return block.Signature{}, fmt.Errorf("submit: %w", err)
	}

	st := &TxState{
		Signature:            sig,
		MaxRetries:           maxRetries,
		FirstSeenSlot:        firstSeenSlot,
		LastValidBlockHeight: lastValidBlockHeight,
		Bytes:                len(raw),
		Status:               Queued,
		raw:                  raw,
	}

	sh := t.shardFor(sig)
	sh.mu.Lock()
	sh.entries[sig] = st
	sh.mu.Unlock()

	targets := t.leaders()
	if err := forwarder.Fanout(ctx, t.fwd, raw, targets); err != nil {
		return sig, fmt.Errorf("submit: forward: %w", err)
	}

	sh.mu.Lock()
	st.Status = Sent
	st.SentTS = now
	sh.mu.Unlock()

	return sig, nil
}

// ConsumeBlock drives tracked signatures through Landed/Confirmed/Finalized
// as their containing block is observed at each commitment level (spec.md
// §4.5). It is a passive subscriber of the merged block stream, with no
// direct reference to the ingest pipeline (spec.md §9).
func (t *Tracker) ConsumeBlock(b block.ProducedBlock, now time.Time) {
	for _, tx := range b.Transactions {
		t.observeOne(tx.Signature, b.Slot, b.Commitment, now)
	}
}

func (t *Tracker) observeOne(sig block.Signature, slot block.Slot, commitment block.CommitmentLevel, now time.Time) {
	sh := t.shardFor(sig)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.entries[sig]
	if !ok || st.Status.Terminal() {
		return
	}

	if st.Status < Landed {
		st.Status = Landed
		st.LandedSlot = slot
		st.LandedTS = now
		st.raw = nil // no longer retried, no need to retain the payload
	}
	if commitment.AtLeast(block.Confirmed) && st.Status < Confirmed {
		st.Status = Confirmed
		st.ConfirmedSlot = slot
		st.ConfirmedTS = now
	}
	if commitment.AtLeast(block.Finalized) && st.Status < Finalized {
		st.Status = Finalized
		st.FinalizedSlot = slot
		st.FinalizedTS = now
	}
}

// ExpireCheck transitions every entry that never reached Landed and whose
// last_valid_block_height has been surpassed at Finalized to Expired
// (spec.md §4.5). finalizedHeight is the block height of the latest
// Finalized observation.
func (t *Tracker) ExpireCheck(finalizedHeight uint64, now time.Time) {
	for _, sh := range t.shards {
		sh.mu.Lock()
		for _, st := range sh.entries {
			if st.Status.Terminal() || st.Status >= Landed {
				continue
			}
			if finalizedHeight > st.LastValidBlockHeight {
				st.Status = Expired
				st.FinalizedTS = now
			}
		}
		sh.mu.Unlock()
	}
}

// GetSignatureStatuses reports the lifecycle status of each requested
// signature, or absent if unknown or not yet at least Landed (spec.md §6).
func (t *Tracker) GetSignatureStatuses(sigs []block.Signature) []*SignatureStatus {
	out := make([]*SignatureStatus, len(sigs))
	for i, sig := range sigs {
		sh := t.shardFor(sig)
		sh.mu.RLock()
		st, ok := sh.entries[sig]
		sh.mu.RUnlock()
		if !ok || st.Status < Landed || st.Status == Expired {
			continue
		}
		slot := st.LandedSlot
		switch st.Status {
		case Confirmed:
			slot = st.ConfirmedSlot
		case Finalized:
			slot = st.FinalizedSlot
		}
		out[i] = &SignatureStatus{Slot: slot, Status: st.Status}
	}
	return out
}

// Lookup returns a copy of the tracked state for sig, for tests and metrics
// reporting.
func (t *Tracker) Lookup(sig block.Signature) (TxState, bool) {
	sh := t.shardFor(sig)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	st, ok := sh.entries[sig]
	if !ok {
		return TxState{}, false
	}
	return *st, true
}

// RunRetryReaper re-sends every Sent-but-not-Landed transaction at the
// configured interval, up to its max retry budget, until ctx is cancelled.
// The retry budget is process-local and non-persistent (spec.md §4.5).
func (t *Tracker) RunRetryReaper(ctx context.Context) {
	ticker := time.NewTicker(t.retryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.retryOnce(ctx)
		}
	}
}

func (t *Tracker) retryOnce(ctx context.Context) {
	type pending struct {
		sig block.Signature
		raw []byte
	}
	var due []pending
	for _, sh := range t.shards {
		sh.mu.Lock()
		for sig, st := range sh.entries {
			if st.Status == Sent && st.RetriesUsed < st.MaxRetries {
				st.RetriesUsed++
				due = append(due, pending{sig: sig, raw: st.raw})
			}
		}
		sh.mu.Unlock()
	}
	if len(due) == 0 {
		return
	}
	targets := t.leaders()
	for _, p := range due {
		if err := forwarder.Fanout(ctx, t.fwd, p.raw, targets); err != nil {
			t.log.Warn("retry forward failed", "signature", p.sig.String(), "err", err)
		}
	}
}
