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

// Package audit implements the background invariant auditor (C5): it
// subscribes to the merged block stream and asserts, by logging at error
// level only, the commitment-ladder invariants described in spec.md §4.4.
// It never crashes the process — violations indicate upstream bugs, not
// local failures (spec.md §7).
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/internal/gatewaylog"
)

// cleanupEvery is how many slots the auditor observes before sweeping old
// timestamp records (spec.md §4.4: "every 500 slots seen").
const cleanupEvery = 500

// cleanupRetention is how far behind the newest slot a record can lag
// before the periodic sweep drops it (spec.md §4.4: "slot < newest_slot -
// 200").
const cleanupRetention = 200

type slotRecord struct {
	firstSeen [3]time.Time // indexed by CommitmentLevel, zero if not yet seen
}

// Auditor observes a stream of (slot, commitment) arrivals and asserts
// timestamp monotonicity and no-duplicate-level invariants per slot.
type Auditor struct {
	log *gatewaylog.Logger

	mu         sync.Mutex
	records    map[block.Slot]*slotRecord
	newestSlot block.Slot
	seenCount  uint64

	violations struct {
		sync.Mutex
		count uint64
	}
}

// New constructs an Auditor.
func New(log *gatewaylog.Logger) *Auditor {
	if log == nil {
		log = gatewaylog.NewNop()
	}
	return &Auditor{
		log:     log.With("component", "invariant-auditor"),
		records: make(map[block.Slot]*slotRecord),
	}
}

// Observe records the arrival of slot at commitment, asserting invariants
// 1-4 from spec.md §4.4 against previously recorded arrivals. now is passed
// in rather than read from the clock so tests are deterministic.
func (a *Auditor) Observe(slot block.Slot, commitment block.CommitmentLevel, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, ok := a.records[slot]
	if !ok {
		rec = &slotRecord{}
		a.records[slot] = rec
	}

	if !rec.firstSeen[commitment].IsZero() {
		a.violation("duplicate commitment observation for slot", "slot", slot, "commitment", commitment.String())
		return
	}

	switch commitment {
	case block.Confirmed, block.Finalized:
		if rec.firstSeen[block.Processed].IsZero() {
			a.violation("commitment observed without a prior processed observation", "slot", slot, "commitment", commitment.String())
		}
	case block.Processed:
		for _, higher := range []block.CommitmentLevel{block.Confirmed, block.Finalized} {
			if !rec.firstSeen[higher].IsZero() {
				a.violation("processed observation arrived after a higher commitment", "slot", slot, "laterCommitment", higher.String())
			}
		}
	}

	rec.firstSeen[commitment] = now

	for lvl := block.Processed; lvl < block.Finalized; lvl++ {
		lower, higher := rec.firstSeen[lvl], rec.firstSeen[lvl+1]
		if lower.IsZero() || higher.IsZero() {
			continue
		}
		if lower.After(higher) {
			a.violation("timestamp monotonicity violated across commitment levels", "slot", slot, "lower", lvl.String(), "higher", (lvl + 1).String())
		}
	}

	if slot > a.newestSlot {
		a.newestSlot = slot
	}
	a.seenCount++
	if a.seenCount%cleanupEvery == 0 {
		a.cleanupLocked()
	}
}

func (a *Auditor) cleanupLocked() {
	if a.newestSlot < cleanupRetention {
		return
	}
	cutoff := a.newestSlot - cleanupRetention
	for slot := range a.records {
		if slot < cutoff {
			delete(a.records, slot)
		}
	}
}

func (a *Auditor) violation(msg string, kv ...any) {
	a.violations.Lock()
	a.violations.count++
	a.violations.Unlock()
	a.log.Error(msg, kv...)
}

// ViolationCount returns the number of invariant violations logged so far,
// for tests and for an external metrics collector to scrape.
func (a *Auditor) ViolationCount() uint64 {
	a.violations.Lock()
	defer a.violations.Unlock()
	return a.violations.count
}

// Run subscribes to updates until ctx is cancelled, feeding each into
// Observe with the wall-clock time it was received. updates is expected to
// be the merged broadcast channel's Receive loop, wired in by the caller
// (spec.md §9: "no direct reference" between the auditor and the store —
// both are independent subscribers of the same broadcast channel).
func (a *Auditor) Run(ctx context.Context, updates <-chan block.ProducedBlock) {
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-updates:
			if !ok {
				return
			}
			a.Observe(b.Slot, b.Commitment, time.Now())
		}
	}
}
