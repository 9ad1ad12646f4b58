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

// Package stakemap is the concrete instantiation of the takable map (C7)
// spec.md §4.6 and §9 describe abstractly: an epoch-boundary stake
// delegation recomputer, grounded on
// _examples/original_source/stake_vote/src/stake.rs.
package stakemap

import (
	"context"
	"time"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/internal/gatewaylog"
	"github.com/lite-svm/gateway-core/internal/numeric"
	"github.com/lite-svm/gateway-core/takable"
)

// Entry is one validator's stake delegation as of UpdateSlot.
type Entry struct {
	Pubkey     string
	Lamports   uint64
	UpdateSlot block.Slot
}

// Map is the streaming-ingest-owned delegation table: pubkey -> Entry.
type Map = takable.Map[map[string]Entry]

// New constructs an empty stake delegation map.
func New() *Map {
	return takable.New(make(map[string]Entry))
}

// AddDelegation is the only operation the streaming ingest task calls
// against the map. Resolution on conflict is the per-action update_slot
// tie-break spec.md §8 scenario S6 names: a newer slot always wins,
// regardless of arrival order.
func AddDelegation(m *Map, entry Entry) {
	m.AddValue(func(table map[string]Entry) {
		existing, ok := table[entry.Pubkey]
		if !ok || entry.UpdateSlot >= existing.UpdateSlot {
			table[entry.Pubkey] = entry
		}
	}, true)
}

// Totals is the rolled-up result of one recomputation pass.
type Totals struct {
	Entries      int
	TotalLamports uint64
}

// Recomputer periodically takes the map, recomputes its totals (entry count
// and summed lamports, unweighted), and merges it back — the concrete consumer C7's abstract
// take/merge contract describes, instantiated at the epoch boundary.
type Recomputer struct {
	Interval time.Duration
	log      *gatewaylog.Logger
}

// NewRecomputer constructs a Recomputer firing every interval.
func NewRecomputer(interval time.Duration, log *gatewaylog.Logger) *Recomputer {
	if log == nil {
		log = gatewaylog.NewNop()
	}
	return &Recomputer{Interval: interval, log: log.With("component", "stakemap-recomputer")}
}

// RecomputeOnce performs a single take/recompute/merge cycle. Any
// AddDelegation calls issued by the producer while the map is taken are
// queued and replayed by Merge before this returns.
func (r *Recomputer) RecomputeOnce(m *Map) (Totals, error) {
	table, err := m.Take()
	if err != nil {
		return Totals{}, err
	}

	var totals Totals
	totals.Entries = len(table)
	for _, e := range table {
		sum, overflow := numeric.SafeAdd(totals.TotalLamports, e.Lamports)
		if overflow {
			r.log.Warn("stake total overflowed uint64, saturating", "pubkey", e.Pubkey)
			totals.TotalLamports = ^uint64(0)
			continue
		}
		totals.TotalLamports = sum
	}

	if err := m.Merge(table); err != nil {
		return totals, err
	}
	return totals, nil
}

// Run fires RecomputeOnce every Interval until ctx is cancelled.
func (r *Recomputer) Run(ctx context.Context, m *Map) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			totals, err := r.RecomputeOnce(m)
			if err != nil {
				r.log.Warn("recompute failed", "err", err)
				continue
			}
			r.log.Info("stake map recomputed", "entries", totals.Entries, "total_lamports", totals.TotalLamports)
		}
	}
}
