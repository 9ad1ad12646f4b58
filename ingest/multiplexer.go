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
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/internal/gatewaylog"
)

// DefaultStallThreshold is the "all sources silent" warning window spec.md
// §4.2 names.
const DefaultStallThreshold = 30 * time.Second

// Multiplexer merges N reconnecting sources at one commitment level into a
// single deduplicated, slot-non-decreasing broadcast stream (C3). Per
// spec.md §4.2, for each slot it emits at most one observation — the first
// to arrive from any source — and never terminates, even if every source
// goes silent.
type Multiplexer struct {
	sources        []*Source
	log            *gatewaylog.Logger
	broadcaster    *Broadcaster
	stallThreshold time.Duration
	commitment     block.CommitmentLevel
}

// NewMultiplexer constructs a Multiplexer over sources, all of which must be
// configured for the same commitment level.
func NewMultiplexer(commitment block.CommitmentLevel, sources []*Source, broadcastDepth int, log *gatewaylog.Logger) *Multiplexer {
	if log == nil {
		log = gatewaylog.NewNop()
	}
	return &Multiplexer{
		sources:        sources,
		log:            log.With("component", "ingest-multiplexer", "commitment", commitment.String()),
		broadcaster:    NewBroadcaster(broadcastDepth),
		stallThreshold: DefaultStallThreshold,
		commitment:     commitment,
	}
}

// Broadcaster returns the published fan-out artifact consumers subscribe
// to. Per spec.md §3.Ownership, this is the multiplexer's single published
// artifact.
func (m *Multiplexer) Broadcaster() *Broadcaster { return m.broadcaster }

// Run drives every source and the merge loop under one cancellation-
// propagating group until ctx is done (spec.md §5). It returns nil on clean
// shutdown; a source's own faults never reach here (C2 absorbs them).
func (m *Multiplexer) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	merged := make(chan block.ProducedBlock, len(m.sources)*4+1)

	for _, src := range m.sources {
		src := src
		g.Go(func() error {
			src.Run(gctx, merged)
			return nil
		})
	}
	g.Go(func() error {
		m.mergeLoop(gctx, merged)
		return nil
	})
	return g.Wait()
}

// mergeLoop implements the dedup/ordering contract and the stall warning.
// It never returns except when ctx is done.
func (m *Multiplexer) mergeLoop(ctx context.Context, merged <-chan block.ProducedBlock) {
	var lastEmitted block.Slot
	haveEmitted := false
	timer := time.NewTimer(m.stallThreshold)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-merged:
			if !ok {
				return
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(m.stallThreshold)

			if haveEmitted && b.Slot <= lastEmitted {
				continue // late arrival, discarded (spec.md §4.2)
			}
			lastEmitted = b.Slot
			haveEmitted = true
			m.broadcaster.Publish(b)
		case <-timer.C:
			m.log.Warn("no block observed from any source within stall threshold", "stall_threshold", m.stallThreshold.String())
			timer.Reset(m.stallThreshold)
		}
	}
}
