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
	"sync"

	"github.com/lite-svm/gateway-core/block"
)

// DefaultBroadcastDepth is the bounded channel depth spec.md §4.2 names for
// the multiplexer's fan-out ("bounded depth (1000)").
const DefaultBroadcastDepth = 1000

// Broadcaster is a single-writer, multi-reader fan-out of produced blocks. It
// keeps a fixed-size ring of the most recent `depth` blocks; a subscriber
// that falls more than `depth` entries behind observes Lagged(n) instead of
// silently skipping blocks. The upstream is never backpressured by a slow
// reader (spec.md §4.2).
type Broadcaster struct {
	mu       sync.Mutex
	buf      []block.ProducedBlock
	depth    int64
	seq      int64 // count of blocks ever published
	notify   chan struct{}
}

// NewBroadcaster constructs a Broadcaster with the given ring depth.
func NewBroadcaster(depth int) *Broadcaster {
	if depth <= 0 {
		depth = DefaultBroadcastDepth
	}
	return &Broadcaster{
		buf:    make([]block.ProducedBlock, depth),
		depth:  int64(depth),
		notify: make(chan struct{}),
	}
}

// Publish appends b to the ring and wakes every blocked subscriber. Never
// blocks on a reader (spec.md §4.2: "the upstream is not backpressured").
func (br *Broadcaster) Publish(b block.ProducedBlock) {
	br.mu.Lock()
	br.buf[br.seq%br.depth] = b
	br.seq++
	old := br.notify
	br.notify = make(chan struct{})
	br.mu.Unlock()
	close(old)
}

// Subscription is a single reader's cursor into a Broadcaster's ring.
type Subscription struct {
	br     *Broadcaster
	cursor int64
}

// Subscribe returns a Subscription positioned at the next block to be
// published; it does not replay history.
func (br *Broadcaster) Subscribe() *Subscription {
	br.mu.Lock()
	defer br.mu.Unlock()
	return &Subscription{br: br, cursor: br.seq}
}

// Recv blocks until a block is available, a gap must be reported, or ctx is
// done. Lagged is the number of blocks that were overwritten before this
// subscriber could read them; when Lagged > 0, Block is the zero value and
// the caller should re-call Recv to fetch the next available block.
func (s *Subscription) Recv(ctx context.Context) (blk block.ProducedBlock, lagged int, err error) {
	for {
		s.br.mu.Lock()
		seq := s.br.seq
		if seq == s.cursor {
			notify := s.br.notify
			s.br.mu.Unlock()
			select {
			case <-notify:
				continue
			case <-ctx.Done():
				return block.ProducedBlock{}, 0, ctx.Err()
			}
		}

		if gap := seq - s.cursor - s.br.depth; gap > 0 {
			s.cursor = seq - s.br.depth
			s.br.mu.Unlock()
			return block.ProducedBlock{}, int(gap), nil
		}

		item := s.br.buf[s.cursor%s.br.depth]
		s.cursor++
		s.br.mu.Unlock()
		return item, 0, nil
	}
}
