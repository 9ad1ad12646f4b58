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

// Package blockstore implements the sliding-window block-information store
// (C4): an in-memory index of recent block metadata, by slot and by
// blockhash, that answers "is this recent blockhash still valid?" under
// concurrent read/write load (spec.md §4.3).
package blockstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/internal/gatewaylog"
)

const shardCount = 16

// perShardCapacity bounds each shard's LRU independently of the active
// retention sweep below, as a backstop against unbounded growth if a source
// ever stops advancing the finalized watermark.
const perShardCapacity = 8 * block.Retention / shardCount

type slotShard struct {
	mu    sync.RWMutex
	cache *lru.Cache[block.Slot, block.BlockInformation]
}

type hashShard struct {
	mu  sync.RWMutex
	idx map[block.Hash]block.Slot
}

// Store is the sliding-window map described in spec.md §4.3. All operations
// are safe under many concurrent readers and the small set of writers (one
// per commitment stream); no operation blocks longer than a single shard's
// critical section, except GetLatestBlock, which waits for the first block
// to arrive.
type Store struct {
	log         *gatewaylog.Logger
	slotShards  [shardCount]*slotShard
	hashShards  [shardCount]*hashShard
	newestFinal atomic.Uint64 // highest finalized slot observed, 0 if none yet

	latestMu sync.Mutex
	latest   [3]*block.BlockInformation // index by CommitmentLevel, "latest at or above"
	latestCh [3]chan struct{}           // closed and replaced on every update, for waiters
}

// New constructs an empty Store.
func New(log *gatewaylog.Logger) *Store {
	if log == nil {
		log = gatewaylog.NewNop()
	}
	s := &Store{log: log}
	for i := 0; i < shardCount; i++ {
		c, _ := lru.New[block.Slot, block.BlockInformation](perShardCapacity)
		s.slotShards[i] = &slotShard{cache: c}
		s.hashShards[i] = &hashShard{idx: make(map[block.Hash]block.Slot)}
	}
	for i := range s.latestCh {
		s.latestCh[i] = make(chan struct{})
	}
	return s
}

func (s *Store) slotShard(slot block.Slot) *slotShard {
	return s.slotShards[uint64(slot)%shardCount]
}

func (s *Store) hashShard(h block.Hash) *hashShard {
	var sum uint64
	for _, b := range h {
		sum = sum*31 + uint64(b)
	}
	return s.hashShards[sum%shardCount]
}

// Add inserts or updates a block's retained information. If the slot is
// already present at the same or higher commitment, the store keeps the
// higher-commitment record (spec.md §4.3).
func (s *Store) Add(info block.BlockInformation) {
	shard := s.slotShard(info.Slot)

	shard.mu.Lock()
	if existing, ok := shard.cache.Get(info.Slot); ok && existing.Commitment >= info.Commitment {
		shard.mu.Unlock()
		return
	}
	shard.cache.Add(info.Slot, info)
	shard.mu.Unlock()

	hs := s.hashShard(info.Blockhash)
	hs.mu.Lock()
	hs.idx[info.Blockhash] = info.Slot
	hs.mu.Unlock()

	if info.Commitment == block.Finalized {
		for {
			cur := s.newestFinal.Load()
			if uint64(info.Slot) <= cur {
				break
			}
			if s.newestFinal.CompareAndSwap(cur, uint64(info.Slot)) {
				s.evictOldShard(shard)
				break
			}
		}
	}

	s.updateLatest(info)
}

// evictOldShard drops entries from shard that fall outside the retention
// window behind the newest finalized slot. Driven off the shard that just
// received a finalized update, so the scan stays bounded to one shard's
// worth of entries rather than the whole store.
func (s *Store) evictOldShard(shard *slotShard) {
	cutoff := s.newestFinal.Load()
	if cutoff < block.Retention {
		return
	}
	cutoff -= block.Retention

	shard.mu.Lock()
	defer shard.mu.Unlock()
	for _, slot := range shard.cache.Keys() {
		if uint64(slot) < cutoff {
			if info, ok := shard.cache.Peek(slot); ok {
				hs := s.hashShard(info.Blockhash)
				hs.mu.Lock()
				delete(hs.idx, info.Blockhash)
				hs.mu.Unlock()
			}
			shard.cache.Remove(slot)
		}
	}
}

func (s *Store) updateLatest(info block.BlockInformation) {
	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	for level := block.Processed; level <= block.Finalized; level++ {
		if info.Commitment < level {
			continue
		}
		cur := s.latest[level]
		if cur != nil && cur.Slot >= info.Slot {
			continue
		}
		v := info
		s.latest[level] = &v
		close(s.latestCh[level])
		s.latestCh[level] = make(chan struct{})
	}
}

// GetBlockInfoBySlot returns the retained record for slot, if present.
func (s *Store) GetBlockInfoBySlot(slot block.Slot) (block.BlockInformation, bool) {
	shard := s.slotShard(slot)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	return shard.cache.Peek(slot)
}

// GetBlockInfoByHash returns the retained record indexed by blockhash, if
// present and not yet evicted.
func (s *Store) GetBlockInfoByHash(h block.Hash) (block.BlockInformation, bool) {
	hs := s.hashShard(h)
	hs.mu.RLock()
	slot, ok := hs.idx[h]
	hs.mu.RUnlock()
	if !ok {
		return block.BlockInformation{}, false
	}
	return s.GetBlockInfoBySlot(slot)
}

// GetLatestBlock returns the newest entry at or above the requested
// commitment, blocking until at least one is present or ctx is done
// (spec.md §5: get_latest_blockhash waits up to 100ms if the store is
// empty).
func (s *Store) GetLatestBlock(ctx context.Context, commitment block.CommitmentLevel) (block.BlockInformation, error) {
	for {
		s.latestMu.Lock()
		cur := s.latest[commitment]
		wait := s.latestCh[commitment]
		s.latestMu.Unlock()

		if cur != nil {
			return *cur, nil
		}
		select {
		case <-wait:
			continue
		case <-ctx.Done():
			return block.BlockInformation{}, ctx.Err()
		}
	}
}

// ValidityResult is the answer to IsBlockhashValid: whether the hash is
// still usable as a transaction recency nonce, and the slot the check was
// performed at (spec.md §4.3, so RPC clients get context for the answer).
type ValidityResult struct {
	Valid      bool
	CheckedAt  block.Slot
	BlockDelta uint64 // only meaningful when Valid is false due to age
}

// IsBlockhashValid reports whether h is present at commitment >= the
// requested level with its block height within MaxRecentBlockhashes of the
// latest observed height at that commitment.
func (s *Store) IsBlockhashValid(ctx context.Context, h block.Hash, commitment block.CommitmentLevel) (ValidityResult, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
	}

	info, found := s.GetBlockInfoByHash(h)
	latest, err := s.GetLatestBlock(ctx, commitment)
	if err != nil {
		return ValidityResult{}, err
	}
	if !found || info.Commitment < commitment {
		return ValidityResult{Valid: false, CheckedAt: latest.Slot}, nil
	}
	delta := latest.BlockHeight - info.BlockHeight
	return ValidityResult{
		Valid:      delta <= block.MaxRecentBlockhashes,
		CheckedAt:  latest.Slot,
		BlockDelta: delta,
	}, nil
}
