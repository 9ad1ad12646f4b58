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

// Package persist types the optional historical-persistence boundary
// spec.md §6 names ("a consumer of the merged finalized block stream") and
// §6's persistence layout (one `blocks` table per epoch, idempotent
// do-nothing-on-conflict inserts, a returning clause for out-of-order
// warnings). The persister itself (SQL, object storage, whatever) is an
// external collaborator; this package only types the contract.
package persist

import (
	"context"

	"github.com/lite-svm/gateway-core/block"
)

// Row is one persisted record, matching spec.md §6's column list for the
// per-epoch `blocks` table.
type Row struct {
	Slot              block.Slot
	Blockhash         block.Hash
	LeaderID          string // empty if unknown
	BlockHeight       uint64
	ParentSlot        block.Slot
	BlockTime         int64
	PreviousBlockhash block.Hash
	Rewards           []block.Reward // nil if unknown
}

// Writer consumes the merged finalized block stream for durable storage.
// Insert must be idempotent (do-nothing-on-conflict per slot); previousMax
// is the highest slot the writer had stored before this insert, so the
// caller can warn (not fail) on out-of-order arrival.
type Writer interface {
	Insert(ctx context.Context, row Row) (previousMax block.Slot, err error)
}

// Reader reconstructs a ProducedBlock from persisted storage. hasTransactions
// reports whether the reconstruction can possibly carry transactions at
// all: reading _examples/original_source/history/src/postgres/postgres_block.rs
// shows the original's `PostgresBlock::into_produced_block` always
// hard-codes an empty transaction list on reload, since the `blocks` table
// never stores per-transaction rows. Rather than silently return an empty
// slice a caller might mistake for "this block truly had zero
// transactions", Reader makes the limitation explicit: hasTransactions is
// always false, and callers that depend on replayed transaction contents
// must check it before trusting ProducedBlock.Transactions.
type Reader interface {
	ProducedBlock(ctx context.Context, slot block.Slot) (blk block.ProducedBlock, hasTransactions bool, err error)
}

// RowFromBlockInformation projects the retained store projection into a
// persistable Row. Rewards and LeaderID are not carried by
// block.BlockInformation (spec.md §3: the retained projection drops them),
// so a Writer fed directly from the store never observes them either —
// callers that need rewards must persist from the full block.ProducedBlock.
func RowFromBlockInformation(info block.BlockInformation) Row {
	return Row{
		Slot:              info.Slot,
		Blockhash:         info.Blockhash,
		BlockHeight:       info.BlockHeight,
		BlockTime:         info.BlockTime,
		PreviousBlockhash: info.PreviousBlockhash,
	}
}

// RowFromProducedBlock projects a full produced block (with transactions
// dropped, per the persistence layout's column list) into a Row.
func RowFromProducedBlock(b block.ProducedBlock) Row {
	return Row{
		Slot:              b.Slot,
		Blockhash:         b.Blockhash,
		LeaderID:          b.LeaderID,
		BlockHeight:       b.BlockHeight,
		ParentSlot:        b.ParentSlot,
		BlockTime:         b.BlockTime,
		PreviousBlockhash: b.PreviousBlockhash,
		Rewards:           b.Rewards,
	}
}
