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

// Package block defines the typed block record and the commitment ladder
// (Processed < Confirmed < Finalized) every other component in the gateway
// core is built against.
package block

import "fmt"

// Slot is a monotonic chain tick identifier.
type Slot uint64

// CommitmentLevel is a three-valued ordered enumeration of observation
// strength. The zero value is Processed.
type CommitmentLevel uint8

const (
	Processed CommitmentLevel = iota
	Confirmed
	Finalized
)

// MaxRecentBlockhashes bounds how many block-heights behind the latest
// observed height a blockhash remains valid (spec.md §3).
const MaxRecentBlockhashes = 150

// Retention is how many slots behind the newest finalized slot the
// block-information store keeps before it may evict (spec.md §4.3).
const Retention = 512

func (c CommitmentLevel) String() string {
	switch c {
	case Processed:
		return "processed"
	case Confirmed:
		return "confirmed"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("commitment(%d)", uint8(c))
	}
}

// AtLeast reports whether c is at or above other in the ladder.
func (c CommitmentLevel) AtLeast(other CommitmentLevel) bool {
	return c >= other
}

// ParseCommitmentLevel accepts the three canonical spellings used at the RPC
// boundary (§6); anything else is InvalidInput at that boundary, not here.
func ParseCommitmentLevel(s string) (CommitmentLevel, bool) {
	switch s {
	case "processed":
		return Processed, true
	case "confirmed":
		return Confirmed, true
	case "finalized":
		return Finalized, true
	default:
		return 0, false
	}
}

// Reward is a single validator/staker reward entry attached to a produced
// block, named but left opaque by spec.md §3 ("optional rewards list").
type Reward struct {
	Pubkey      string
	Lamports    int64
	PostBalance uint64
	RewardType  string
}

// Transaction is the minimal shape the tracker (C6) needs out of a block's
// transaction list: enough to resolve a pending signature, not a full
// decoded transaction.
type Transaction struct {
	Signature Signature
	Err       string // empty means the transaction executed without error
}

// ProducedBlock is a record keyed by slot, carrying its own observation
// commitment level. spec.md §3: "(slot, commitment_level) is unique across
// the lifetime of a subscription session."
type ProducedBlock struct {
	Slot              Slot
	Blockhash         Hash
	ParentSlot        Slot
	BlockHeight       uint64
	BlockTime         int64 // unix seconds, 0 if unknown
	PreviousBlockhash Hash
	LeaderID          string // empty if unknown
	Rewards           []Reward
	Transactions      []Transaction
	Commitment        CommitmentLevel
}

// Information projects a ProducedBlock down to the fields the recency store
// retains (spec.md §3: "derived, retained projection ... without
// transactions").
func (b ProducedBlock) Information() BlockInformation {
	return BlockInformation{
		Slot:              b.Slot,
		BlockHeight:       b.BlockHeight,
		Blockhash:         b.Blockhash,
		BlockTime:         b.BlockTime,
		PreviousBlockhash: b.PreviousBlockhash,
		Commitment:        b.Commitment,
	}
}

// BlockInformation is the retained projection of ProducedBlock, indexed by
// both slot and blockhash in the store (C4).
type BlockInformation struct {
	Slot              Slot
	BlockHeight       uint64
	Blockhash         Hash
	BlockTime         int64
	PreviousBlockhash Hash
	Commitment        CommitmentLevel
}

// Key identifies one observation within a subscription session: a slot seen
// at a particular commitment level. spec.md §3's uniqueness invariant is
// expressed over this pair.
type Key struct {
	Slot       Slot
	Commitment CommitmentLevel
}
