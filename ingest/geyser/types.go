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

// Package geyser defines the minimal upstream block-streaming protocol the
// reconnecting source (C2) subscribes against: a single bidirectional gRPC
// stream carrying block, slot and ping updates, modeled on the Yellowstone
// Geyser dialect the helius-labs/laserstream-sdk reference client wraps.
// Standalone transaction updates are not decoded: any update kind other than
// block, slot or ping makes the stream's Recv return an error.
package geyser

import "github.com/lite-svm/gateway-core/block"

// UpdateKind discriminates the variant carried by an Update.
type UpdateKind uint8

const (
	KindBlock UpdateKind = iota
	KindSlot
	KindPing
)

// Update is one message read off a subscription stream.
type Update struct {
	Kind  UpdateKind
	Slot  block.Slot
	Block block.ProducedBlock // valid only when Kind == KindBlock
}

// SubscribeRequest is sent once, immediately after the stream opens, to
// declare which commitment level and filters this session wants (spec.md
// §4.1: "filter={blocks+txs}").
type SubscribeRequest struct {
	Commitment   block.CommitmentLevel
	WantBlocks   bool
	WantTxs      bool
	SessionID    string
}
