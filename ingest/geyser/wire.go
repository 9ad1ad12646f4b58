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

package geyser

// wireSubscribeRequest and wireSubscribeUpdate are the on-the-wire shapes
// exchanged over the Subscribe stream. The upstream's actual protobuf
// schema is not part of this module's inputs, so the stream is carried over
// a JSON codec (see codec.go) rather than generated protobuf types; a
// deployment fronting the real Yellowstone Geyser service would replace
// this file with protoc-gen-go-grpc output and keep everything below it
// unchanged.
type wireSubscribeRequest struct {
	Commitment string `json:"commitment"`
	Blocks     bool   `json:"blocks"`
	Txs        bool   `json:"transactions"`
	SessionID  string `json:"session_id"`
}

type wireSubscribeUpdate struct {
	Kind string     `json:"kind"` // "block" | "slot" | "ping"
	Slot uint64     `json:"slot"`
	Block *wireBlock `json:"block,omitempty"`
}

type wireBlock struct {
	Slot              uint64            `json:"slot"`
	Blockhash         string            `json:"blockhash"`
	ParentSlot        uint64            `json:"parent_slot"`
	BlockHeight       uint64            `json:"block_height"`
	BlockTime         int64             `json:"block_time"`
	PreviousBlockhash string            `json:"previous_blockhash"`
	LeaderID          string            `json:"leader_id"`
	Commitment        string            `json:"commitment"`
	Transactions      []wireTransaction `json:"transactions"`
}

type wireTransaction struct {
	Signature string `json:"signature"`
	Err       string `json:"err,omitempty"`
}
