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

package gateway

import (
	"github.com/goccy/go-json"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/txtracker"
)

// LatestBlockhash is get_latest_blockhash's response shape (spec.md §6).
type LatestBlockhash struct {
	Slot                 block.Slot `json:"slot"`
	BlockHeight          uint64     `json:"block_height"`
	Blockhash            string     `json:"blockhash"`
	LastValidBlockHeight uint64     `json:"last_valid_block_height"`
}

// BlockhashValidity is is_blockhash_valid's response shape.
type BlockhashValidity struct {
	Slot  block.Slot `json:"slot"`
	Valid bool       `json:"valid"`
}

// SignatureStatusesResponse is get_signature_statuses's response shape: a
// context slot plus one optional status per requested signature, in order.
type SignatureStatusesResponse struct {
	ContextSlot block.Slot                   `json:"context_slot"`
	Statuses    []*txtracker.SignatureStatus `json:"statuses"`
}

// MarshalDTO serializes any of the response shapes above with goccy/go-json,
// the codec the out-of-scope JSON-RPC layer uses for every read-only
// response this package returns.
func MarshalDTO(v any) ([]byte, error) {
	return json.Marshal(v)
}
