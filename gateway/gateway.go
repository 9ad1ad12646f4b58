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
	"context"
	"encoding/base64"
	"time"

	"github.com/mr-tron/base58"
	"golang.org/x/time/rate"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/blockstore"
	"github.com/lite-svm/gateway-core/internal/gatewaylog"
	"github.com/lite-svm/gateway-core/txtracker"
)

// Encoding is the wire encoding a send_transaction caller used for its
// payload (spec.md §6).
type Encoding uint8

const (
	Base58 Encoding = iota
	Base64
)

// Size limits spec.md §6 names directly: the maximum length of the encoded
// payload string for each encoding.
const (
	MaxBase58Len = 1683
	MaxBase64Len = 1644
)

// DefaultSendTransactionRPS and DefaultSendTransactionBurst size the
// token-bucket limiter guarding send_transaction, backing the RateLimited
// error kind spec.md §7 names.
const (
	DefaultSendTransactionRPS   = 1000
	DefaultSendTransactionBurst = 200
)

// Gateway implements spec.md §6's inbound operations over a block store
// (C4) and a transaction tracker (C6).
type Gateway struct {
	store   *blockstore.Store
	tracker *txtracker.Tracker
	limiter *rate.Limiter
	log     *gatewaylog.Logger
}

// New constructs a Gateway. limiter may be nil, in which case a default
// token bucket is used.
func New(store *blockstore.Store, tracker *txtracker.Tracker, limiter *rate.Limiter, log *gatewaylog.Logger) *Gateway {
	if log == nil {
		log = gatewaylog.NewNop()
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(DefaultSendTransactionRPS), DefaultSendTransactionBurst)
	}
	return &Gateway{
		store:   store,
		tracker: tracker,
		limiter: limiter,
		log:     log.With("component", "gateway"),
	}
}

// SendTransaction decodes encoded per enc, rejects oversized payloads, and
// hands the raw bytes to the tracker for forwarding (spec.md §6:
// "send_transaction(bytes, {encoding, max_retries}) -> signature |
// Error{TooLarge, Decode, Forwarder}"). TooLarge and Decode collapse to
// InvalidInput; a rejected forward collapses to Internal, per §7's
// propagation policy.
func (g *Gateway) SendTransaction(ctx context.Context, encoded string, enc Encoding, maxRetries int) (block.Signature, *Error) {
	if !g.limiter.Allow() {
		return block.Signature{}, Errorf(RateLimited, "send_transaction: rate limit exceeded")
	}

	var raw []byte
	switch enc {
	case Base58:
		if len(encoded) > MaxBase58Len {
			return block.Signature{}, Errorf(InvalidInput, "send_transaction: base58 payload too large: %d bytes", len(encoded))
		}
		decoded, err := base58.Decode(encoded)
		if err != nil {
			return block.Signature{}, Errorf(InvalidInput, "send_transaction: base58 decode: %v", err)
		}
		raw = decoded
	case Base64:
		if len(encoded) > MaxBase64Len {
			return block.Signature{}, Errorf(InvalidInput, "send_transaction: base64 payload too large: %d bytes", len(encoded))
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return block.Signature{}, Errorf(InvalidInput, "send_transaction: base64 decode: %v", err)
		}
		raw = decoded
	default:
		return block.Signature{}, Errorf(InvalidInput, "send_transaction: unknown encoding")
	}

	info, err := g.store.GetLatestBlock(ctx, block.Processed)
	if err != nil {
		return block.Signature{}, wrapInternal("send_transaction: awaiting first block", err)
	}
	lastValidBlockHeight := info.BlockHeight + block.MaxRecentBlockhashes

	sig, subErr := g.tracker.Submit(ctx, raw, maxRetries, lastValidBlockHeight, info.Slot, time.Now())
	if subErr != nil {
		return block.Signature{}, wrapInternal("send_transaction: forward", subErr)
	}
	return sig, nil
}

// GetLatestBlockhash answers spec.md §6's get_latest_blockhash.
func (g *Gateway) GetLatestBlockhash(ctx context.Context, commitment block.CommitmentLevel) (LatestBlockhash, *Error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
	}
	info, err := g.store.GetLatestBlock(ctx, commitment)
	if err != nil {
		return LatestBlockhash{}, wrapInternal("get_latest_blockhash", err)
	}
	return LatestBlockhash{
		Slot:                 info.Slot,
		BlockHeight:          info.BlockHeight,
		Blockhash:            info.Blockhash.String(),
		LastValidBlockHeight: info.BlockHeight + block.MaxRecentBlockhashes,
	}, nil
}

// IsBlockhashValid answers spec.md §6's is_blockhash_valid.
func (g *Gateway) IsBlockhashValid(ctx context.Context, hash string, commitment block.CommitmentLevel) (BlockhashValidity, *Error) {
	h, err := block.ParseHash(hash)
	if err != nil {
		return BlockhashValidity{}, Errorf(InvalidInput, "is_blockhash_valid: %v", err)
	}
	result, err := g.store.IsBlockhashValid(ctx, h, commitment)
	if err != nil {
		return BlockhashValidity{}, wrapInternal("is_blockhash_valid", err)
	}
	return BlockhashValidity{Slot: result.CheckedAt, Valid: result.Valid}, nil
}

// GetSlot answers spec.md §6's get_slot.
func (g *Gateway) GetSlot(ctx context.Context, commitment block.CommitmentLevel) (block.Slot, *Error) {
	info, err := g.store.GetLatestBlock(ctx, commitment)
	if err != nil {
		return 0, wrapInternal("get_slot", err)
	}
	return info.Slot, nil
}

// GetBlockHeight answers spec.md §6's get_block_height.
func (g *Gateway) GetBlockHeight(ctx context.Context, commitment block.CommitmentLevel) (uint64, *Error) {
	info, err := g.store.GetLatestBlock(ctx, commitment)
	if err != nil {
		return 0, wrapInternal("get_block_height", err)
	}
	return info.BlockHeight, nil
}

// GetBlockTime answers spec.md §6's get_block_time: Error{NotInCache} maps
// to NotFound.
func (g *Gateway) GetBlockTime(slot block.Slot) (int64, *Error) {
	info, ok := g.store.GetBlockInfoBySlot(slot)
	if !ok {
		return 0, Errorf(NotFound, "get_block_time: slot %d not in cache", slot)
	}
	return info.BlockTime, nil
}

// GetSignatureStatuses answers spec.md §6's get_signature_statuses. Bad
// signature encodings are reported as InvalidInput rather than silently
// treated as absent.
func (g *Gateway) GetSignatureStatuses(ctx context.Context, sigs []string) (SignatureStatusesResponse, *Error) {
	parsed := make([]block.Signature, len(sigs))
	for i, s := range sigs {
		sig, err := block.ParseSignature(s)
		if err != nil {
			return SignatureStatusesResponse{}, Errorf(InvalidInput, "get_signature_statuses: signature %d: %v", i, err)
		}
		parsed[i] = sig
	}

	var contextSlot block.Slot
	if info, err := g.store.GetLatestBlock(ctx, block.Processed); err == nil {
		contextSlot = info.Slot
	}

	return SignatureStatusesResponse{
		ContextSlot: contextSlot,
		Statuses:    g.tracker.GetSignatureStatuses(parsed),
	}, nil
}
