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

package block

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// Hash is a 32-byte block digest, the recency nonce clients embed in
// transactions (spec.md §3, GLOSSARY: Blockhash).
type Hash [32]byte

// Signature is a 64-byte transaction identifier, displayed as base58
// (spec.md §3).
type Signature [64]byte

func (h Hash) String() string { return base58.Encode(h[:]) }

// Hex renders the digest as hex, the alternate wire form spec.md §3 allows
// ("32-byte digest, hex/base58 string").
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

func (s Signature) String() string { return base58.Encode(s[:]) }

// ParseHash decodes a base58-encoded blockhash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := base58.Decode(s)
	if err != nil {
		return h, fmt.Errorf("decode blockhash %q: %w", s, err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("decode blockhash %q: want %d bytes, got %d", s, len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

// ParseSignature decodes a base58-encoded transaction signature.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	b, err := base58.Decode(s)
	if err != nil {
		return sig, fmt.Errorf("decode signature %q: %w", s, err)
	}
	if len(b) != len(sig) {
		return sig, fmt.Errorf("decode signature %q: want %d bytes, got %d", s, len(sig), len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// SignatureFromBytes builds a Signature from the leading 64 bytes of a
// signed transaction, the layout every Solana-class transaction wire format
// shares: a one-byte-length-prefixed array of ed25519 signatures followed by
// the message. The tracker (C6) extracts the first one.
func SignatureFromBytes(raw []byte) (Signature, error) {
	var sig Signature
	if len(raw) < 1+len(sig) {
		return sig, fmt.Errorf("transaction too short to contain a signature: %d bytes", len(raw))
	}
	numSigs := int(raw[0])
	if numSigs < 1 {
		return sig, fmt.Errorf("transaction declares zero signatures")
	}
	copy(sig[:], raw[1:1+len(sig)])
	return sig, nil
}
