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

// Package txtracker implements the transaction lifecycle tracker (C6):
// signature -> {queued, sent, landed, confirmed, finalized, expired} with
// timing metrics, per spec.md §4.5.
package txtracker

import (
	"time"

	"github.com/lite-svm/gateway-core/block"
)

// Status is the lifecycle state of a tracked transaction. Finalized and
// Expired are absorbing terminals (spec.md §3).
type Status uint8

const (
	Queued Status = iota
	Sent
	Landed
	Confirmed
	Finalized
	Expired
)

func (s Status) String() string {
	switch s {
	case Queued:
		return "queued"
	case Sent:
		return "sent"
	case Landed:
		return "landed"
	case Confirmed:
		return "confirmed"
	case Finalized:
		return "finalized"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is an absorbing state: once reached, no
// further transitions alter the record (spec.md §8 invariant 7).
func (s Status) Terminal() bool { return s == Finalized || s == Expired }

// TxState is the per-signature record spec.md §3 describes.
type TxState struct {
	Signature            block.Signature
	MaxRetries           int
	RetriesUsed          int
	FirstSeenSlot        block.Slot
	LastValidBlockHeight uint64
	SentTS               time.Time
	Bytes                int
	raw                  []byte // retained only until Landed, for retry re-submission

	Status        Status
	LandedSlot    block.Slot
	ConfirmedSlot block.Slot
	FinalizedSlot block.Slot

	LandedTS    time.Time
	ConfirmedTS time.Time
	FinalizedTS time.Time
}

// SendDuration is the time from the first successful send to now; always
// zero until the transaction has been sent at least once. Retries do not
// move SentTS, so this is informational, not a confirmation-path metric.
func (t TxState) SendDuration(now time.Time) time.Duration {
	if t.SentTS.IsZero() {
		return 0
	}
	return now.Sub(t.SentTS)
}

// ConfirmationDuration is confirmed_ts - send_ts (spec.md §4.5), zero until
// the transaction has reached Confirmed.
func (t TxState) ConfirmationDuration() time.Duration {
	if t.ConfirmedTS.IsZero() || t.SentTS.IsZero() {
		return 0
	}
	return t.ConfirmedTS.Sub(t.SentTS)
}

// SignatureStatus is the subset of TxState the get_signature_statuses RPC
// operation (spec.md §6) reports: landed/confirmed/finalized, or absent.
type SignatureStatus struct {
	Slot   block.Slot
	Status Status // only Landed, Confirmed, or Finalized are ever reported
}
