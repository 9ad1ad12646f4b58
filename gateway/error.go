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

// Package gateway implements the inbound RPC-facing operations spec.md §6
// names: send_transaction, get_latest_blockhash, is_blockhash_valid,
// get_slot, get_block_height, get_block_time, get_signature_statuses.
package gateway

import "fmt"

// Kind is the request-level error taxonomy spec.md §7 names.
type Kind uint8

const (
	InvalidInput Kind = iota
	NotFound
	RateLimited
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case NotFound:
		return "not_found"
	case RateLimited:
		return "rate_limited"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the typed request-level error every gateway operation returns
// instead of a bare error, so callers can branch on Kind (spec.md §7:
// "returned to the caller as structured errors with distinct kinds").
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Errorf constructs an *Error of the given kind, wrapping cause (if any)
// with %w semantics so errors.Is/errors.As keep working against it.
func Errorf(kind Kind, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	var cause error
	for _, a := range args {
		if e, ok := a.(error); ok {
			cause = e
		}
	}
	return &Error{Kind: kind, msg: msg, err: cause}
}

// wrapInternal collapses an unrecognized lower-level error to Internal,
// preserving the original message (spec.md §7: "unknown errors collapse to
// Internal with the original message preserved in logs").
func wrapInternal(op string, err error) *Error {
	return &Error{Kind: Internal, msg: op, err: err}
}
