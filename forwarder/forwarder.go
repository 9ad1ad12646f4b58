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

// Package forwarder defines the outbound collaborator contract named in
// spec.md §6: fire-and-forget delivery of signed transaction bytes to the
// currently scheduled block producer and the next N leaders. The TPU/QUIC
// wire encoding itself is out of scope (spec.md §1); this package only
// types the boundary and supplies the multi-leader fan-out SPEC_FULL.md
// adds from the original bridge.rs.
package forwarder

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultLeaderFanout is how many upcoming leaders, beyond the current one,
// a forward targets by default (spec.md §6: "N configurable, default 2").
const DefaultLeaderFanout = 2

// Forwarder fires raw signed transaction bytes at a single leader, with a
// deadline. Implementations own the TPU/QUIC (or any other) wire encoding;
// that encoding is out of scope here.
type Forwarder interface {
	Forward(ctx context.Context, raw []byte, leader string) error
}

// Fanout dispatches raw to every leader in targetLeaders concurrently under
// a shared deadline, first-success-wins (matching the original
// lite-rpc-fork bridge's fire-and-forget semantics described in
// SPEC_FULL.md's "multi-leader forwarding fan-out"). It returns nil as soon
// as any leader accepts, or the last error seen if every leader rejected
// the transaction.
func Fanout(ctx context.Context, f Forwarder, raw []byte, targetLeaders []string) error {
	if len(targetLeaders) == 0 {
		return fmt.Errorf("forwarder: no target leaders")
	}

	g, ctx := errgroup.WithContext(ctx)
	results := make(chan error, len(targetLeaders))
	for _, leader := range targetLeaders {
		leader := leader
		g.Go(func() error {
			err := f.Forward(ctx, raw, leader)
			results <- err
			return nil // never fail the group; we want every leader attempted
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	var lastErr error
	attempts := 0
	for err := range results {
		attempts++
		if err == nil {
			return nil
		}
		lastErr = err
		if attempts == len(targetLeaders) {
			break
		}
	}
	return fmt.Errorf("forwarder: all %d leaders rejected: %w", len(targetLeaders), lastErr)
}
