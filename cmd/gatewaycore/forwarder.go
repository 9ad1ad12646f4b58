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

package main

import (
	"context"

	"github.com/lite-svm/gateway-core/internal/gatewaylog"
)

// logOnlyForwarder is the TPU/QUIC wire-encoding collaborator spec.md §1
// names as out of scope: this binary wires the gateway core end to end
// without shipping a transaction to any real validator, logging every
// forward attempt instead. A deployment replaces this with a real
// forwarder.Forwarder against its cluster's TPU/QUIC endpoints.
type logOnlyForwarder struct {
	log *gatewaylog.Logger
}

func (f logOnlyForwarder) Forward(ctx context.Context, raw []byte, leader string) error {
	f.log.Debug("forward (no-op: TPU/QUIC wire encoding out of scope)", "leader", leader, "bytes", len(raw))
	return nil
}
