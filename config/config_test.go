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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lite-svm/gateway-core/block"
)

func TestFromEnvRequiresPrimaryAddr(t *testing.T) {
	t.Setenv("GRPC_ADDR", "")
	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvSingleUpstream(t *testing.T) {
	t.Setenv("GRPC_ADDR", "primary:10000")
	t.Setenv("GRPC_X_TOKEN", "tok1")
	t.Setenv("GRPC_ADDR2", "")
	t.Setenv("GRPC_X_TOKEN2", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "primary:10000", cfg.Primary.Addr)
	require.Nil(t, cfg.Secondary)
	require.Len(t, cfg.SourceConfigs(block.Finalized), 1)
}

func TestFromEnvDualUpstream(t *testing.T) {
	t.Setenv("GRPC_ADDR", "primary:10000")
	t.Setenv("GRPC_X_TOKEN", "tok1")
	t.Setenv("GRPC_ADDR2", "secondary:10000")
	t.Setenv("GRPC_X_TOKEN2", "tok2")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NotNil(t, cfg.Secondary)
	require.Equal(t, "secondary:10000", cfg.Secondary.Addr)

	sources := cfg.SourceConfigs(block.Processed)
	require.Len(t, sources, 2)
	require.Equal(t, block.Processed, sources[0].Commitment)
	require.Equal(t, block.Processed, sources[1].Commitment)
}
