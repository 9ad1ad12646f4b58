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
	"github.com/spf13/cobra"
)

var (
	flagGRPCAddr   string
	flagGRPCToken  string
	flagGRPCAddr2  string
	flagGRPCToken2 string
	flagLeaders    []string
	flagSendRPS    float64
	flagSendBurst  int
)

var rootCmd = &cobra.Command{
	Use:   "gatewaycore",
	Short: "Runs the block-ingest and transaction-tracking gateway core.",
	Long: "gatewaycore wires the reconnecting upstream sources, the fastest-wins " +
		"multiplexer, the block-information store, the invariant auditor and the " +
		"transaction tracker into one running process. The JSON-RPC HTTP surface, " +
		"the Prometheus scrape endpoint and historical persistence are external " +
		"collaborators this binary does not implement.",
	RunE: runGateway,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagGRPCAddr, "grpc-addr", "", "primary upstream gRPC address (overrides GRPC_ADDR)")
	flags.StringVar(&flagGRPCToken, "grpc-token", "", "primary upstream auth token (overrides GRPC_X_TOKEN)")
	flags.StringVar(&flagGRPCAddr2, "grpc-addr2", "", "secondary upstream gRPC address (overrides GRPC_ADDR2)")
	flags.StringVar(&flagGRPCToken2, "grpc-token2", "", "secondary upstream auth token (overrides GRPC_X_TOKEN2)")
	flags.StringSliceVar(&flagLeaders, "leaders", nil, "static fan-out target leaders (TPU/QUIC out of scope, logged only)")
	flags.Float64Var(&flagSendRPS, "send-tx-rps", 0, "send_transaction rate limit, requests/sec (0 keeps the built-in default)")
	flags.IntVar(&flagSendBurst, "send-tx-burst", 0, "send_transaction rate limit burst (0 keeps the built-in default)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
