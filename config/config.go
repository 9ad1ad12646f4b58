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

// Package config reads the environment contract spec.md §6 names plus the
// ambient timeouts and thresholds the rest of the spec leaves as named
// constants. cmd/gatewaycore layers cobra/pflag flags on top of this, but
// the core itself only ever sees a Config value.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/forwarder"
	"github.com/lite-svm/gateway-core/ingest"
	"github.com/lite-svm/gateway-core/txtracker"
)

// Endpoint is one upstream gRPC source's connection parameters.
type Endpoint struct {
	Addr     string
	AuthToken string
}

// Config is the fully resolved process configuration.
type Config struct {
	Primary   Endpoint
	Secondary *Endpoint // nil if GRPC_ADDR2 is unset: single-source mode

	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	SubscribeTimeout time.Duration
	StallThreshold   time.Duration
	BroadcastDepth   int

	LeaderFanout  int
	RetryInterval time.Duration

	SendTransactionRPS   float64
	SendTransactionBurst int
}

// FromEnv reads GRPC_ADDR, GRPC_X_TOKEN, GRPC_ADDR2, GRPC_X_TOKEN2 (spec.md
// §6) plus ambient defaults. GRPC_ADDR is required; GRPC_ADDR2 is optional
// and enables multiplexing across two upstreams when set.
func FromEnv() (Config, error) {
	addr := os.Getenv("GRPC_ADDR")
	if addr == "" {
		return Config{}, fmt.Errorf("config: GRPC_ADDR is required")
	}

	cfg := Config{
		Primary: Endpoint{
			Addr:      addr,
			AuthToken: os.Getenv("GRPC_X_TOKEN"),
		},
		ConnectTimeout:       5 * time.Second,
		RequestTimeout:       10 * time.Second,
		SubscribeTimeout:     10 * time.Second,
		StallThreshold:       ingest.DefaultStallThreshold,
		BroadcastDepth:       ingest.DefaultBroadcastDepth,
		LeaderFanout:         forwarder.DefaultLeaderFanout,
		RetryInterval:        txtracker.DefaultRetryInterval,
		SendTransactionRPS:   1000,
		SendTransactionBurst: 200,
	}

	if addr2 := os.Getenv("GRPC_ADDR2"); addr2 != "" {
		cfg.Secondary = &Endpoint{
			Addr:      addr2,
			AuthToken: os.Getenv("GRPC_X_TOKEN2"),
		}
	}

	return cfg, nil
}

// SourceConfigs expands the resolved endpoints into one ingest.SourceConfig
// per (endpoint, commitment level) pair the multiplexers need — up to 2
// endpoints × 3 commitment levels, per spec.md §4.2's "N source streams".
func (c Config) SourceConfigs(commitment block.CommitmentLevel) []ingest.SourceConfig {
	out := []ingest.SourceConfig{{
		Endpoint:         c.Primary.Addr,
		AuthToken:        c.Primary.AuthToken,
		Commitment:       commitment,
		ConnectTimeout:   c.ConnectTimeout,
		RequestTimeout:   c.RequestTimeout,
		SubscribeTimeout: c.SubscribeTimeout,
	}}
	if c.Secondary != nil {
		out = append(out, ingest.SourceConfig{
			Endpoint:         c.Secondary.Addr,
			AuthToken:        c.Secondary.AuthToken,
			Commitment:       commitment,
			ConnectTimeout:   c.ConnectTimeout,
			RequestTimeout:   c.RequestTimeout,
			SubscribeTimeout: c.SubscribeTimeout,
		})
	}
	return out
}
