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
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/lite-svm/gateway-core/audit"
	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/blockstore"
	"github.com/lite-svm/gateway-core/config"
	"github.com/lite-svm/gateway-core/gateway"
	"github.com/lite-svm/gateway-core/ingest"
	"github.com/lite-svm/gateway-core/ingest/geyser"
	"github.com/lite-svm/gateway-core/internal/gatewaylog"
	"github.com/lite-svm/gateway-core/metrics"
	"github.com/lite-svm/gateway-core/txtracker"
)

// finalizedHeightPollInterval governs how often ExpireCheck runs against
// the newest finalized block height (spec.md §4.5).
const finalizedHeightPollInterval = 2 * time.Second

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	applyFlagOverrides(&cfg)

	log := gatewaylog.New()
	defer log.Sync()

	registry := metrics.NewRegistry()
	store := blockstore.New(log)
	auditor := audit.New(log)
	tracker := txtracker.New(log, logOnlyForwarder{log: log}, leadersFromFlags)
	_ = gateway.New(store, tracker, rate.NewLimiter(rate.Limit(sendTxRPS(cfg)), sendTxBurst(cfg)), log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	auditFeed := make(chan block.ProducedBlock, 4096)
	g.Go(func() error {
		auditor.Run(ctx, auditFeed)
		return nil
	})

	for _, commitment := range []block.CommitmentLevel{block.Processed, block.Confirmed, block.Finalized} {
		commitment := commitment
		sources := buildSources(cfg, commitment, log)
		mux := ingest.NewMultiplexer(commitment, sources, cfg.BroadcastDepth, log)

		g.Go(func() error { return mux.Run(ctx) })
		g.Go(func() error {
			consumeMultiplexer(ctx, mux, store, tracker, registry, auditFeed)
			return nil
		})
	}

	g.Go(func() error {
		tracker.RunRetryReaper(ctx)
		return nil
	})
	g.Go(func() error {
		runExpiryLoop(ctx, store, tracker)
		return nil
	})

	return g.Wait()
}

func buildSources(cfg config.Config, commitment block.CommitmentLevel, log *gatewaylog.Logger) []*ingest.Source {
	configs := cfg.SourceConfigs(commitment)
	sources := make([]*ingest.Source, len(configs))
	for i, sc := range configs {
		sources[i] = ingest.NewSource(sc, geyser.GRPCDialer{}, log)
	}
	return sources
}

// consumeMultiplexer drains one commitment level's merged stream into every
// downstream consumer: the block store (C4), the transaction tracker (C6),
// the invariant auditor's shared feed (C5), and the metrics registry (C8).
func consumeMultiplexer(ctx context.Context, mux *ingest.Multiplexer, store *blockstore.Store, tracker *txtracker.Tracker, registry *metrics.Registry, auditFeed chan<- block.ProducedBlock) {
	sub := mux.Broadcaster().Subscribe()
	for {
		b, lagged, err := sub.Recv(ctx)
		if err != nil {
			return
		}
		if lagged > 0 {
			registry.Lagged.Add(float64(lagged))
			continue
		}

		now := time.Now()
		store.Add(b.Information())
		tracker.ConsumeBlock(b, now)
		registry.BlocksIngested.WithLabelValues(b.Commitment.String()).Inc()

		select {
		case auditFeed <- b:
		case <-ctx.Done():
			return
		}
	}
}

func runExpiryLoop(ctx context.Context, store *blockstore.Store, tracker *txtracker.Tracker) {
	ticker := time.NewTicker(finalizedHeightPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := store.GetLatestBlock(ctx, block.Finalized)
			if err != nil {
				continue
			}
			tracker.ExpireCheck(info.BlockHeight, time.Now())
		}
	}
}

func leadersFromFlags() []string { return flagLeaders }

func sendTxRPS(cfg config.Config) float64 {
	if flagSendRPS > 0 {
		return flagSendRPS
	}
	return cfg.SendTransactionRPS
}

func sendTxBurst(cfg config.Config) int {
	if flagSendBurst > 0 {
		return flagSendBurst
	}
	return cfg.SendTransactionBurst
}

func applyFlagOverrides(cfg *config.Config) {
	if flagGRPCAddr != "" {
		cfg.Primary.Addr = flagGRPCAddr
	}
	if flagGRPCToken != "" {
		cfg.Primary.AuthToken = flagGRPCToken
	}
	if flagGRPCAddr2 != "" {
		cfg.Secondary = &config.Endpoint{Addr: flagGRPCAddr2, AuthToken: flagGRPCToken2}
	}
}
