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

// Package ingest implements the reconnecting stream source (C2) and the
// fastest-wins multiplexer (C3) described in spec.md §4.1-4.2.
package ingest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/internal/gatewaylog"
	"github.com/lite-svm/gateway-core/ingest/geyser"
)

// ConnState is the source's connection state machine (spec.md §4.1).
type ConnState uint8

const (
	Disconnected ConnState = iota
	Connecting
	Subscribed
	Streaming
	Faulted
	Backoff
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Subscribed:
		return "subscribed"
	case Streaming:
		return "streaming"
	case Faulted:
		return "faulted"
	case Backoff:
		return "backoff"
	default:
		return "unknown"
	}
}

// SourceConfig is the configuration tuple spec.md §4.1 names.
type SourceConfig struct {
	Endpoint         string
	AuthToken        string
	Commitment       block.CommitmentLevel
	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	SubscribeTimeout time.Duration
	UseTLS           bool
}

func (c SourceConfig) withDefaults() SourceConfig {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.SubscribeTimeout == 0 {
		c.SubscribeTimeout = 10 * time.Second
	}
	return c
}

// Source is one upstream endpoint's reconnecting subscription for one
// commitment level (C2). It produces a lazy, infinite sequence of produced
// blocks; no error from the upstream is ever surfaced to the consumer — the
// stream just silently reconnects (spec.md §4.1).
type Source struct {
	cfg       SourceConfig
	dialer    geyser.Dialer
	log       *gatewaylog.Logger
	sessionID string

	state         atomic.Uint32
	lastHeartbeat atomic.Int64 // unix nanos of the last ping/slot update seen
}

// NewSource constructs a Source. dialer is almost always geyser.GRPCDialer{}
// in production; tests inject a fake to drive the reconnect state machine
// deterministically.
func NewSource(cfg SourceConfig, dialer geyser.Dialer, log *gatewaylog.Logger) *Source {
	if log == nil {
		log = gatewaylog.NewNop()
	}
	s := &Source{
		cfg:       cfg.withDefaults(),
		dialer:    dialer,
		sessionID: uuid.NewString(),
	}
	s.log = log.With("component", "ingest-source", "endpoint", cfg.Endpoint, "commitment", cfg.Commitment.String(), "session", s.sessionID)
	s.state.Store(uint32(Disconnected))
	return s
}

// State reports the source's current connection state.
func (s *Source) State() ConnState { return ConnState(s.state.Load()) }

func (s *Source) setState(st ConnState) { s.state.Store(uint32(st)) }

// HeartbeatLag reports how long it has been since the last ping or slot
// update was observed from this endpoint — an early warning signal ahead of
// the multiplexer's stall_threshold (SPEC_FULL.md supplement, grounded on
// cluster-endpoints/src/grpc_inspect.rs). Zero until the first message
// arrives.
func (s *Source) HeartbeatLag() time.Duration {
	last := s.lastHeartbeat.Load()
	if last == 0 {
		return 0
	}
	return time.Since(time.Unix(0, last))
}

// Run streams produced blocks onto out until ctx is cancelled, reconnecting
// with exponential backoff (capped at 60s, jittered) on any upstream fault.
// It never closes out.
func (s *Source) Run(ctx context.Context, out chan<- block.ProducedBlock) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 60 * time.Second
	bo.MaxElapsedTime = 0 // retry forever; the stream is infinite (spec.md §4.1)

	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.runOnce(ctx, out); err != nil {
			s.setState(Faulted)
			s.log.Warn("upstream fault, reconnecting", "err", err)
			s.setState(Backoff)
			wait := bo.NextBackOff()
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
			continue
		}
		bo.Reset()
	}
}

// runOnce performs one connect/subscribe/stream cycle. A nil return only
// happens when ctx is cancelled; any upstream problem returns a non-nil
// error for Run to absorb into the backoff loop.
func (s *Source) runOnce(ctx context.Context, out chan<- block.ProducedBlock) error {
	s.setState(Connecting)
	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	stream, err := s.dialer.Dial(dialCtx, geyser.DialConfig{
		Endpoint:       s.cfg.Endpoint,
		AuthToken:      s.cfg.AuthToken,
		Commitment:     s.cfg.Commitment,
		ConnectTimeout: s.cfg.ConnectTimeout,
		UseTLS:         s.cfg.UseTLS,
		SessionID:      s.sessionID,
		Log:            s.log,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	s.setState(Subscribed)
	s.setState(Streaming)

	for {
		if ctx.Err() != nil {
			return nil
		}
		update, err := stream.Recv()
		if err != nil {
			return err
		}

		switch update.Kind {
		case geyser.KindPing, geyser.KindSlot:
			s.lastHeartbeat.Store(time.Now().UnixNano())
		case geyser.KindBlock:
			s.lastHeartbeat.Store(time.Now().UnixNano())
			if update.Block.Commitment != s.cfg.Commitment {
				continue // not matching the expected commitment; silently dropped (§4.1)
			}
			select {
			case out <- update.Block:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
