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

package geyser

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	grpcmiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/lite-svm/gateway-core/block"
	"github.com/lite-svm/gateway-core/internal/gatewaylog"
)

// DialConfig carries the per-endpoint connection parameters spec.md §4.1
// names for the reconnecting source's configuration tuple.
type DialConfig struct {
	Endpoint       string
	AuthToken      string
	Commitment     block.CommitmentLevel
	ConnectTimeout time.Duration
	UseTLS         bool
	SessionID      string
	Log            *gatewaylog.Logger
}

// Stream is a single open Subscribe session.
type Stream interface {
	Recv() (Update, error)
	Close() error
}

// Dialer opens a Stream against one upstream endpoint. Abstracted so the
// reconnecting source (C2) is testable without a live gRPC server.
type Dialer interface {
	Dial(ctx context.Context, cfg DialConfig) (Stream, error)
}

// GRPCDialer is the production Dialer: a real gRPC bidi stream with
// keepalive, backoff-aware connection parameters, TLS or insecure
// transport credentials, and auth-token propagation via a chained stream
// interceptor.
type GRPCDialer struct{}

func (GRPCDialer) Dial(ctx context.Context, cfg DialConfig) (Stream, error) {
	var creds credentials.TransportCredentials = insecure.NewCredentials()
	if cfg.UseTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, cfg.Endpoint,
		grpc.WithTransportCredentials(creds),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff:           backoff.DefaultConfig,
			MinConnectTimeout: cfg.ConnectTimeout,
		}),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithChainStreamInterceptor(grpcmiddleware.ChainStreamClient(
			authTokenInterceptor(cfg.AuthToken),
		)),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, fmt.Errorf("geyser: dial %s: %w", cfg.Endpoint, err)
	}

	cs, err := conn.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "Subscribe",
		ServerStreams: true,
		ClientStreams: true,
	}, "/geyser.Geyser/Subscribe", grpc.CallContentSubtype(codecName))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("geyser: open subscribe stream to %s: %w", cfg.Endpoint, err)
	}

	req := wireSubscribeRequest{
		Commitment: cfg.Commitment.String(),
		Blocks:     true,
		Txs:        true,
		SessionID:  cfg.SessionID,
	}
	if err := cs.SendMsg(&req); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("geyser: send subscribe request to %s: %w", cfg.Endpoint, err)
	}

	return &grpcStream{cs: cs, conn: conn, log: cfg.Log}, nil
}

// authTokenInterceptor attaches the endpoint's x-token to every streaming
// call's outgoing metadata, the auth scheme named in spec.md §6
// (GRPC_X_TOKEN / GRPC_X_TOKEN2).
func authTokenInterceptor(token string) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		if token != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, "x-token", token)
		}
		return streamer(ctx, desc, cc, method, opts...)
	}
}

type grpcStream struct {
	cs   grpc.ClientStream
	conn *grpc.ClientConn
	log  *gatewaylog.Logger
}

func (s *grpcStream) Recv() (Update, error) {
	var wu wireSubscribeUpdate
	if err := s.cs.RecvMsg(&wu); err != nil {
		return Update{}, err
	}
	return fromWire(wu)
}

func (s *grpcStream) Close() error {
	_ = s.cs.CloseSend()
	return s.conn.Close()
}

func fromWire(wu wireSubscribeUpdate) (Update, error) {
	switch wu.Kind {
	case "ping":
		return Update{Kind: KindPing, Slot: block.Slot(wu.Slot)}, nil
	case "slot":
		return Update{Kind: KindSlot, Slot: block.Slot(wu.Slot)}, nil
	case "block":
		if wu.Block == nil {
			return Update{}, fmt.Errorf("geyser: block update with no block payload")
		}
		b, err := blockFromWire(*wu.Block)
		if err != nil {
			return Update{}, err
		}
		return Update{Kind: KindBlock, Slot: b.Slot, Block: b}, nil
	default:
		return Update{}, fmt.Errorf("geyser: unknown update kind %q", wu.Kind)
	}
}

func blockFromWire(wb wireBlock) (block.ProducedBlock, error) {
	commitment, ok := block.ParseCommitmentLevel(wb.Commitment)
	if !ok {
		return block.ProducedBlock{}, fmt.Errorf("geyser: unknown commitment %q", wb.Commitment)
	}
	blockhash, err := block.ParseHash(wb.Blockhash)
	if err != nil {
		return block.ProducedBlock{}, err
	}
	var prevHash block.Hash
	if wb.PreviousBlockhash != "" {
		prevHash, err = block.ParseHash(wb.PreviousBlockhash)
		if err != nil {
			return block.ProducedBlock{}, err
		}
	}
	txs := make([]block.Transaction, 0, len(wb.Transactions))
	for _, wt := range wb.Transactions {
		sig, err := block.ParseSignature(wt.Signature)
		if err != nil {
			return block.ProducedBlock{}, err
		}
		txs = append(txs, block.Transaction{Signature: sig, Err: wt.Err})
	}
	return block.ProducedBlock{
		Slot:              block.Slot(wb.Slot),
		Blockhash:         blockhash,
		ParentSlot:        block.Slot(wb.ParentSlot),
		BlockHeight:       wb.BlockHeight,
		BlockTime:         wb.BlockTime,
		PreviousBlockhash: prevHash,
		LeaderID:          wb.LeaderID,
		Transactions:      txs,
		Commitment:        commitment,
	}, nil
}
