// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"
	"errors"
	"io"

	sluicev1 "github.com/rzbill/sluice/api/sluice/v1"
	"google.golang.org/grpc"
)

// GrpcTransport implements LedgerTransport over gRPC.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli sluicev1.StreamsServiceClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(sluicev1.NewStreamsServiceClient(conn))
}

func (t *GrpcTransport) GetStream(ctx context.Context, id uint64) (view *sluicev1.StreamView, err error) {
	err = t.withClient(ctx, func(cli sluicev1.StreamsServiceClient) error {
		resp, err := cli.GetStream(ctx, &sluicev1.GetStreamRequest{Id: id})
		if err != nil {
			return err
		}
		view = resp.View
		return nil
	})
	return view, err
}

func (t *GrpcTransport) ListStreams(ctx context.Context, req ListRequest) (ids []uint64, views []*sluicev1.StreamView, err error) {
	err = t.withClient(ctx, func(cli sluicev1.StreamsServiceClient) error {
		resp, err := cli.ListStreams(ctx, &sluicev1.ListStreamsRequest{
			Sender:    req.Sender,
			Recipient: req.Recipient,
			Expand:    req.Expand,
			Filter:    req.Filter,
			Limit:     int32(req.Limit),
		})
		if err != nil {
			return err
		}
		ids, views = resp.Ids, resp.Streams
		return nil
	})
	return ids, views, err
}

func (t *GrpcTransport) Available(ctx context.Context, id uint64) (n int64, err error) {
	err = t.withClient(ctx, func(cli sluicev1.StreamsServiceClient) error {
		resp, err := cli.Available(ctx, &sluicev1.AvailableRequest{Id: id})
		if err != nil {
			return err
		}
		n = resp.Available
		return nil
	})
	return n, err
}

func (t *GrpcTransport) Withdraw(ctx context.Context, id uint64, amount int64) error {
	return t.withClient(ctx, func(cli sluicev1.StreamsServiceClient) error {
		_, err := cli.Withdraw(ctx, &sluicev1.WithdrawRequest{Id: id, Amount: amount})
		return err
	})
}

func (t *GrpcTransport) Cancel(ctx context.Context, id uint64) (out Settlement, err error) {
	err = t.withClient(ctx, func(cli sluicev1.StreamsServiceClient) error {
		resp, err := cli.CancelStream(ctx, &sluicev1.CancelStreamRequest{Id: id})
		if err != nil {
			return err
		}
		out = Settlement{Available: resp.Available, Leftover: resp.Leftover}
		return nil
	})
	return out, err
}

func (t *GrpcTransport) Pay(ctx context.Context, from string, amount int64, data []any) error {
	return t.withClient(ctx, func(cli sluicev1.StreamsServiceClient) error {
		_, err := cli.Pay(ctx, &sluicev1.PayRequest{From: from, Amount: amount, Data: data})
		return err
	})
}

func (t *GrpcTransport) Mint(ctx context.Context, address string, amount int64) (bal int64, err error) {
	err = t.withClient(ctx, func(cli sluicev1.StreamsServiceClient) error {
		resp, err := cli.Mint(ctx, &sluicev1.MintRequest{Address: address, Amount: amount})
		if err != nil {
			return err
		}
		bal = resp.Balance
		return nil
	})
	return bal, err
}

func (t *GrpcTransport) Balance(ctx context.Context, address string) (bal int64, err error) {
	err = t.withClient(ctx, func(cli sluicev1.StreamsServiceClient) error {
		resp, err := cli.Balance(ctx, &sluicev1.BalanceRequest{Address: address})
		if err != nil {
			return err
		}
		bal = resp.Balance
		return nil
	})
	return bal, err
}

func (t *GrpcTransport) WatchEvents(ctx context.Context, from uint64, consumer string, onEvent func(*sluicev1.EventEnvelope) error) error {
	return t.withClient(ctx, func(cli sluicev1.StreamsServiceClient) error {
		stream, err := cli.WatchEvents(ctx, &sluicev1.WatchEventsRequest{From: from, Consumer: consumer})
		if err != nil {
			return err
		}
		for {
			ev, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := onEvent(ev); err != nil {
				return err
			}
		}
	})
}
