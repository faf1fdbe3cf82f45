package grpcserver

import (
	"context"
	"errors"

	sluicev1 "github.com/rzbill/sluice/api/sluice/v1"
	"github.com/rzbill/sluice/internal/auth"
	"github.com/rzbill/sluice/internal/events"
	"github.com/rzbill/sluice/internal/ledger"
	"github.com/rzbill/sluice/internal/rail"
	streamsvc "github.com/rzbill/sluice/internal/services/streams"
)

type streamsSvc struct {
	svc     *streamsvc.Service
	book    *rail.Book
	journal *events.Journal
}

func toStream(s ledger.Stream) *sluicev1.Stream {
	return &sluicev1.Stream{
		Id:        s.ID,
		Deposit:   s.Deposit,
		Remaining: s.Remaining,
		Sender:    s.Sender.String(),
		Recipient: s.Recipient.String(),
		Start:     s.Start,
		Stop:      s.Stop,
	}
}

func toView(v streamsvc.StreamView) *sluicev1.StreamView {
	return &sluicev1.StreamView{Stream: toStream(v.Stream), Vested: v.Vested, Available: v.Available, AtMs: v.AtMs}
}

func toEnvelope(e events.Entry) *sluicev1.EventEnvelope {
	ev := &sluicev1.Event{
		Kind:     string(e.Event.Kind),
		StreamId: e.Event.StreamID,
		Stream:   e.Event.Stream,
		Amount:   e.Event.Amount,
	}
	if e.Event.Requester != nil {
		ev.Requester = e.Event.Requester.String()
	}
	return &sluicev1.EventEnvelope{Seq: e.Seq, Id: e.ID.String(), AtMs: e.AtMs, Event: ev}
}

func (s *streamsSvc) GetStream(ctx context.Context, req *sluicev1.GetStreamRequest) (*sluicev1.GetStreamResponse, error) {
	v, err := s.svc.View(ctx, req.GetId())
	if err != nil {
		return nil, toStatus(err)
	}
	return &sluicev1.GetStreamResponse{View: toView(v)}, nil
}

func (s *streamsSvc) ListStreams(ctx context.Context, req *sluicev1.ListStreamsRequest) (*sluicev1.ListStreamsResponse, error) {
	var opts streamsvc.ListOptions
	if req.Sender != "" {
		a, err := ledger.ParseAddress(req.Sender)
		if err != nil {
			return nil, toStatus(err)
		}
		opts.Sender = &a
	}
	if req.Recipient != "" {
		a, err := ledger.ParseAddress(req.Recipient)
		if err != nil {
			return nil, toStatus(err)
		}
		opts.Recipient = &a
	}

	if !req.Expand && req.Filter == "" {
		var (
			cur ledger.Cursor
			err error
		)
		switch {
		case opts.Sender != nil && opts.Recipient == nil:
			cur, err = s.svc.StreamsBySender(ctx, *opts.Sender)
		case opts.Recipient != nil && opts.Sender == nil:
			cur, err = s.svc.StreamsByRecipient(ctx, *opts.Recipient)
		default:
			err = ledger.Validation("list", "exactly one of sender or recipient is required")
		}
		if err != nil {
			return nil, toStatus(err)
		}
		ids, err := ledger.Collect(cur, int(req.Limit))
		if err != nil {
			return nil, toStatus(err)
		}
		return &sluicev1.ListStreamsResponse{Ids: ids}, nil
	}

	opts.Filter = req.Filter
	opts.Limit = int(req.Limit)
	views, err := s.svc.ListStreams(ctx, opts)
	if err != nil {
		return nil, toStatus(err)
	}
	out := &sluicev1.ListStreamsResponse{Streams: make([]*sluicev1.StreamView, 0, len(views))}
	for _, v := range views {
		out.Ids = append(out.Ids, v.ID)
		out.Streams = append(out.Streams, toView(v))
	}
	return out, nil
}

func (s *streamsSvc) Available(ctx context.Context, req *sluicev1.AvailableRequest) (*sluicev1.AvailableResponse, error) {
	n, err := s.svc.Available(ctx, req.Id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &sluicev1.AvailableResponse{Id: req.Id, Available: n}, nil
}

func (s *streamsSvc) Withdraw(ctx context.Context, req *sluicev1.WithdrawRequest) (*sluicev1.WithdrawResponse, error) {
	if err := s.svc.Withdraw(ctx, req.Id, req.Amount); err != nil {
		return nil, toStatus(err)
	}
	return &sluicev1.WithdrawResponse{Success: true}, nil
}

func (s *streamsSvc) CancelStream(ctx context.Context, req *sluicev1.CancelStreamRequest) (*sluicev1.CancelStreamResponse, error) {
	out, err := s.svc.CancelStream(ctx, req.Id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &sluicev1.CancelStreamResponse{Success: true, Available: out.Available, Leftover: out.Leftover}, nil
}

func (s *streamsSvc) Pay(ctx context.Context, req *sluicev1.PayRequest) (*sluicev1.PayResponse, error) {
	from, err := ledger.ParseAddress(req.From)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := auth.RequireCaller(ctx, "pay", from); err != nil {
		return nil, toStatus(err)
	}
	if err := s.book.Pay(ctx, ledger.Payment{From: from, Amount: req.Amount, Data: req.Data}); err != nil {
		return nil, toStatus(err)
	}
	return &sluicev1.PayResponse{Success: true}, nil
}

func (s *streamsSvc) Mint(ctx context.Context, req *sluicev1.MintRequest) (*sluicev1.MintResponse, error) {
	to, err := ledger.ParseAddress(req.Address)
	if err != nil {
		return nil, toStatus(err)
	}
	bal, err := s.book.Mint(ctx, to, req.Amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return &sluicev1.MintResponse{Balance: bal}, nil
}

func (s *streamsSvc) Balance(ctx context.Context, req *sluicev1.BalanceRequest) (*sluicev1.BalanceResponse, error) {
	a, err := ledger.ParseAddress(req.Address)
	if err != nil {
		return nil, toStatus(err)
	}
	bal, err := s.book.Balance(ctx, a)
	if err != nil {
		return nil, toStatus(err)
	}
	return &sluicev1.BalanceResponse{Address: a.String(), Balance: bal}, nil
}

func (s *streamsSvc) WatchEvents(req *sluicev1.WatchEventsRequest, stream sluicev1.StreamsService_WatchEventsServer) error {
	ctx := stream.Context()
	err := s.journal.Watch(ctx, events.WatchOptions{From: req.From, Consumer: req.Consumer}, func(e events.Entry) error {
		return stream.Send(toEnvelope(e))
	})
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil
	}
	return toStatus(err)
}
