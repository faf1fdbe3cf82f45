package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	sluicev1 "github.com/rzbill/sluice/api/sluice/v1"
	"github.com/rzbill/sluice/internal/auth"
	cfgpkg "github.com/rzbill/sluice/internal/config"
	"github.com/rzbill/sluice/internal/ledger"
	"github.com/rzbill/sluice/internal/runtime"
	streamsvc "github.com/rzbill/sluice/internal/services/streams"
	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1 << 20

var authCfg = auth.Config{Secret: "grpc-test", Issuer: "sluice"}

func dialer(s *grpc.Server) func(context.Context, string) (net.Conn, error) {
	lis := bufconn.Listen(bufSize)
	go func() { _ = s.Serve(lis) }()
	return func(ctx context.Context, s string) (net.Conn, error) { return lis.DialContext(ctx) }
}

func addr(b byte) ledger.Address {
	var a ledger.Address
	a[0], a[19] = b, b
	return a
}

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Rail.AllowMint = true
	rt, err := runtime.Open(runtime.Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeNever,
		Config:  cfg,
		Clock:   streamsvc.ClockFunc(func() int64 { return 1500 }),
	})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	srv := New(rt, auth.NewVerifier(authCfg))
	d := dialer(srv.grpc)
	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(d), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.grpc.Stop()
		_ = rt.Close()
	})
	return conn
}

func as(t *testing.T, ctx context.Context, a ledger.Address) context.Context {
	t.Helper()
	tok, err := auth.Issue(authCfg, a, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tok)
}

func wantCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	if status.Code(err) != code {
		t.Fatalf("want %s, got %v", code, err)
	}
}

func TestHealthOverGRPC(t *testing.T) {
	conn := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := sluicev1.NewHealthServiceClient(conn).Check(ctx, &sluicev1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.GetStatus() != "ok" {
		t.Fatalf("status %q", res.GetStatus())
	}
}

func TestStreamLifecycleOverGRPC(t *testing.T) {
	conn := startServer(t)
	c := sluicev1.NewStreamsServiceClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	alice, bob, eve := addr(1), addr(2), addr(3)

	if _, err := c.Mint(ctx, &sluicev1.MintRequest{Address: alice.String(), Amount: 1000}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	pay := &sluicev1.PayRequest{From: alice.String(), Amount: 1000, Data: []any{"createStream", bob.String(), 1000, 2000}}
	_, err := c.Pay(as(t, ctx, bob), pay)
	wantCode(t, err, codes.PermissionDenied)
	if _, err := c.Pay(as(t, ctx, alice), pay); err != nil {
		t.Fatalf("pay: %v", err)
	}

	list, err := c.ListStreams(ctx, &sluicev1.ListStreamsRequest{Sender: alice.String()})
	if err != nil || len(list.Ids) != 1 || list.Ids[0] != 1 {
		t.Fatalf("list: %+v %v", list, err)
	}
	got, err := c.GetStream(ctx, &sluicev1.GetStreamRequest{Id: 1})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.View.Stream.Recipient != bob.String() || got.View.Available != 500 {
		t.Fatalf("view %+v", got.View)
	}
	_, err = c.GetStream(ctx, &sluicev1.GetStreamRequest{Id: 99})
	wantCode(t, err, codes.NotFound)

	_, err = c.Withdraw(as(t, ctx, eve), &sluicev1.WithdrawRequest{Id: 1, Amount: 10})
	wantCode(t, err, codes.PermissionDenied)
	_, err = c.Withdraw(as(t, ctx, bob), &sluicev1.WithdrawRequest{Id: 1, Amount: 600})
	wantCode(t, err, codes.FailedPrecondition)
	_, err = c.Withdraw(as(t, ctx, bob), &sluicev1.WithdrawRequest{Id: 1, Amount: 0})
	wantCode(t, err, codes.InvalidArgument)
	if _, err := c.Withdraw(as(t, ctx, bob), &sluicev1.WithdrawRequest{Id: 1, Amount: 500}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	bal, err := c.Balance(ctx, &sluicev1.BalanceRequest{Address: bob.String()})
	if err != nil || bal.Balance != 500 {
		t.Fatalf("balance: %+v %v", bal, err)
	}

	res, err := c.CancelStream(as(t, ctx, alice), &sluicev1.CancelStreamRequest{Id: 1})
	if err != nil || !res.Success || res.Available != 0 || res.Leftover != 500 {
		t.Fatalf("cancel: %+v %v", res, err)
	}

	watch, err := c.WatchEvents(ctx, &sluicev1.WatchEventsRequest{From: 1})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	want := []string{"StreamCreated", "Withdraw", "StreamCanceled"}
	for _, kind := range want {
		env, err := watch.Recv()
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if env.Event.Kind != kind {
			t.Fatalf("event %s, want %s", env.Event.Kind, kind)
		}
	}
}

func TestBadTokenRejected(t *testing.T) {
	conn := startServer(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer nope")
	_, err := sluicev1.NewStreamsServiceClient(conn).Available(ctx, &sluicev1.AvailableRequest{Id: 1})
	wantCode(t, err, codes.Unauthenticated)
}
