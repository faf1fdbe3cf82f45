package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rzbill/sluice/internal/auth"
	cfgpkg "github.com/rzbill/sluice/internal/config"
	"github.com/rzbill/sluice/internal/ledger"
	"github.com/rzbill/sluice/internal/runtime"
	grpcserver "github.com/rzbill/sluice/internal/server/grpc"
	httpserver "github.com/rzbill/sluice/internal/server/http"
	streamsvc "github.com/rzbill/sluice/internal/services/streams"
	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
	logpkg "github.com/rzbill/sluice/pkg/log"
)

const testSecret = "cli-test"

type node struct {
	rt      *runtime.Runtime
	baseURL string
}

func startNode(t *testing.T) *node {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Rail.AllowMint = true
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Outputs: []string{"null"}})
	rt, err := runtime.Open(runtime.Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeNever,
		Config:  cfg,
		Logger:  logger,
		Clock:   streamsvc.ClockFunc(func() int64 { return 1500 }),
	})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	v := auth.NewVerifier(auth.Config{Secret: testSecret, Issuer: "sluice"})

	ctx, cancel := context.WithCancel(context.Background())
	gs := grpcserver.New(rt, v)
	done := make(chan struct{})
	go func() {
		_ = gs.ListenAndServe(ctx, "127.0.0.1:0")
		close(done)
	}()
	addrCtx, addrCancel := context.WithTimeout(ctx, 5*time.Second)
	defer addrCancel()
	addr := gs.Addr(addrCtx)
	if addr == "" {
		t.Fatalf("grpc listener never bound")
	}
	t.Setenv("SLUICE_GRPC", addr)

	hs := httptest.NewServer(httpserver.New(rt, v, logger).Handler())
	t.Cleanup(func() {
		hs.Close()
		cancel()
		<-done
		_ = rt.Close()
	})
	return &node{rt: rt, baseURL: hs.URL}
}

func (n *node) run(t *testing.T, token string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SLUICE_TOKEN", token)
	root := NewRoot(func() string { return n.baseURL })
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func tokenFor(t *testing.T, a ledger.Address) string {
	t.Helper()
	tok, err := auth.Issue(auth.Config{Secret: testSecret, Issuer: "sluice"}, a, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func TestAddressNewDerived(t *testing.T) {
	n := &node{}
	out, err := n.run(t, "", "address", "new", "--label", "alice")
	if err != nil {
		t.Fatalf("address new: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := ledger.DeriveAddress("alice")
	if got["base64"] != want.String() || got["hex"] != want.Hex() {
		t.Fatalf("address %v, want %s", got, want)
	}
}

func TestTokenIssueVerifies(t *testing.T) {
	n := &node{}
	a := ledger.DeriveAddress("alice")
	out, err := n.run(t, "", "token", "issue", "--secret", testSecret, "--subject", a.String(), "--ttl", "1m")
	if err != nil {
		t.Fatalf("token issue: %v", err)
	}
	got, err := auth.NewVerifier(auth.Config{Secret: testSecret, Issuer: "sluice"}).Verify(strings.TrimSpace(out))
	if err != nil || got != a {
		t.Fatalf("verify: %v, %v", got, err)
	}
	if _, err := n.run(t, "", "token", "issue", "--subject", a.String(), "--secret", ""); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestStreamCommandsEndToEnd(t *testing.T) {
	n := startNode(t)
	alice, bob := ledger.DeriveAddress("alice"), ledger.DeriveAddress("bob")

	if _, err := n.run(t, "", "rail", "mint", "--address", alice.String(), "--amount", "1000"); err != nil {
		t.Fatalf("mint: %v", err)
	}
	create := []string{"stream", "create", "--from", alice.String(), "--to", bob.String(), "--deposit", "1000", "--start", "1000", "--stop", "2000"}
	if _, err := n.run(t, tokenFor(t, bob), create...); err == nil || !strings.Contains(err.Error(), "PermissionDenied") {
		t.Fatalf("pay as bob: %v", err)
	}
	if _, err := n.run(t, tokenFor(t, alice), create...); err != nil {
		t.Fatalf("create: %v", err)
	}

	out, err := n.run(t, "", "stream", "list", "--sender", alice.String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []uint64
	if err := json.Unmarshal([]byte(out), &ids); err != nil || len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("ids %q: %v", out, err)
	}
	if _, err := n.run(t, "", "stream", "list"); err == nil {
		t.Fatalf("expected flag error")
	}

	out, err = n.run(t, "", "stream", "get", "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, `"available": 500`) {
		t.Fatalf("view %s", out)
	}
	if _, err := n.run(t, "", "stream", "get", "7"); err == nil || !strings.Contains(err.Error(), "NotFound") {
		t.Fatalf("get missing: %v", err)
	}

	out, err = n.run(t, tokenFor(t, bob), "stream", "withdraw", "1", "--all")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !strings.Contains(out, `"amount": 500`) {
		t.Fatalf("withdraw out %s", out)
	}
	if _, err := n.run(t, tokenFor(t, bob), "stream", "withdraw", "1", "--amount", "1"); err == nil || !strings.Contains(err.Error(), "FailedPrecondition") {
		t.Fatalf("overdraw: %v", err)
	}

	out, err = n.run(t, "", "rail", "balance", bob.String())
	if err != nil || !strings.Contains(out, `"balance": 500`) {
		t.Fatalf("balance %s: %v", out, err)
	}

	out, err = n.run(t, "", "events", "tail", "--from", "1", "--limit", "2")
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "StreamCreated") || !strings.Contains(lines[1], "Withdraw") {
		t.Fatalf("events %q", out)
	}

	out, err = n.run(t, tokenFor(t, alice), "stream", "cancel", "1")
	if err != nil || !strings.Contains(out, `"leftover": 500`) {
		t.Fatalf("cancel %s: %v", out, err)
	}
}

func TestHealthCommand(t *testing.T) {
	n := startNode(t)
	out, err := n.run(t, "", "health")
	if err != nil || !strings.Contains(out, `"status": "ok"`) {
		t.Fatalf("health %s: %v", out, err)
	}
}

func TestParseTimeMs(t *testing.T) {
	if ms, err := parseTimeMs("1700000000000"); err != nil || ms != 1700000000000 {
		t.Fatalf("ms: %d %v", ms, err)
	}
	if ms, err := parseTimeMs("2023-11-14T22:13:20Z"); err != nil || ms != 1700000000000 {
		t.Fatalf("rfc3339: %d %v", ms, err)
	}
	if _, err := parseTimeMs("tomorrow"); err == nil {
		t.Fatalf("expected error")
	}
}
