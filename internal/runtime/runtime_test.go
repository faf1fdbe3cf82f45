package runtime

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rzbill/sluice/internal/auth"
	cfgpkg "github.com/rzbill/sluice/internal/config"
	"github.com/rzbill/sluice/internal/ledger"
	streamsvc "github.com/rzbill/sluice/internal/services/streams"
	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
)

func TestOpenCloseHealth(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func openWith(t *testing.T, cfg cfgpkg.Config, dir string, now int64) *Runtime {
	t.Helper()
	cfg.Rail.AllowMint = true
	rt, err := Open(Options{
		DataDir: dir,
		Fsync:   pebblestore.FsyncModeNever,
		Config:  cfg,
		Clock:   streamsvc.ClockFunc(func() int64 { return now }),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return rt
}

func addr(b byte) ledger.Address {
	var a ledger.Address
	a[5] = b
	return a
}

func exercise(t *testing.T, cfg cfgpkg.Config) {
	dir := t.TempDir()
	rt := openWith(t, cfg, dir, 1500)
	ctx := context.Background()
	if _, err := rt.Rail().Mint(ctx, addr(1), 1000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	pay := ledger.Payment{From: addr(1), Amount: 1000, Data: []any{"createStream", addr(2).String(), 1000, 2000}}
	if err := rt.Rail().Pay(ctx, pay); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if err := rt.Ledger().Withdraw(auth.WithCaller(ctx, addr(2)), 1, 500); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if rt.Journal().LastSeq() != 2 {
		t.Fatalf("journal seq %d", rt.Journal().LastSeq())
	}
	if err := rt.CheckHealth(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rt = openWith(t, cfg, dir, 1500)
	defer rt.Close()
	st, err := rt.Ledger().GetStream(ctx, 1)
	if err != nil || st.Remaining != 500 {
		t.Fatalf("after reopen: %+v %v", st, err)
	}
	if bal, _ := rt.Rail().Balance(ctx, addr(2)); bal != 500 {
		t.Fatalf("recipient balance %d", bal)
	}
}

func TestLedgerOnPebble(t *testing.T) {
	exercise(t, cfgpkg.Default())
}

func TestLedgerOnSQLite(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Ledger.Store = "sqlite"
	cfg.Ledger.SQLitePath = filepath.Join(t.TempDir(), "ledger.db")
	exercise(t, cfg)
}

func TestOpenRejectsBadCustody(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Rail.Custody = "not-an-address"
	_, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfg})
	if !errors.Is(err, ledger.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}
