package serverrun

import (
	"context"
	"net/http"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/sluice/internal/config"
	logpkg "github.com/rzbill/sluice/pkg/log"
)

func TestApplyDefaults(t *testing.T) {
	opts := Options{}
	opts.applyDefaults()
	if opts.DataDir == "" || opts.GRPCAddr != DefaultGRPCAddr || opts.HTTPAddr != DefaultHTTPAddr {
		t.Fatalf("defaults not applied: %+v", opts)
	}
	opts = Options{DataDir: "/custom", GRPCAddr: ":1", HTTPAddr: ":2"}
	opts.applyDefaults()
	if opts.DataDir != "/custom" || opts.GRPCAddr != ":1" || opts.HTTPAddr != ":2" {
		t.Fatalf("explicit values overwritten: %+v", opts)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Storage.Fsync = "sometimes"
	err := Run(context.Background(), Options{DataDir: t.TempDir(), Config: cfg, Logger: quietLogger(t)})
	if err == nil {
		t.Fatalf("expected config error")
	}
}

func quietLogger(t *testing.T) logpkg.Logger {
	t.Helper()
	l, err := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Outputs: []string{"null"}})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestRunServesUntilCancelled(t *testing.T) {
	if testing.Short() {
		t.Skip("starts listeners")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			DataDir:  t.TempDir(),
			GRPCAddr: "127.0.0.1:0",
			HTTPAddr: "127.0.0.1:0",
			Config:   cfgpkg.Default(),
			Logger:   quietLogger(t),
			Ready:    func(_, httpAddr string) { ready <- httpAddr },
		})
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("run exited early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatalf("listeners never came up")
	}

	res, err := http.Get("http://" + addr + "/v1/healthz")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d", res.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("run did not stop")
	}
}
