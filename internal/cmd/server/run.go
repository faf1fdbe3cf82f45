package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/rzbill/sluice/internal/auth"
	cfgpkg "github.com/rzbill/sluice/internal/config"
	"github.com/rzbill/sluice/internal/runtime"
	grpcserver "github.com/rzbill/sluice/internal/server/grpc"
	httpserver "github.com/rzbill/sluice/internal/server/http"
	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
	logpkg "github.com/rzbill/sluice/pkg/log"
	"go.uber.org/multierr"
)

const (
	DefaultGRPCAddr = ":50051"
	DefaultHTTPAddr = ":8080"
)

type Options struct {
	DataDir  string
	GRPCAddr string
	HTTPAddr string
	Config   cfgpkg.Config
	// Logger overrides the logger built from Config.Log.
	Logger logpkg.Logger
	// Ready, when set, receives the bound addresses once both listeners are up.
	Ready func(grpcAddr, httpAddr string)
}

func (o *Options) applyDefaults() {
	if o.DataDir == "" {
		o.DataDir = cfgpkg.DefaultDataDir()
	}
	if o.GRPCAddr == "" {
		o.GRPCAddr = DefaultGRPCAddr
	}
	if o.HTTPAddr == "" {
		o.HTTPAddr = DefaultHTTPAddr
	}
}

// Run starts gRPC and HTTP servers and blocks until ctx is cancelled or
// a listener fails.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	opts.applyDefaults()
	if opts.Config.Ledger.Store == "sqlite" && opts.Config.Ledger.SQLitePath == "" {
		opts.Config.Ledger.SQLitePath = filepath.Join(opts.DataDir, "ledger.db")
	}

	if err := opts.Config.Validate(); err != nil {
		return err
	}
	procLogger := opts.Logger
	if procLogger == nil {
		l, err := logpkg.ApplyConfig(&opts.Config.Log)
		if err != nil {
			return err
		}
		procLogger = l
		// Pebble and net/http write through the standard logger.
		logpkg.RedirectStdLog(procLogger)
	}
	fsync, err := pebblestore.ParseFsyncMode(opts.Config.Storage.Fsync)
	if err != nil {
		return err
	}

	rt, err := runtime.Open(runtime.Options{
		DataDir: filepath.Join(opts.DataDir, "store"),
		Fsync:   fsync,
		Config:  opts.Config,
		Logger:  procLogger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	verifier := auth.NewVerifier(auth.Config{
		Secret:   opts.Config.Auth.Secret,
		Issuer:   opts.Config.Auth.Issuer,
		Audience: opts.Config.Auth.Audience,
	})
	if !verifier.Enabled() {
		procLogger.Warn("server.auth_disabled", logpkg.Str("hint", "set SLUICE_AUTH_SECRET to accept bearer tokens"))
	}

	procLogger.Info("server.starting",
		logpkg.Str("grpc", opts.GRPCAddr),
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("store", opts.Config.Ledger.Store),
		logpkg.Str("level", opts.Config.Log.Level))

	gsrv := grpcserver.New(rt, verifier)
	hsrv := httpserver.New(rt, verifier, procLogger)

	runCtx, cancel := context.WithCancel(sctx)
	defer cancel()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	serve := func(name string, fn func(context.Context, string) error, addr string) {
		defer wg.Done()
		if err := fn(runCtx, addr); err != nil && runCtx.Err() == nil {
			procLogger.Error("server.listener_failed", logpkg.Str("transport", name), logpkg.Err(err))
			mu.Lock()
			errs = multierr.Append(errs, err)
			mu.Unlock()
			cancel()
		}
	}
	wg.Add(2)
	go serve("grpc", gsrv.ListenAndServe, opts.GRPCAddr)
	go serve("http", hsrv.ListenAndServe, opts.HTTPAddr)

	if opts.Ready != nil {
		go func() {
			g, h := gsrv.Addr(runCtx), hsrv.Addr(runCtx)
			if g != "" && h != "" {
				opts.Ready(g, h)
			}
		}()
	}

	<-runCtx.Done()
	procLogger.Info("server.stopping")
	gsrv.Close()
	hsrv.Close()
	wg.Wait()
	return errs
}
