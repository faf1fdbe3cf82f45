package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/rzbill/sluice/internal/auth"
	cfgpkg "github.com/rzbill/sluice/internal/config"
	"github.com/rzbill/sluice/internal/events"
	"github.com/rzbill/sluice/internal/ledger"
	"github.com/rzbill/sluice/internal/metrics"
	"github.com/rzbill/sluice/internal/rail"
	streamsvc "github.com/rzbill/sluice/internal/services/streams"
	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
	"github.com/rzbill/sluice/internal/storage/sqlite"
	logpkg "github.com/rzbill/sluice/pkg/log"
	"go.uber.org/multierr"
)

// Options for building the Runtime.
type Options struct {
	DataDir string
	Fsync   pebblestore.FsyncMode
	Config  cfgpkg.Config
	Logger  logpkg.Logger
	// Clock overrides the engine clock (tests).
	Clock streamsvc.Clock
}

// Runtime wires storage, the rail, the event journal and the ledger engine
// for a single-node instance.
type Runtime struct {
	db      *pebblestore.DB
	sqlite  *sqlite.Store
	store   ledger.Store
	journal *events.Journal
	book    *rail.Book
	ledger  *streamsvc.Service
	config  cfgpkg.Config
	logger  logpkg.Logger
}

// Open initializes storage and the ledger stack. On failure everything
// opened so far is closed again.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	l := opts.Logger
	if l == nil {
		l = logpkg.NewLogger()
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: cfg.Storage.FsyncInterval.Std(),
		Metrics:       metrics.Storage{},
	})
	if err != nil {
		return nil, err
	}
	rt := &Runtime{db: db, config: cfg, logger: l.WithComponent("runtime")}
	if err := rt.wire(opts, l); err != nil {
		return nil, multierr.Append(err, rt.Close())
	}
	rt.logger.Info("runtime.opened",
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("store", storeName(cfg.Ledger.Store)),
		logpkg.Str("custody", rt.book.Custody().String()))
	return rt, nil
}

func (r *Runtime) wire(opts Options, l logpkg.Logger) (err error) {
	cfg := opts.Config

	switch cfg.Ledger.Store {
	case "sqlite":
		r.sqlite, err = sqlite.Open(cfg.Ledger.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		r.store = r.sqlite
	case "", "pebble":
		r.store = ledger.NewPebbleStore(r.db)
	default:
		return fmt.Errorf("unknown ledger store %q", cfg.Ledger.Store)
	}

	r.journal, err = events.Open(r.db, events.Options{
		Topic:        cfg.Events.Topic,
		RetentionAge: cfg.Events.RetentionAge.Std(),
		MaxBytes:     cfg.Events.MaxBytes,
		Logger:       l,
	})
	if err != nil {
		return err
	}

	var custody ledger.Address
	if cfg.Rail.Custody != "" {
		custody, err = ledger.ParseAddress(cfg.Rail.Custody)
		if err != nil {
			return fmt.Errorf("rail.custody: %w", err)
		}
	}
	r.book = rail.NewBook(r.db, rail.Options{Custody: custody, AllowMint: cfg.Rail.AllowMint, Logger: l})

	r.ledger, err = streamsvc.New(streamsvc.Deps{
		Store:    r.store,
		Oracle:   auth.ContextOracle{},
		Rail:     r.book,
		Notifier: r.journal,
		Clock:    opts.Clock,
		Policy: streamsvc.Policy{
			RequireFutureStart:  cfg.Ledger.RequireFutureStart,
			AllowSenderWithdraw: cfg.Ledger.AllowSenderWithdraw,
			ListLimit:           cfg.Ledger.ListLimit,
		},
		Logger: l,
	})
	if err != nil {
		return err
	}
	r.book.SetReceiver(r.ledger)
	return nil
}

func storeName(s string) string {
	if s == "" {
		return "pebble"
	}
	return s
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	var err error
	if r.sqlite != nil {
		err = multierr.Append(err, r.sqlite.Close())
		r.sqlite = nil
	}
	if r.db != nil {
		err = multierr.Append(err, r.db.Close())
		r.db = nil
	}
	return err
}

// CheckHealth verifies every store can be read.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	err = it.Close()
	if r.sqlite != nil {
		err = multierr.Append(err, r.sqlite.Ping(ctx))
	}
	return err
}

func (r *Runtime) Ledger() *streamsvc.Service { return r.ledger }

func (r *Runtime) Rail() *rail.Book { return r.book }

func (r *Runtime) Journal() *events.Journal { return r.journal }

func (r *Runtime) Store() ledger.Store { return r.store }

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
