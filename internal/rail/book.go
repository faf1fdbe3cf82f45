package rail

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/rzbill/sluice/internal/ledger"
	"github.com/rzbill/sluice/internal/metrics"
	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
	logpkg "github.com/rzbill/sluice/pkg/log"
)

var balancePrefix = []byte("rail/bal/")

// DefaultCustodyLabel seeds the derived custody address.
const DefaultCustodyLabel = "sluice/custody"

func balanceKey(a ledger.Address) []byte {
	k := make([]byte, 0, len(balancePrefix)+28)
	k = append(k, balancePrefix...)
	return append(k, a.String()...)
}

// Receiver is invoked for every payment into custody. A non-nil error
// rejects the payment.
type Receiver interface {
	OnPayment(ctx context.Context, p ledger.Payment) error
}

// Options configures a Book.
type Options struct {
	// Custody holds deposited value. Zero derives it from DefaultCustodyLabel.
	Custody   ledger.Address
	AllowMint bool
	Logger    logpkg.Logger
}

// Book is a balance ledger on Pebble that moves value between addresses
// and the custody account.
type Book struct {
	db        *pebblestore.DB
	custody   ledger.Address
	allowMint bool
	logger    logpkg.Logger

	mu       sync.Mutex
	receiver Receiver
}

func NewBook(db *pebblestore.DB, opts Options) *Book {
	custody := opts.Custody
	if custody.IsZero() {
		custody = ledger.DeriveAddress(DefaultCustodyLabel)
	}
	l := opts.Logger
	if l == nil {
		l = logpkg.NewLogger()
	}
	return &Book{db: db, custody: custody, allowMint: opts.AllowMint, logger: l.WithComponent("rail")}
}

func (b *Book) Custody() ledger.Address { return b.custody }

// SetReceiver registers the payment handler.
func (b *Book) SetReceiver(r Receiver) {
	b.mu.Lock()
	b.receiver = r
	b.mu.Unlock()
}

func (b *Book) Balance(ctx context.Context, addr ledger.Address) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return readBalance(b.db.Get, addr)
}

func readBalance(get func([]byte) ([]byte, error), addr ledger.Address) (int64, error) {
	raw, err := get(balanceKey(addr))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("read balance %s: corrupt value (%d bytes)", addr, len(raw))
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

func batchGetter(bt *pebble.Batch) func([]byte) ([]byte, error) {
	return func(k []byte) ([]byte, error) {
		v, closer, err := bt.Get(k)
		if err != nil {
			return nil, err
		}
		defer closer.Close()
		return append([]byte(nil), v...), nil
	}
}

// move shifts amount from -> to in one batch. Callers hold b.mu.
func (b *Book) move(ctx context.Context, op string, from, to ledger.Address, amount int64) error {
	if amount <= 0 {
		return ledger.Validation(op, "amount must be positive, got %d", amount)
	}
	if from == to {
		return ledger.Validation(op, "%s cannot pay itself", from)
	}
	return b.db.Update(ctx, func(bt *pebble.Batch) error {
		get := batchGetter(bt)
		fromBal, err := readBalance(get, from)
		if err != nil {
			return err
		}
		if fromBal < amount {
			return ledger.InsufficientFunds(op, "%s holds %d, needs %d", from, fromBal, amount)
		}
		toBal, err := readBalance(get, to)
		if err != nil {
			return err
		}
		if toBal > math.MaxInt64-amount {
			return ledger.Validation(op, "balance of %s would overflow", to)
		}
		if err := bt.Set(balanceKey(from), be8(fromBal-amount), nil); err != nil {
			return err
		}
		return bt.Set(balanceKey(to), be8(toBal+amount), nil)
	})
}

func be8(v int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return buf[:]
}

// Transfer pays amount out of custody.
func (b *Book) Transfer(ctx context.Context, to ledger.Address, amount int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.move(ctx, "transfer", b.custody, to, amount)
}

// Reverse returns a prior Transfer to custody.
func (b *Book) Reverse(ctx context.Context, from ledger.Address, amount int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.move(ctx, "reverse", from, b.custody, amount); err != nil {
		return err
	}
	metrics.AddValueMoved("reversed", amount)
	return nil
}

// Pay moves amount from the payer into custody and hands the payment to
// the receiver. If the receiver rejects it the deposit is refunded.
func (b *Book) Pay(ctx context.Context, p ledger.Payment) error {
	if p.From == b.custody {
		return ledger.Validation("pay", "custody cannot pay into itself")
	}
	b.mu.Lock()
	recv := b.receiver
	err := b.move(ctx, "pay", p.From, b.custody, p.Amount)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	if recv == nil {
		err = errors.New("rail: no payment receiver registered")
	} else {
		err = recv.OnPayment(ctx, p)
	}
	if err == nil {
		return nil
	}

	b.mu.Lock()
	rerr := b.move(context.WithoutCancel(ctx), "refund", b.custody, p.From, p.Amount)
	b.mu.Unlock()
	if rerr != nil {
		b.logger.Error("rail.refund_failed", logpkg.Str("payer", p.From.String()), logpkg.Int64("amount", p.Amount), logpkg.Err(rerr))
		return errors.Join(err, fmt.Errorf("refund: %w", rerr))
	}
	return err
}

// Mint credits addr out of thin air. Disabled unless AllowMint is set.
func (b *Book) Mint(ctx context.Context, to ledger.Address, amount int64) (int64, error) {
	if !b.allowMint {
		return 0, ledger.Unauthorized("mint", "minting is disabled")
	}
	if amount <= 0 {
		return 0, ledger.Validation("mint", "amount must be positive, got %d", amount)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var next int64
	err := b.db.Update(ctx, func(bt *pebble.Batch) error {
		cur, err := readBalance(batchGetter(bt), to)
		if err != nil {
			return err
		}
		if cur > math.MaxInt64-amount {
			return ledger.Validation("mint", "balance of %s would overflow", to)
		}
		next = cur + amount
		return bt.Set(balanceKey(to), be8(next), nil)
	})
	if err != nil {
		return 0, err
	}
	b.logger.Info("rail.mint", logpkg.Str("to", to.String()), logpkg.Int64("amount", amount))
	return next, nil
}
