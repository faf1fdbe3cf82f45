package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
)

// PebbleStore is the Pebble-backed Store.
type PebbleStore struct {
	db *pebblestore.DB
	// mu serializes id allocation and read-modify-write updates.
	mu sync.Mutex
}

func NewPebbleStore(db *pebblestore.DB) *PebbleStore { return &PebbleStore{db: db} }

func (p *PebbleStore) LastID(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.lastID(p.db.Get)
}

func (p *PebbleStore) lastID(get func([]byte) ([]byte, error)) (uint64, error) {
	raw, err := get(lastIDKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read last_id: %w", err)
	}
	id, ok := decodeID(raw)
	if !ok {
		return 0, fmt.Errorf("read last_id: corrupt counter (%d bytes)", len(raw))
	}
	return id, nil
}

func (p *PebbleStore) Insert(ctx context.Context, s Stream) (Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	last, err := p.lastID(p.db.Get)
	if err != nil {
		return Stream{}, err
	}
	if last == math.MaxUint64 {
		return Stream{}, errors.New("stream id space exhausted")
	}
	s.ID = last + 1
	rec, err := EncodeRecord(s)
	if err != nil {
		return Stream{}, err
	}
	err = p.db.Update(ctx, func(b *pebble.Batch) error {
		if err := b.Set(lastIDKey, encodeID(s.ID), nil); err != nil {
			return err
		}
		if err := b.Set(KeyStream(s.ID), rec, nil); err != nil {
			return err
		}
		if err := b.Set(KeySenderIndex(s.Sender, s.ID), encodeID(s.ID), nil); err != nil {
			return err
		}
		return b.Set(KeyRecipientIndex(s.Recipient, s.ID), encodeID(s.ID), nil)
	})
	if err != nil {
		return Stream{}, fmt.Errorf("insert stream: %w", err)
	}
	return s, nil
}

func (p *PebbleStore) Get(ctx context.Context, id uint64) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return Stream{}, err
	}
	raw, err := p.db.Get(KeyStream(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return Stream{}, NotFound("get", "stream %d", id)
	}
	if err != nil {
		return Stream{}, fmt.Errorf("get stream %d: %w", id, err)
	}
	return DecodeRecord(raw)
}

// GetRecord returns the raw persisted record.
func (p *PebbleStore) GetRecord(ctx context.Context, id uint64) ([]byte, error) {
	s, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return EncodeRecord(s)
}

func (p *PebbleStore) Update(ctx context.Context, s Stream) error {
	if s.Remaining == 0 {
		return Validation("update", "stream %d is exhausted; delete it instead", s.ID)
	}
	rec, err := EncodeRecord(s)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db.Update(ctx, func(b *pebble.Batch) error {
		cur, err := getInBatch(b, s.ID)
		if err != nil {
			return err
		}
		if !cur.SameTerms(s) {
			return Validation("update", "stream %d: write-once fields changed", s.ID)
		}
		return b.Set(KeyStream(s.ID), rec, nil)
	})
}

func (p *PebbleStore) Delete(ctx context.Context, id uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db.Update(ctx, func(b *pebble.Batch) error {
		cur, err := getInBatch(b, id)
		if err != nil {
			return err
		}
		if err := b.Delete(KeyStream(id), nil); err != nil {
			return err
		}
		if err := b.Delete(KeySenderIndex(cur.Sender, id), nil); err != nil {
			return err
		}
		return b.Delete(KeyRecipientIndex(cur.Recipient, id), nil)
	})
}

func getInBatch(b *pebble.Batch, id uint64) (Stream, error) {
	raw, closer, err := b.Get(KeyStream(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return Stream{}, NotFound("get", "stream %d", id)
	}
	if err != nil {
		return Stream{}, err
	}
	defer closer.Close()
	return DecodeRecord(raw)
}

func (p *PebbleStore) BySender(ctx context.Context, sender Address) (Cursor, error) {
	return p.scan(ctx, KeySenderIndexPrefix(sender))
}

func (p *PebbleStore) ByRecipient(ctx context.Context, recipient Address) (Cursor, error) {
	return p.scan(ctx, KeyRecipientIndexPrefix(recipient))
}

func (p *PebbleStore) scan(ctx context.Context, prefix []byte) (Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	it, err := p.db.NewIter(pebblestore.PrefixIterOptions(prefix))
	if err != nil {
		return nil, fmt.Errorf("index scan: %w", err)
	}
	return &iterCursor{it: it}, nil
}

// iterCursor reads index values from a Pebble iterator, which observes a
// fixed point-in-time view for its lifetime.
type iterCursor struct {
	it      *pebble.Iterator
	started bool
	cur     uint64
	err     error
	closed  bool
}

func (c *iterCursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	var ok bool
	if !c.started {
		c.started = true
		ok = c.it.First()
	} else {
		ok = c.it.Next()
	}
	if !ok {
		c.err = c.it.Error()
		return false
	}
	id, valid := decodeID(c.it.Value())
	if !valid {
		c.err = fmt.Errorf("index entry %q: corrupt id", c.it.Key())
		return false
	}
	c.cur = id
	return true
}

func (c *iterCursor) ID() uint64 { return c.cur }
func (c *iterCursor) Err() error { return c.err }

func (c *iterCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.it.Close()
}
