package ledger

import "context"

// Store persists streams and their sender/recipient indices. Every write
// touches the primary record and both index entries atomically.
type Store interface {
	// Insert assigns the next id to s, then persists the counter, the record
	// and both index entries in one atomic write.
	Insert(ctx context.Context, s Stream) (Stream, error)
	Get(ctx context.Context, id uint64) (Stream, error)
	// Update rewrites the mutable fields of an existing record.
	Update(ctx context.Context, s Stream) error
	// Delete removes the record and both index entries.
	Delete(ctx context.Context, id uint64) error
	BySender(ctx context.Context, sender Address) (Cursor, error)
	ByRecipient(ctx context.Context, recipient Address) (Cursor, error)
	LastID(ctx context.Context) (uint64, error)
}

// Cursor is a lazy, forward-only, non-restartable sequence of stream ids
// read from one consistent view. Callers must Close it.
type Cursor interface {
	Next() bool
	ID() uint64
	Err() error
	Close() error
}

// Collect drains up to limit ids from c (all when limit <= 0) and closes it.
func Collect(c Cursor, limit int) ([]uint64, error) {
	defer c.Close()
	var ids []uint64
	for c.Next() {
		ids = append(ids, c.ID())
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, c.Err()
}

// SliceCursor walks a materialized id list.
type SliceCursor struct {
	ids []uint64
	pos int
	cur uint64
}

func NewSliceCursor(ids []uint64) *SliceCursor { return &SliceCursor{ids: ids} }

func (c *SliceCursor) Next() bool {
	if c.pos >= len(c.ids) {
		return false
	}
	c.cur = c.ids[c.pos]
	c.pos++
	return true
}

func (c *SliceCursor) ID() uint64 { return c.cur }
func (c *SliceCursor) Err() error { return nil }

func (c *SliceCursor) Close() error {
	c.pos = len(c.ids)
	return nil
}
