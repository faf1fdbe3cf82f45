package eventlog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
)

// AppendRecord is a single appendable entry.
type AppendRecord struct {
	Header  []byte
	Payload []byte
}

// Log is an append-only, single-writer topic persisted in Pebble.
type Log struct {
	db    *pebblestore.DB
	topic string

	mu       sync.Mutex
	lastSeq  uint64
	notifyCh chan struct{}
	trimHook TrimHook
}

// OpenLog loads the topic's last sequence from metadata, if any.
func OpenLog(db *pebblestore.DB, topic string) (*Log, error) {
	if topic == "" {
		return nil, errors.New("eventlog: topic is required")
	}
	l := &Log{db: db, topic: topic, notifyCh: make(chan struct{}), trimHook: noopTrimHook{}}
	meta, err := db.Get(KeyLogMeta(topic))
	switch {
	case err == nil && len(meta) == 8:
		l.lastSeq = binary.BigEndian.Uint64(meta)
	case err == nil:
		return nil, fmt.Errorf("eventlog: corrupt meta for %q", topic)
	case !errors.Is(err, pebblestore.ErrNotFound):
		return nil, err
	}
	return l, nil
}

func (l *Log) Topic() string { return l.topic }

// LastSeq returns the highest assigned sequence (0 when empty).
func (l *Log) LastSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeq
}

// SetTrimHook installs a callback for ranges removed by trims.
func (l *Log) SetTrimHook(h TrimHook) {
	if h == nil {
		h = noopTrimHook{}
	}
	l.mu.Lock()
	l.trimHook = h
	l.mu.Unlock()
}

// Append writes recs and the new last sequence in one atomic batch and wakes
// waiters. Sequences start at 1.
func (l *Log) Append(ctx context.Context, recs []AppendRecord) ([]uint64, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.lastSeq
	seqs := make([]uint64, len(recs))
	err := l.db.Update(ctx, func(b *pebble.Batch) error {
		for i, r := range recs {
			next++
			if err := b.Set(KeyLogEntry(l.topic, next), EncodeRecord(r.Header, r.Payload), nil); err != nil {
				return err
			}
			seqs[i] = next
		}
		return b.Set(KeyLogMeta(l.topic), appendBE8(nil, next), nil)
	})
	if err != nil {
		return nil, err
	}
	l.lastSeq = next
	close(l.notifyCh)
	l.notifyCh = make(chan struct{})
	return seqs, nil
}

// changed returns a channel closed by the next Append.
func (l *Log) changed() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notifyCh
}
