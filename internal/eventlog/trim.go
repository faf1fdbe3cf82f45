package eventlog

import (
	"context"
	"time"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
)

// HeaderTimestampExtractor extracts a write timestamp (ms) from an entry header.
type HeaderTimestampExtractor func(header []byte) (int64, bool)

// TrimHook observes each committed trim batch.
type TrimHook interface {
	Trimmed(topic string, minSeq, maxSeq uint64, count int)
}

type noopTrimHook struct{}

func (noopTrimHook) Trimmed(string, uint64, uint64, int) {}

// trimBatch accumulates deletes and reports them to the hook on commit.
type trimBatch struct {
	l        *Log
	b        *pebble.Batch
	n        int
	min, max uint64
}

func (t *trimBatch) add(key []byte) error {
	if t.b == nil {
		t.b = t.l.db.NewBatch()
	}
	seq := seqFromEntryKey(key)
	if t.n == 0 {
		t.min = seq
	}
	t.max = seq
	t.n++
	return t.b.Delete(key, nil)
}

func (t *trimBatch) flush(ctx context.Context, throttle time.Duration) error {
	if t.b == nil || t.n == 0 {
		return nil
	}
	defer func() {
		t.b.Close()
		t.b, t.n = nil, 0
	}()
	if err := t.l.db.CommitBatch(ctx, t.b); err != nil {
		return err
	}
	t.l.mu.Lock()
	hook := t.l.trimHook
	t.l.mu.Unlock()
	hook.Trimmed(t.l.topic, t.min, t.max, t.n)
	if throttle > 0 {
		time.Sleep(throttle)
	}
	return nil
}

func (l *Log) entryIter() (*pebble.Iterator, error) {
	return l.db.NewIter(pebblestore.PrefixIterOptions(KeyLogEntryPrefix(l.topic)))
}

// TrimOlderThan deletes the oldest entries whose header timestamp is before
// cutoffMs, stopping at the first newer (or undated) entry. Deletes commit in
// batches of batchLimit. Returns the count and the last deleted sequence.
func (l *Log) TrimOlderThan(ctx context.Context, cutoffMs int64, batchLimit int, throttle time.Duration, tsx HeaderTimestampExtractor) (int, uint64, error) {
	if batchLimit <= 0 {
		batchLimit = 1024
	}
	it, err := l.entryIter()
	if err != nil {
		return 0, 0, err
	}
	defer it.Close()

	tb := &trimBatch{l: l}
	deleted := 0
	var last uint64
	for ok := it.First(); ok; ok = it.Next() {
		dec, valid := DecodeRecord(it.Value())
		if !valid {
			break
		}
		ms, dated := tsx(dec.Header)
		if !dated || ms >= cutoffMs {
			break
		}
		if err := tb.add(it.Key()); err != nil {
			return deleted, last, err
		}
		deleted++
		last = seqFromEntryKey(it.Key())
		if tb.n >= batchLimit {
			if err := tb.flush(ctx, throttle); err != nil {
				return deleted, last, err
			}
		}
	}
	return deleted, last, tb.flush(ctx, 0)
}

// TrimToMaxBytes deletes the oldest entries until the stored entry bytes are
// at most maxBytes. maxBytes <= 0 disables the trim.
func (l *Log) TrimToMaxBytes(ctx context.Context, maxBytes int64, batchLimit int, throttle time.Duration) (int, error) {
	if maxBytes <= 0 {
		return 0, nil
	}
	if batchLimit <= 0 {
		batchLimit = 1024
	}
	it, err := l.entryIter()
	if err != nil {
		return 0, err
	}
	defer it.Close()

	var total int64
	for ok := it.First(); ok; ok = it.Next() {
		total += int64(len(it.Value()))
	}
	tb := &trimBatch{l: l}
	deleted := 0
	for ok := it.First(); ok && total > maxBytes; ok = it.Next() {
		total -= int64(len(it.Value()))
		if err := tb.add(it.Key()); err != nil {
			return deleted, err
		}
		deleted++
		if tb.n >= batchLimit {
			if err := tb.flush(ctx, throttle); err != nil {
				return deleted, err
			}
		}
	}
	return deleted, tb.flush(ctx, 0)
}
