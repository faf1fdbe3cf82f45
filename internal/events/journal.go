package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rzbill/sluice/internal/eventlog"
	"github.com/rzbill/sluice/internal/ledger"
	"github.com/rzbill/sluice/internal/metrics"
	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
	"github.com/rzbill/sluice/pkg/id"
	logpkg "github.com/rzbill/sluice/pkg/log"
)

const (
	readBatch = 256
	// byte-budget trims rescan the topic, so they run every N appends
	bytesTrimEvery = 64
)

// Options configures a Journal.
type Options struct {
	Topic        string
	RetentionAge time.Duration
	MaxBytes     int64
	Logger       logpkg.Logger
	// NowMs overrides the wall clock (tests).
	NowMs func() int64
}

// Entry is one journaled notification.
type Entry struct {
	Seq   uint64       `json:"seq"`
	ID    id.ID        `json:"id"`
	AtMs  int64        `json:"at_ms"`
	Event ledger.Event `json:"event"`
}

// Journal persists ledger notifications in an eventlog topic.
type Journal struct {
	log     *eventlog.Log
	ids     *id.Generator
	opts    Options
	logger  logpkg.Logger
	appends atomic.Uint64
}

// Open binds a journal to db.
func Open(db *pebblestore.DB, opts Options) (*Journal, error) {
	if opts.Topic == "" {
		opts.Topic = "ledger/events"
	}
	if opts.NowMs == nil {
		opts.NowMs = func() int64 { return time.Now().UnixMilli() }
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	l, err := eventlog.OpenLog(db, opts.Topic)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	j := &Journal{
		log:    l,
		ids:    id.NewGeneratorWithClock(opts.NowMs),
		opts:   opts,
		logger: opts.Logger.With(logpkg.Component("events"), logpkg.Str("topic", opts.Topic)),
	}
	l.SetTrimHook(j)
	return j, nil
}

// Notify appends ev to the journal and applies retention.
func (j *Journal) Notify(ctx context.Context, ev ledger.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	now := j.opts.NowMs()
	evID := j.ids.Next()
	seqs, err := j.log.Append(ctx, []eventlog.AppendRecord{{
		Header:  eventlog.TimestampHeader(now, evID[:]),
		Payload: payload,
	}})
	if err != nil {
		metrics.EventNotifyFailed()
		return fmt.Errorf("journal append: %w", err)
	}
	metrics.EventAppended()
	j.logger.Debug("events.append", logpkg.Str("kind", string(ev.Kind)), logpkg.Uint64("stream_id", ev.StreamID), logpkg.Uint64("seq", seqs[0]))
	j.applyRetention(ctx, now)
	return nil
}

func (j *Journal) applyRetention(ctx context.Context, now int64) {
	if age := j.opts.RetentionAge; age > 0 {
		if _, _, err := j.log.TrimOlderThan(ctx, now-age.Milliseconds(), 0, 0, eventlog.HeaderTimestamp); err != nil {
			j.logger.Warn("events.trim_age_failed", logpkg.Err(err))
		}
	}
	if j.opts.MaxBytes > 0 && j.appends.Add(1)%bytesTrimEvery == 0 {
		if _, err := j.log.TrimToMaxBytes(ctx, j.opts.MaxBytes, 0, 0); err != nil {
			j.logger.Warn("events.trim_bytes_failed", logpkg.Err(err))
		}
	}
}

// Trimmed implements eventlog.TrimHook.
func (j *Journal) Trimmed(topic string, minSeq, maxSeq uint64, count int) {
	metrics.EventsTrimmed(count)
	j.logger.Debug("events.trimmed", logpkg.Uint64("min_seq", minSeq), logpkg.Uint64("max_seq", maxSeq), logpkg.Int("count", count))
}

func (j *Journal) LastSeq() uint64 { return j.log.LastSeq() }

func decodeEntry(it eventlog.Item) (Entry, error) {
	e := Entry{Seq: it.Seq}
	ms, ok := eventlog.HeaderTimestamp(it.Header)
	if !ok || len(it.Header) != 8+len(e.ID) {
		return Entry{}, fmt.Errorf("journal entry %d: bad header", it.Seq)
	}
	e.AtMs = ms
	copy(e.ID[:], it.Header[8:])
	if err := json.Unmarshal(it.Payload, &e.Event); err != nil {
		return Entry{}, fmt.Errorf("journal entry %d: %w", it.Seq, err)
	}
	return e, nil
}

// Read returns up to limit entries starting at seq from (inclusive; 0 is the
// oldest retained) and the sequence to resume from (0 when caught up).
func (j *Journal) Read(from uint64, limit int) ([]Entry, uint64, error) {
	if limit <= 0 || limit > readBatch {
		limit = readBatch
	}
	items, next, err := j.log.Read(eventlog.ReadOptions{Start: eventlog.TokenFromSeq(from), Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		e, err := decodeEntry(it)
		if err != nil {
			return out, 0, err
		}
		out = append(out, e)
	}
	return out, next.Seq(), nil
}

// WatchOptions selects where a watch begins.
type WatchOptions struct {
	// From is the first sequence to deliver. 0 delivers only new entries.
	From uint64
	// Consumer, when set, resumes after the consumer's committed cursor and
	// commits each delivered entry.
	Consumer string
}

// ErrStopWatch may be returned by a sink to end a watch without error.
var ErrStopWatch = errors.New("stop watch")

// Watch delivers entries to sink in order until ctx ends or sink fails.
func (j *Journal) Watch(ctx context.Context, opts WatchOptions, sink func(Entry) error) error {
	pos := opts.From
	if pos == 0 {
		pos = j.log.LastSeq() + 1
	}
	if opts.Consumer != "" {
		tok, ok, err := j.log.GetCursor(opts.Consumer)
		if err != nil {
			return err
		}
		if ok {
			pos = tok.Seq() + 1
		}
	}
	for {
		entries, _, err := j.Read(pos, readBatch)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := sink(e); err != nil {
				if errors.Is(err, ErrStopWatch) {
					return nil
				}
				return err
			}
			pos = e.Seq + 1
			if opts.Consumer != "" {
				if err := j.log.CommitCursor(opts.Consumer, eventlog.TokenFromSeq(e.Seq)); err != nil {
					return err
				}
			}
		}
		if len(entries) > 0 {
			continue
		}
		if err := j.log.WaitBeyond(ctx, pos-1); err != nil {
			return err
		}
	}
}
