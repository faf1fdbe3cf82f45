package eventlog

import (
	"encoding/binary"
	"fmt"

	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
)

// Token is a read position: a big-endian sequence. The zero Token means
// "from the first entry" (forward) or "from the last entry" (reverse).
type Token [8]byte

func TokenFromSeq(seq uint64) Token {
	var t Token
	binary.BigEndian.PutUint64(t[:], seq)
	return t
}

func (t Token) Seq() uint64 { return binary.BigEndian.Uint64(t[:]) }

func (t Token) IsZero() bool { return t == Token{} }

type ReadOptions struct {
	Start   Token
	Limit   int
	Reverse bool
}

type Item struct {
	Seq     uint64
	Header  []byte
	Payload []byte
}

// Read returns up to Limit items beginning at Start (inclusive) and the
// token of the next unread entry (zero when the scan reached the end).
// Entries that fail their checksum are skipped.
func (l *Log) Read(opts ReadOptions) ([]Item, Token, error) {
	var next Token
	it, err := l.db.NewIter(pebblestore.PrefixIterOptions(KeyLogEntryPrefix(l.topic)))
	if err != nil {
		return nil, next, fmt.Errorf("eventlog read: %w", err)
	}
	defer it.Close()

	var ok bool
	start := KeyLogEntry(l.topic, opts.Start.Seq())
	switch {
	case opts.Reverse && opts.Start.IsZero():
		ok = it.Last()
	case opts.Reverse:
		ok = it.SeekLT(append(start, 0))
	case opts.Start.IsZero():
		ok = it.First()
	default:
		ok = it.SeekGE(start)
	}

	var items []Item
	for ; ok; ok = step(it.Next, it.Prev, opts.Reverse) {
		if opts.Limit > 0 && len(items) >= opts.Limit {
			next = TokenFromSeq(seqFromEntryKey(it.Key()))
			break
		}
		dec, valid := DecodeRecord(it.Value())
		if !valid {
			continue
		}
		items = append(items, Item{Seq: seqFromEntryKey(it.Key()), Header: dec.Header, Payload: dec.Payload})
	}
	if err := it.Error(); err != nil {
		return items, next, fmt.Errorf("eventlog read: %w", err)
	}
	return items, next, nil
}

func step(fwd, back func() bool, reverse bool) bool {
	if reverse {
		return back()
	}
	return fwd()
}
