package eventlog

import (
	"encoding/binary"
	"errors"

	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
)

// CommitCursor records the last processed sequence of a consumer. Commits
// that would move the cursor backwards are ignored.
func (l *Log) CommitCursor(consumer string, tok Token) error {
	if consumer == "" {
		return errors.New("eventlog: consumer name is required")
	}
	if prev, ok, err := l.GetCursor(consumer); err != nil {
		return err
	} else if ok && tok.Seq() <= prev.Seq() {
		return nil
	}
	return l.db.Set(KeyCursor(l.topic, consumer), appendBE8(nil, tok.Seq()))
}

// GetCursor loads a consumer's last committed position.
func (l *Log) GetCursor(consumer string) (Token, bool, error) {
	raw, err := l.db.Get(KeyCursor(l.topic, consumer))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, err
	}
	if len(raw) != 8 {
		return Token{}, false, errors.New("eventlog: corrupt cursor")
	}
	return TokenFromSeq(binary.BigEndian.Uint64(raw)), true, nil
}
