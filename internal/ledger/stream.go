package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Stream is one time-locked linear payment stream.
type Stream struct {
	ID        uint64  `json:"id"`
	Deposit   int64   `json:"deposit"`
	Remaining int64   `json:"remaining"`
	Sender    Address `json:"sender"`
	Recipient Address `json:"recipient"`
	Start     int64   `json:"start"`
	Stop      int64   `json:"stop"`
}

// Withdrawn is the amount already paid out of the stream.
func (s Stream) Withdrawn() int64 { return s.Deposit - s.Remaining }

// Duration is stop-start in clock units.
func (s Stream) Duration() int64 { return s.Stop - s.Start }

// Validate checks the structural invariants of a stream record.
func (s Stream) Validate() error {
	const op = "stream"
	switch {
	case s.ID == 0:
		return Validation(op, "id must be positive")
	case s.Deposit <= 0:
		return Validation(op, "deposit must be positive")
	case s.Remaining < 0 || s.Remaining > s.Deposit:
		return Validation(op, "remaining %d outside [0, %d]", s.Remaining, s.Deposit)
	case s.Start <= 0:
		return Validation(op, "start must be positive")
	case s.Stop <= s.Start:
		return Validation(op, "stop must be after start")
	}
	return nil
}

// SameTerms reports whether the write-once fields of s and o match.
func (s Stream) SameTerms(o Stream) bool {
	return s.ID == o.ID && s.Deposit == o.Deposit && s.Sender == o.Sender &&
		s.Recipient == o.Recipient && s.Start == o.Start && s.Stop == o.Stop
}

// EncodeRecord serializes s in the persisted JSON record format.
func EncodeRecord(s Stream) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// DecodeRecord parses and validates a persisted record.
func DecodeRecord(b []byte) (Stream, error) {
	var s Stream
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Stream{}, fmt.Errorf("decode stream record: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Stream{}, fmt.Errorf("decode stream record: %w", err)
	}
	return s, nil
}
