package ledger

import "encoding/json"

// EventKind names a ledger notification.
type EventKind string

const (
	EventStreamCreated   EventKind = "StreamCreated"
	EventStreamCompleted EventKind = "StreamCompleted"
	EventStreamCanceled  EventKind = "StreamCanceled"
	EventWithdraw        EventKind = "Withdraw"
)

// Event is a notification emitted after a ledger state change commits.
type Event struct {
	Kind     EventKind `json:"kind"`
	StreamID uint64    `json:"stream_id"`
	// Stream is the serialized record (StreamCreated only).
	Stream    json.RawMessage `json:"stream,omitempty"`
	Requester *Address        `json:"requester,omitempty"`
	Amount    int64           `json:"amount,omitempty"`
}

func StreamCreated(s Stream) (Event, error) {
	rec, err := EncodeRecord(s)
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: EventStreamCreated, StreamID: s.ID, Stream: rec}, nil
}

func StreamCompleted(id uint64) Event {
	return Event{Kind: EventStreamCompleted, StreamID: id}
}

func StreamCanceled(id uint64, requester Address) Event {
	return Event{Kind: EventStreamCanceled, StreamID: id, Requester: &requester}
}

func Withdrawal(id uint64, requester Address, amount int64) Event {
	return Event{Kind: EventWithdraw, StreamID: id, Requester: &requester, Amount: amount}
}
