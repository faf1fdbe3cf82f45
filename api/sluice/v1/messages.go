package sluicev1

import "encoding/json"

type HealthCheckRequest struct{}

type HealthCheckResponse struct {
	Status string `json:"status"`
}

func (x *HealthCheckResponse) GetStatus() string {
	if x == nil {
		return ""
	}
	return x.Status
}

// Stream mirrors the persisted record; addresses are base64 text.
type Stream struct {
	Id        uint64 `json:"id"`
	Deposit   int64  `json:"deposit"`
	Remaining int64  `json:"remaining"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Start     int64  `json:"start"`
	Stop      int64  `json:"stop"`
}

// StreamView adds the amounts derived at AtMs.
type StreamView struct {
	Stream    *Stream `json:"stream"`
	Vested    int64   `json:"vested"`
	Available int64   `json:"available"`
	AtMs      int64   `json:"at_ms"`
}

type GetStreamRequest struct {
	Id uint64 `json:"id"`
}

func (x *GetStreamRequest) GetId() uint64 {
	if x == nil {
		return 0
	}
	return x.Id
}

type GetStreamResponse struct {
	View *StreamView `json:"view"`
}

type ListStreamsRequest struct {
	Sender    string `json:"sender,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	// Expand returns full views instead of ids.
	Expand bool   `json:"expand,omitempty"`
	Filter string `json:"filter,omitempty"`
	Limit  int32  `json:"limit,omitempty"`
}

type ListStreamsResponse struct {
	Ids     []uint64      `json:"ids,omitempty"`
	Streams []*StreamView `json:"streams,omitempty"`
}

type AvailableRequest struct {
	Id uint64 `json:"id"`
}

type AvailableResponse struct {
	Id        uint64 `json:"id"`
	Available int64  `json:"available"`
}

type WithdrawRequest struct {
	Id     uint64 `json:"id"`
	Amount int64  `json:"amount"`
}

type WithdrawResponse struct {
	Success bool `json:"success"`
}

type CancelStreamRequest struct {
	Id uint64 `json:"id"`
}

type CancelStreamResponse struct {
	Success   bool  `json:"success"`
	Available int64 `json:"available"`
	Leftover  int64 `json:"leftover"`
}

// PayRequest deposits value into custody. Data is the call data, e.g.
// ["createStream", recipient, start, stop].
type PayRequest struct {
	From   string `json:"from"`
	Amount int64  `json:"amount"`
	Data   []any  `json:"data"`
}

type PayResponse struct {
	Success bool `json:"success"`
}

type MintRequest struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

type MintResponse struct {
	Balance int64 `json:"balance"`
}

type BalanceRequest struct {
	Address string `json:"address"`
}

type BalanceResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type WatchEventsRequest struct {
	// From is the first sequence to deliver; 0 means after the latest.
	From uint64 `json:"from,omitempty"`
	// Consumer resumes from and commits to a durable cursor.
	Consumer string `json:"consumer,omitempty"`
}

type Event struct {
	Kind      string          `json:"kind"`
	StreamId  uint64          `json:"stream_id"`
	Stream    json.RawMessage `json:"stream,omitempty"`
	Requester string          `json:"requester,omitempty"`
	Amount    int64           `json:"amount,omitempty"`
}

type EventEnvelope struct {
	Seq   uint64 `json:"seq"`
	Id    string `json:"id"`
	AtMs  int64  `json:"at_ms"`
	Event *Event `json:"event"`
}
