package controllers

import (
	"net/http"

	"github.com/rzbill/sluice/internal/ledger"
	streamsvc "github.com/rzbill/sluice/internal/services/streams"
	logpkg "github.com/rzbill/sluice/pkg/log"
)

// StreamsController serves stream queries, withdrawals and cancellations.
type StreamsController struct {
	svc    *streamsvc.Service
	logger logpkg.Logger
}

func NewStreamsController(svc *streamsvc.Service, logger logpkg.Logger) *StreamsController {
	return &StreamsController{svc: svc, logger: logger}
}

func (c *StreamsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/streams", c.handleList)
	mux.HandleFunc("GET /v1/streams/{id}", c.handleGet)
	mux.HandleFunc("GET /v1/streams/{id}/available", c.handleAvailable)
	mux.HandleFunc("POST /v1/streams/{id}/withdraw", c.handleWithdraw)
	mux.HandleFunc("POST /v1/streams/{id}/cancel", c.handleCancel)
}

// handleGet returns the stream in its persisted record format.
func (c *StreamsController) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseStreamID(r)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	rec, err := c.svc.GetStreamRecord(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(rec)
}

func (c *StreamsController) handleAvailable(w http.ResponseWriter, r *http.Request) {
	id, err := parseStreamID(r)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	n, err := c.svc.Available(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, availableResp{ID: id, Available: n})
}

func (c *StreamsController) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, err := parseStreamID(r)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	var req withdrawReq
	if err := decodeBody(r, &req); err != nil {
		writeLedgerError(w, err)
		return
	}
	amount, err := req.Amount.Int64()
	if err != nil {
		writeLedgerError(w, ledger.Validation("withdraw", "amount must be an integer"))
		return
	}
	if err := c.svc.Withdraw(r.Context(), id, amount); err != nil {
		c.logFailure(r, "withdraw", id, err)
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, successResp{Success: true})
}

func (c *StreamsController) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseStreamID(r)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	out, err := c.svc.CancelStream(r.Context(), id)
	if err != nil {
		c.logFailure(r, "cancel", id, err)
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, cancelResp{Success: true, StreamID: id, Available: out.Available, Leftover: out.Leftover})
}

// handleList enumerates one party's streams. Without expand or filter it
// returns the id sequence; otherwise full views.
func (c *StreamsController) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sender, err := parseAddressParam(r, "sender")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	recipient, err := parseAddressParam(r, "recipient")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	limit := parseLimit(q.Get("limit"))
	filter := q.Get("filter")

	if !parseBool(q.Get("expand")) && filter == "" {
		var cur ledger.Cursor
		switch {
		case sender != nil && recipient == nil:
			cur, err = c.svc.StreamsBySender(r.Context(), *sender)
		case recipient != nil && sender == nil:
			cur, err = c.svc.StreamsByRecipient(r.Context(), *recipient)
		default:
			err = ledger.Validation("list", "exactly one of sender or recipient is required")
		}
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		ids, err := ledger.Collect(cur, limit)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		if ids == nil {
			ids = []uint64{}
		}
		writeJSON(w, map[string]any{"ids": ids})
		return
	}

	views, err := c.svc.ListStreams(r.Context(), streamsvc.ListOptions{Sender: sender, Recipient: recipient, Filter: filter, Limit: limit})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if views == nil {
		views = []streamsvc.StreamView{}
	}
	writeJSON(w, map[string]any{"streams": views})
}

func (c *StreamsController) logFailure(r *http.Request, op string, id uint64, err error) {
	if statusFor(err) != http.StatusInternalServerError {
		return
	}
	c.logger.WithContext(r.Context()).Error("http.streams_failed", logpkg.Str("op", op), logpkg.Uint64("stream_id", id), logpkg.Err(err))
}
