package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rzbill/sluice/internal/events"
	logpkg "github.com/rzbill/sluice/pkg/log"
)

// EventsController reads and streams the ledger notification journal.
type EventsController struct {
	journal *events.Journal
	logger  logpkg.Logger
}

func NewEventsController(j *events.Journal, logger logpkg.Logger) *EventsController {
	return &EventsController{journal: j, logger: logger}
}

func (c *EventsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/events", c.handleRead)
	mux.HandleFunc("GET /v1/events/watch", c.handleWatchSSE)
}

func (c *EventsController) handleRead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, next, err := c.journal.Read(parseUint(q.Get("from")), parseLimit(q.Get("limit")))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if entries == nil {
		entries = []events.Entry{}
	}
	writeJSON(w, map[string]any{"events": entries, "next": next})
}

// handleWatchSSE streams entries as they are appended. "from" selects the
// first sequence; "consumer" resumes from a durable cursor.
func (c *EventsController) handleWatchSSE(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := events.WatchOptions{From: parseUint(q.Get("from")), Consumer: q.Get("consumer")}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	sink := sseSink{w: w}
	err := c.journal.Watch(r.Context(), opts, sink.Send)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		c.logger.WithContext(r.Context()).Warn("http.watch_ended", logpkg.Err(err))
	}
}
