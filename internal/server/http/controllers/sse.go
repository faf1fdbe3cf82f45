package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rzbill/sluice/internal/events"
)

// sseSink writes journal entries as Server-Sent Events, one "data:" frame
// per entry with the sequence as the event id.
type sseSink struct {
	w http.ResponseWriter
}

func (s sseSink) Send(e events.Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "id: %d\ndata: %s\n\n", e.Seq, b); err != nil {
		return err
	}
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
