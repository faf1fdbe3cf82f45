package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rzbill/sluice/internal/ledger"
)

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps a ledger error kind to an HTTP status.
func statusFor(err error) int {
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		return http.StatusBadRequest
	case ledger.KindAuthorization:
		return http.StatusForbidden
	case ledger.KindInsufficientFunds:
		return http.StatusConflict
	case ledger.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeLedgerError reports err with the status its kind maps to.
func writeLedgerError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, code, msg)
}

// decodeBody parses a JSON request body, keeping numbers exact.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return ledger.Validation("decode", "invalid request body: %v", err)
	}
	return nil
}

// parseStreamID reads the {id} path segment.
func parseStreamID(r *http.Request) (uint64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, ledger.Validation("request", "invalid stream id %q", raw)
	}
	return id, nil
}

// parseAddressParam reads an optional address query parameter.
func parseAddressParam(r *http.Request, name string) (*ledger.Address, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	a, err := ledger.ParseAddress(raw)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// parseLimit parses a limit string and returns a valid limit value.
//
// Returns 0 for empty strings or invalid values.
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 0
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		return limit
	}
	return 0
}

// parseUint parses an optional unsigned query value, 0 when absent or bad.
func parseUint(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseBool returns true for "true" or "1".
func parseBool(s string) bool {
	return s == "true" || s == "1"
}
