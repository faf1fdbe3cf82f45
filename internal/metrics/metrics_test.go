package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTrackStatusCounts(t *testing.T) {
	before := testutil.ToFloat64(ledgerOperations.WithLabelValues("withdraw", "ok"))
	TrackStatus("withdraw", "ok")
	TrackStatus("withdraw", "ok")
	if got := testutil.ToFloat64(ledgerOperations.WithLabelValues("withdraw", "ok")) - before; got != 2 {
		t.Fatalf("want +2, got %v", got)
	}
}

func TestValueMovedIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(valueMoved.WithLabelValues("to_sender"))
	AddValueMoved("to_sender", 0)
	AddValueMoved("to_sender", -5)
	AddValueMoved("to_sender", 7)
	if got := testutil.ToFloat64(valueMoved.WithLabelValues("to_sender")) - before; got != 7 {
		t.Fatalf("want +7, got %v", got)
	}
}

func TestHandlerExposesStorageMetrics(t *testing.T) {
	Storage{}.ObserveBatchCommit(time.Millisecond, 3, 128)
	TrackDuration("cancel")()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{"sluice_storage_op_seconds", "sluice_storage_bytes_total", "sluice_operation_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Fatalf("%s missing from exposition", name)
		}
	}
}
