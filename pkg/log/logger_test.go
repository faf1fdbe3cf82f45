package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBufferLogger(level Level, f Formatter) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(&buf)))
	return l, &buf
}

func TestJSONEntryCarriesFields(t *testing.T) {
	l, buf := newBufferLogger(DebugLevel, &JSONFormatter{})
	l.With(Component("streams")).Info("streams.withdraw", Uint64("id", 7), Int64("amount", 40), Err(errors.New("boom")))

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if got["msg"] != "streams.withdraw" || got["level"] != "info" {
		t.Fatalf("unexpected entry: %v", got)
	}
	if got["component"] != "streams" {
		t.Fatalf("component missing: %v", got)
	}
	if got["error"] != "boom" {
		t.Fatalf("error not rendered: %v", got)
	}
	if got["amount"].(float64) != 40 {
		t.Fatalf("amount: %v", got["amount"])
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(WarnLevel, &TextFormatter{DisableTimestamp: true})
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", Str("k", "v"))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("filtered entries leaked: %q", out)
	}
	if out != "WARN  shown k=v\n" {
		t.Fatalf("text line: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": DebugLevel, "INFO": InfoLevel, "warning": WarnLevel, "error": ErrorLevel, "": InfoLevel}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestApplyConfigRedactsAndSamples(t *testing.T) {
	l, err := ApplyConfig(&Config{Level: "info", Format: "text", Outputs: []string{"null"}, RedactKeys: []string{"token"}, SampleThereafter: 2})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var buf bytes.Buffer
	base := l.(*BaseLogger)
	base.outputs = []Output{NewWriterOutput(&buf)}
	base.formatter = &TextFormatter{DisableTimestamp: true}

	for i := 0; i < 4; i++ {
		l.Info("auth", Str("token", "secret"))
	}
	out := buf.String()
	if strings.Contains(out, "secret") {
		t.Fatalf("token not redacted: %q", out)
	}
	if n := strings.Count(out, "auth"); n != 2 {
		t.Fatalf("want 2 sampled lines, got %d: %q", n, out)
	}
}

func TestApplyConfigRejectsUnknownFormat(t *testing.T) {
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestToStdLogger(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &TextFormatter{DisableTimestamp: true})
	ToStdLogger(l, WarnLevel).Print("pebble says hi")
	if got := buf.String(); got != "WARN  \"pebble says hi\" source=stdlib\n" && got != "WARN  pebble says hi source=stdlib\n" {
		t.Fatalf("std bridge: %q", got)
	}
}

func TestRedactionCoversWithFields(t *testing.T) {
	l, err := ApplyConfig(&Config{Level: "info", Format: "text", Outputs: []string{"null"}, RedactKeys: []string{"token"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var buf bytes.Buffer
	base := l.(*BaseLogger)
	base.outputs = []Output{NewWriterOutput(&buf)}
	base.formatter = &TextFormatter{DisableTimestamp: true}

	l.With(Str("token", "secret"), Str("sender", "alice")).Info("auth.issued")
	out := buf.String()
	if strings.Contains(out, "secret") {
		t.Fatalf("token attached with With not redacted: %q", out)
	}
	if !strings.Contains(out, "alice") {
		t.Fatalf("unredacted field dropped: %q", out)
	}
}

func TestSlogGroupQualifiesKeys(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &JSONFormatter{})
	l.(*BaseLogger).slogLogger.WithGroup("rail").With("from", "alice").Info("rail.pay", "amount", 5)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if got["rail.from"] != "alice" {
		t.Fatalf("rail.from = %v in %v", got["rail.from"], got)
	}
	if got["rail.amount"] != float64(5) {
		t.Fatalf("rail.amount = %v in %v", got["rail.amount"], got)
	}
}

func TestShowCallerPointsAtCallSite(t *testing.T) {
	l, err := ApplyConfig(&Config{Level: "info", Format: "text", Outputs: []string{"null"}, ShowCaller: true})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var buf bytes.Buffer
	base := l.(*BaseLogger)
	base.outputs = []Output{NewWriterOutput(&buf)}
	base.formatter = &TextFormatter{DisableTimestamp: true, ShowCaller: true}

	l.Info("streams.created")
	if out := buf.String(); !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("caller not resolved to the test file: %q", out)
	}
}
