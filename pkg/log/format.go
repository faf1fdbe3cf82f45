package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const defaultTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// TextFormatter renders `ts LEVEL msg k=v ...` lines with keys sorted.
type TextFormatter struct {
	TimestampFormat string
	ShowCaller      bool
	// DisableTimestamp drops the leading timestamp, useful in tests.
	DisableTimestamp bool
}

func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b bytes.Buffer
	if !f.DisableTimestamp {
		layout := f.TimestampFormat
		if layout == "" {
			layout = defaultTimeLayout
		}
		b.WriteString(entryTime(entry).Format(layout))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", entry.Level.String(), entry.Message)
	for _, k := range sortedKeys(entry.Fields) {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(valueString(entry.Fields[k])))
	}
	if f.ShowCaller && entry.Caller != "" {
		b.WriteString(" caller=")
		b.WriteString(entry.Caller)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// JSONFormatter renders one JSON object per line.
type JSONFormatter struct {
	TimestampFormat string
	ShowCaller      bool
}

func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	layout := f.TimestampFormat
	if layout == "" {
		layout = defaultTimeLayout
	}
	obj := make(map[string]interface{}, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		if e, ok := v.(error); ok {
			obj[k] = e.Error()
			continue
		}
		obj[k] = v
	}
	obj["ts"] = entryTime(entry).Format(layout)
	obj["level"] = strings.ToLower(entry.Level.String())
	obj["msg"] = entry.Message
	if f.ShowCaller && entry.Caller != "" {
		obj["caller"] = entry.Caller
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func entryTime(entry *Entry) time.Time {
	if entry.Timestamp.IsZero() {
		return time.Now()
	}
	return entry.Timestamp
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func valueString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
