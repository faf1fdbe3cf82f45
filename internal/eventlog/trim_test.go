package eventlog

import (
	"context"
	"testing"
	"time"
)

type captureHook struct {
	calls    int
	min, max uint64
	count    int
}

func (c *captureHook) Trimmed(_ string, minSeq, maxSeq uint64, n int) {
	if c.calls == 0 {
		c.min = minSeq
	}
	c.calls++
	c.max = maxSeq
	c.count += n
}

func TestTrimOlderThanByTimestamp(t *testing.T) {
	l := newTestLog(t)
	hook := &captureHook{}
	l.SetTrimHook(hook)

	now := time.Now().UnixMilli()
	_, err := l.Append(context.Background(), []AppendRecord{
		{Header: TimestampHeader(now-10_000, nil), Payload: []byte("a")},
		{Header: TimestampHeader(now-5_000, nil), Payload: []byte("b")},
		{Header: TimestampHeader(now, nil), Payload: []byte("c")},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	del, last, err := l.TrimOlderThan(context.Background(), now-1, 1, 0, HeaderTimestamp)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if del != 2 || last != 2 {
		t.Fatalf("deleted %d last %d", del, last)
	}
	if hook.calls != 2 || hook.min != 1 || hook.max != 2 || hook.count != 2 {
		t.Fatalf("hook %+v", hook)
	}
	items, _, _ := l.Read(ReadOptions{})
	if len(items) != 1 || string(items[0].Payload) != "c" {
		t.Fatalf("survivors %v", items)
	}
}

func TestTrimToMaxBytes(t *testing.T) {
	l := newTestLog(t)
	hook := &captureHook{}
	l.SetTrimHook(hook)
	for i := 0; i < 3; i++ {
		appendPayloads(t, l, "0123456789")
	}
	// each entry is 1 + 10 + 4 bytes
	del, err := l.TrimToMaxBytes(context.Background(), 15, 10, 0)
	if err != nil {
		t.Fatalf("trim bytes: %v", err)
	}
	if del != 2 || hook.count != 2 {
		t.Fatalf("deleted %d hook %+v", del, hook)
	}
	if n, _ := l.TrimToMaxBytes(context.Background(), 0, 10, 0); n != 0 {
		t.Fatalf("disabled trim deleted %d", n)
	}
}

func TestHeaderTimestamp(t *testing.T) {
	h := TimestampHeader(1234, []byte("id"))
	ms, ok := HeaderTimestamp(h)
	if !ok || ms != 1234 || string(h[8:]) != "id" {
		t.Fatalf("header %v %d", ok, ms)
	}
	if _, ok := HeaderTimestamp([]byte{1, 2}); ok {
		t.Fatalf("short header accepted")
	}
}
