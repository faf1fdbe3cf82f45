package eventlog

import (
	"context"
	"time"
)

// WaitForAppend blocks until an append lands, ctx ends or timeout elapses
// (timeout <= 0 waits on ctx alone). It reports whether an append woke it.
func (l *Log) WaitForAppend(ctx context.Context, timeout time.Duration) bool {
	ch := l.changed()
	if timeout <= 0 {
		select {
		case <-ch:
			return true
		case <-ctx.Done():
			return false
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return false
	case <-t.C:
		return false
	}
}

// WaitBeyond blocks until the log holds a sequence greater than seq or ctx
// ends. It returns ctx.Err() in the latter case.
func (l *Log) WaitBeyond(ctx context.Context, seq uint64) error {
	for {
		ch := l.changed()
		if l.LastSeq() > seq {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
