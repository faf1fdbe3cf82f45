package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
)

func stdout() io.Writer { return os.Stdout }

type stdWriter struct {
	l     Logger
	level Level
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	switch w.level {
	case DebugLevel:
		w.l.Debug(msg, Str("source", "stdlib"))
	case WarnLevel:
		w.l.Warn(msg, Str("source", "stdlib"))
	case ErrorLevel, FatalLevel:
		w.l.Error(msg, Str("source", "stdlib"))
	default:
		w.l.Info(msg, Str("source", "stdlib"))
	}
	return len(p), nil
}

// ToStdLogger adapts l to a *log.Logger emitting at the given level.
func ToStdLogger(l Logger, level Level) *stdlog.Logger {
	return stdlog.New(stdWriter{l: l, level: level}, "", 0)
}

// RedirectStdLog routes the standard library's global logger through l.
func RedirectStdLog(l Logger) {
	stdlog.SetFlags(0)
	stdlog.SetPrefix("")
	stdlog.SetOutput(stdWriter{l: l, level: InfoLevel})
}
