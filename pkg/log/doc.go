// Package log is sluice's structured logging facade.
//
// Components receive a Logger by injection and tag it with Component:
//
//	l, _ := log.ApplyConfig(&log.Config{Level: "info", Format: "json"})
//	l = l.With(log.Component("streams"))
//	l.Info("streams.withdraw", log.Uint64("id", id), log.Int64("amount", amt))
//
// Records flow through log/slog into a bridge handler that applies the
// configured redaction and sampling and then writes through the Formatter
// and Outputs. RedirectStdLog routes the standard library logger (used by
// Pebble and net/http) into the same pipeline.
package log
