// Package eventlog is an append-only log of opaque entries persisted in
// Pebble, one sequence space per topic.
//
// Keys:
//   - evlog/{topic}/m              last assigned sequence
//   - evlog/{topic}/e/{seq_be8}    entries
//   - evlog/{topic}/c/{consumer}   durable consumer cursors
//
// Entries are stored as uvarint(len(header)) | header | payload | crc32c.
//
//	l, _ := eventlog.OpenLog(db, "ledger/events")
//	seqs, _ := l.Append(ctx, []eventlog.AppendRecord{{Header: h, Payload: p}})
//	items, next, _ := l.Read(eventlog.ReadOptions{Start: eventlog.TokenFromSeq(seqs[0]), Limit: 100})
//	_ = l.WaitBeyond(ctx, items[len(items)-1].Seq)
//	_ = l.CommitCursor("indexer", eventlog.TokenFromSeq(seqs[0]))
//	_, _, _ = l.TrimOlderThan(ctx, cutoffMs, 1024, 0, eventlog.HeaderTimestamp)
//	_ = next
package eventlog
