// Package runtime assembles a single-node sluice instance: the Pebble
// database, the stream store (Pebble or SQLite), the event journal, the
// rail book and the ledger engine bound to it.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	_ = rt.Rail().Pay(ctx, ledger.Payment{From: alice, Amount: 1000, Data: []any{"createStream", bob.String(), start, stop}})
package runtime
