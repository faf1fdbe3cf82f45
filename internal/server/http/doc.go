// Package httpserver is the REST gateway for the stream ledger: JSON
// endpoints for streams, the rail and the event journal, an SSE feed of
// ledger events and the Prometheus /metrics endpoint.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := httpserver.New(rt, auth.NewVerifier(auth.Config{Secret: secret}), logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
