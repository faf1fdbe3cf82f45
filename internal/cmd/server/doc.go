// Package serverrun exposes the shared Run entrypoint used by the CLI to
// start a sluice node with its gRPC and HTTP listeners.
//
// Example:
//
//	cfg := config.Default()
//	opts := serverrun.Options{DataDir: "./data", GRPCAddr: ":50051", HTTPAddr: ":8080", Config: cfg}
//	_ = serverrun.Run(ctx, opts)
package serverrun
