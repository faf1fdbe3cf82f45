// Package grpcserver exposes the ledger over gRPC (sluice.v1). Every call
// is authenticated by the bearer token in its "authorization" metadata and
// ledger errors are mapped to status codes.
package grpcserver
