// Package client provides the `sluice` command-line client.
//
// The CLI talks to the sluice gRPC endpoint for ledger operations and to the
// HTTP gateway for health checks. It is primarily intended for developers
// and operators.
//
// # Address configuration
//
// The gRPC address is read from SLUICE_GRPC (default 127.0.0.1:50051). The
// HTTP base URL comes from the embedding application via a BaseURLFunc.
// SLUICE_TOKEN, when set, is attached to every call as a bearer token.
//
// Usage
//
//	sluice address new --label alice
//	sluice token issue --secret dev --subject <alice>
//	sluice rail mint --address <alice> --amount 1000
//	SLUICE_TOKEN=<alice-token> sluice stream create --from <alice> --to <bob> --deposit 1000 --duration 1h
//	sluice stream list --recipient <bob> --filter 'available > 0'
//	SLUICE_TOKEN=<bob-token> sluice stream withdraw 1 --all
//	sluice events tail --from 1
package client
