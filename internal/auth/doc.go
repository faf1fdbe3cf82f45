// Package auth authenticates sluice callers. Requests carry an HS256 JWT
// whose subject is the caller's address; transports verify it and store the
// address in the request context, where ContextOracle answers the ledger's
// witness checks.
package auth
