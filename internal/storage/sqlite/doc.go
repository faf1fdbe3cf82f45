// Package sqlite is an alternative ledger.Store backed by SQLite (WAL mode,
// single writer). Select it with ledger.store: sqlite.
package sqlite
