// Package rail is the value-transfer layer beneath the stream ledger: a
// Pebble-backed balance book with a custody account that holds deposits
// until they are withdrawn or refunded.
package rail
