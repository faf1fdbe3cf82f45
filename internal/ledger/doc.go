// Package ledger holds the stream data model shared by every sluice
// component: the Stream record and its invariants, 20-byte Address
// identities, the vesting calculator, the classified error taxonomy and the
// Store contract with its Pebble implementation.
//
// A stream exists in a store only while it still holds value. Its primary
// record and its two index entries (by sender, by recipient) are always
// written and removed together.
package ledger
