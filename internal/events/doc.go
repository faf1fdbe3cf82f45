// Package events journals ledger notifications (StreamCreated,
// StreamCompleted, StreamCanceled, Withdraw) into a durable eventlog topic
// and serves reads and live watches over it.
package events
