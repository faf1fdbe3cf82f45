// Package streamsvc is the stream ledger engine.
//
// A stream is created when value is paid into custody with the call data
// ["createStream", recipient, start, stop]. The deposit then vests
// linearly between start and stop and the recipient (or, by policy, the
// sender on the recipient's behalf) withdraws what has vested. Either
// party may cancel, which pays the vested part to the recipient and
// refunds the rest to the sender.
//
//	svc, _ := streamsvc.New(streamsvc.Deps{Store: store, Oracle: auth.ContextOracle{}, Rail: book, Notifier: journal})
//	book.SetReceiver(svc)
//	_ = svc.Withdraw(ctx, id, 500)
//	settlement, _ := svc.CancelStream(ctx, id)
//
// Value moves through the Rail before the ledger write. When the write
// fails the transfer is reversed, so a failed call leaves no trace in
// either the store or the rail. Operations on one stream are serialized by
// a per-id lock; events are published only after the write commits.
package streamsvc
