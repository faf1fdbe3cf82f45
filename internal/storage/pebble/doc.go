// Package pebblestore wraps Pebble with an fsync policy, atomic batch
// helpers, prefix iteration bounds and a metrics hook.
//
//	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeInterval})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	err = db.Update(ctx, func(b *pebble.Batch) error {
//	    if err := b.Set(k1, v1, nil); err != nil {
//	        return err
//	    }
//	    return b.Set(k2, v2, nil)
//	})
package pebblestore
