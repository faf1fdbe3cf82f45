package ledger

import (
	"context"
	"errors"
	"testing"

	pebblestore "github.com/rzbill/sluice/internal/storage/pebble"
)

func openPebble(t *testing.T, dir string) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return db
}

func newTestStore(t *testing.T) (*PebbleStore, *pebblestore.DB) {
	t.Helper()
	db := openPebble(t, t.TempDir())
	t.Cleanup(func() { _ = db.Close() })
	return NewPebbleStore(db), db
}

func fresh(sender, recipient Address, deposit int64) Stream {
	return Stream{Deposit: deposit, Remaining: deposit, Sender: sender, Recipient: recipient, Start: 1000, Stop: 2000}
}

func TestInsertAssignsMonotonicIDs(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	for want := uint64(1); want <= 3; want++ {
		s, err := st.Insert(ctx, fresh(addr(1), addr(2), 100))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if s.ID != want {
			t.Fatalf("id %d want %d", s.ID, want)
		}
	}
	if last, _ := st.LastID(ctx); last != 3 {
		t.Fatalf("last id %d", last)
	}
}

func TestIDsNeverReusedAfterDeleteOrReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	db := openPebble(t, dir)
	st := NewPebbleStore(db)
	s, err := st.Insert(ctx, fresh(addr(1), addr(2), 100))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := st.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = db.Close()

	db = openPebble(t, dir)
	defer db.Close()
	st = NewPebbleStore(db)
	next, err := st.Insert(ctx, fresh(addr(1), addr(2), 100))
	if err != nil {
		t.Fatalf("insert after reopen: %v", err)
	}
	if next.ID != 2 {
		t.Fatalf("id reused or skipped: %d", next.ID)
	}
}

func TestInsertRejectsInvalidWithoutSideEffects(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()
	bad := fresh(addr(1), addr(2), 100)
	bad.Stop = bad.Start
	if _, err := st.Insert(ctx, bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if last, _ := st.LastID(ctx); last != 0 {
		t.Fatalf("counter advanced on failure: %d", last)
	}
	ids, err := Collect(mustCursor(t)(st.BySender(ctx, addr(1))), 0)
	if err != nil || len(ids) != 0 {
		t.Fatalf("index entry leaked: %v %v", ids, err)
	}
	if _, err := db.Get(KeyStream(1)); !errors.Is(err, pebblestore.ErrNotFound) {
		t.Fatalf("record leaked: %v", err)
	}
}

func mustCursor(t *testing.T) func(Cursor, error) Cursor {
	return func(c Cursor, err error) Cursor {
		t.Helper()
		if err != nil {
			t.Fatalf("cursor: %v", err)
		}
		return c
	}
}

func TestIndexScansFollowCreationOrder(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	alice, bob, carol := addr(1), addr(2), addr(3)
	plan := []struct{ from, to Address }{{alice, bob}, {bob, carol}, {alice, carol}, {alice, bob}}
	for _, p := range plan {
		if _, err := st.Insert(ctx, fresh(p.from, p.to, 10)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	check := func(name string, c Cursor, err error, want ...uint64) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		got, err := Collect(c, 0)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(got) != len(want) {
			t.Fatalf("%s: got %v want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: got %v want %v", name, got, want)
			}
		}
	}
	c, err := st.BySender(ctx, alice)
	check("alice sent", c, err, 1, 3, 4)
	c, err = st.ByRecipient(ctx, carol)
	check("carol received", c, err, 2, 3)
	c, err = st.BySender(ctx, carol)
	check("carol sent", c, err)

	if err := st.Delete(ctx, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c, err = st.BySender(ctx, alice)
	check("alice after delete", c, err, 1, 4)
	c, err = st.ByRecipient(ctx, carol)
	check("carol after delete", c, err, 2)
}

func TestCursorIsPointInTime(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := st.Insert(ctx, fresh(addr(1), addr(2), 10)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	c, err := st.BySender(ctx, addr(1))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := st.Insert(ctx, fresh(addr(1), addr(2), 10)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ids, err := Collect(c, 0)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("cursor saw later write: %v", ids)
	}
}

func TestUpdateKeepsTermsAndRejectsExhausted(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	s, err := st.Insert(ctx, fresh(addr(1), addr(2), 100))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	s.Remaining = 60
	if err := st.Update(ctx, s); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := st.Get(ctx, s.ID)
	if err != nil || got.Remaining != 60 {
		t.Fatalf("get: %+v %v", got, err)
	}

	changed := got
	changed.Recipient = addr(9)
	if err := st.Update(ctx, changed); !errors.Is(err, ErrValidation) {
		t.Fatalf("write-once change accepted: %v", err)
	}
	got.Remaining = 0
	if err := st.Update(ctx, got); !errors.Is(err, ErrValidation) {
		t.Fatalf("exhausted update accepted: %v", err)
	}
	missing := got
	missing.ID = 99
	missing.Remaining = 1
	if err := st.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update of missing stream: %v", err)
	}
}

func TestGetAndDeleteMissing(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := st.Get(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: %v", err)
	}
	if err := st.Delete(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing: %v", err)
	}
}
