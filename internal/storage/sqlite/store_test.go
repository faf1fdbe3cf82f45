package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rzbill/sluice/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) ledger.Address {
	var a ledger.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func fresh(sender, recipient ledger.Address) ledger.Stream {
	return ledger.Stream{Deposit: 100, Remaining: 100, Sender: sender, Recipient: recipient, Start: 10, Stop: 20}
}

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "open #%d", i)
		require.NoError(t, s.Ping(context.Background()))
		require.NoError(t, s.Close())
	}
}

func TestInsertGetUpdateDelete(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	created, err := s.Insert(ctx, fresh(addr(1), addr(2)))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	got.Remaining = 40
	require.NoError(t, s.Update(ctx, got))
	again, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), again.Remaining)

	moved := again
	moved.Sender = addr(7)
	assert.ErrorIs(t, s.Update(ctx, moved), ledger.ErrValidation)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), ledger.ErrNotFound)

	c, err := s.BySender(ctx, addr(1))
	assert.Empty(t, collect(t, c, err), "index rows must go with the record")
}

func collect(t *testing.T, c ledger.Cursor, err error) []uint64 {
	t.Helper()
	require.NoError(t, err)
	ids, err := ledger.Collect(c, 0)
	require.NoError(t, err)
	return ids
}

func TestIDsSurviveReopenAndAreNotReused(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	first, err := s.Insert(ctx, fresh(addr(1), addr(2)))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, first.ID))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	next, err := reopened.Insert(ctx, fresh(addr(1), addr(2)))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.ID)
	last, err := reopened.LastID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), last)
}

func TestInvalidInsertLeavesNoTrace(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	bad := fresh(addr(1), addr(2))
	bad.Deposit = 0
	_, err := s.Insert(ctx, bad)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	last, err := s.LastID(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestIndexScans(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	for _, p := range [][2]byte{{1, 2}, {2, 3}, {1, 3}} {
		_, err := s.Insert(ctx, fresh(addr(p[0]), addr(p[1])))
		require.NoError(t, err)
	}
	c, err := s.BySender(ctx, addr(1))
	assert.Equal(t, []uint64{1, 3}, collect(t, c, err))

	c, err = s.ByRecipient(ctx, addr(3))
	assert.Equal(t, []uint64{2, 3}, collect(t, c, err))
}

func TestReplacedConnectionKeepsForeignKeys(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	// Closing idle connections forces the next query onto a new one.
	s.db.SetMaxIdleConns(0)
	require.NoError(t, s.Ping(ctx))

	var fk int
	require.NoError(t, s.db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
	var mode string
	require.NoError(t, s.db.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestDeleteClearsIndexesWithoutForeignKeys(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	created, err := s.Insert(ctx, fresh(addr(1), addr(2)))
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, `PRAGMA foreign_keys = OFF`)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, created.ID))

	for _, table := range []string{"streams_by_sender", "streams_by_recipient"} {
		var n int
		require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}
