package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rzbill/sluice/internal/ledger"
)

//go:embed schema.sql
var schemaSQL string

const lastIDKey = "streams/last_id"

// Store is a ledger.Store on SQLite. A single connection serializes writers,
// and every mutation runs in one transaction.
type Store struct {
	db *sql.DB
}

var _ ledger.Store = (*Store)(nil)

// connParams are applied by the driver to every connection it opens, so a
// pooled connection replaced after an error keeps the same settings.
const connParams = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL"

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + connParams
	}
	return path + "?" + connParams
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the connection; used by runtime health checks.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func lastID(ctx context.Context, q queryer) (uint64, error) {
	var v int64
	err := q.QueryRowContext(ctx, `SELECT value FROM ledger_meta WHERE key = ?`, lastIDKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read last_id: %w", err)
	}
	return uint64(v), nil
}

func (s *Store) LastID(ctx context.Context) (uint64, error) { return lastID(ctx, s.db) }

func (s *Store) Insert(ctx context.Context, st ledger.Stream) (ledger.Stream, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		last, err := lastID(ctx, tx)
		if err != nil {
			return err
		}
		st.ID = last + 1
		rec, err := ledger.EncodeRecord(st)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, lastIDKey, int64(st.ID)); err != nil {
			return fmt.Errorf("bump last_id: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO streams (id, record) VALUES (?, ?)`, int64(st.ID), string(rec)); err != nil {
			return fmt.Errorf("insert stream: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO streams_by_sender (sender, id) VALUES (?, ?)`, st.Sender.String(), int64(st.ID)); err != nil {
			return fmt.Errorf("insert sender index: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO streams_by_recipient (recipient, id) VALUES (?, ?)`, st.Recipient.String(), int64(st.ID)); err != nil {
			return fmt.Errorf("insert recipient index: %w", err)
		}
		return nil
	})
	if err != nil {
		return ledger.Stream{}, err
	}
	return st, nil
}

func getStream(ctx context.Context, q queryer, id uint64) (ledger.Stream, error) {
	var rec string
	err := q.QueryRowContext(ctx, `SELECT record FROM streams WHERE id = ?`, int64(id)).Scan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Stream{}, ledger.NotFound("get", "stream %d", id)
	}
	if err != nil {
		return ledger.Stream{}, fmt.Errorf("get stream %d: %w", id, err)
	}
	return ledger.DecodeRecord([]byte(rec))
}

func (s *Store) Get(ctx context.Context, id uint64) (ledger.Stream, error) {
	return getStream(ctx, s.db, id)
}

func (s *Store) Update(ctx context.Context, st ledger.Stream) error {
	if st.Remaining == 0 {
		return ledger.Validation("update", "stream %d is exhausted; delete it instead", st.ID)
	}
	rec, err := ledger.EncodeRecord(st)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		cur, err := getStream(ctx, tx, st.ID)
		if err != nil {
			return err
		}
		if !cur.SameTerms(st) {
			return ledger.Validation("update", "stream %d: write-once fields changed", st.ID)
		}
		_, err = tx.ExecContext(ctx, `UPDATE streams SET record = ? WHERE id = ?`, string(rec), int64(st.ID))
		return err
	})
}

func (s *Store) Delete(ctx context.Context, id uint64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getStream(ctx, tx, id); err != nil {
			return err
		}
		// index rows first; the cascade is not relied on
		for _, q := range []string{
			`DELETE FROM streams_by_sender WHERE id = ?`,
			`DELETE FROM streams_by_recipient WHERE id = ?`,
			`DELETE FROM streams WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, int64(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// BySender materializes the matching ids in one query. Holding a live row
// cursor would pin the only connection.
func (s *Store) BySender(ctx context.Context, sender ledger.Address) (ledger.Cursor, error) {
	return s.scan(ctx, `SELECT id FROM streams_by_sender WHERE sender = ? ORDER BY id`, sender)
}

func (s *Store) ByRecipient(ctx context.Context, recipient ledger.Address) (ledger.Cursor, error) {
	return s.scan(ctx, `SELECT id FROM streams_by_recipient WHERE recipient = ? ORDER BY id`, recipient)
}

func (s *Store) scan(ctx context.Context, query string, a ledger.Address) (ledger.Cursor, error) {
	rows, err := s.db.QueryContext(ctx, query, a.String())
	if err != nil {
		return nil, fmt.Errorf("index scan: %w", err)
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("index scan: %w", err)
		}
		ids = append(ids, uint64(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index scan: %w", err)
	}
	return ledger.NewSliceCursor(ids), nil
}
