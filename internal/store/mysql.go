package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// MySQLStore persists documents as versioned JSON rows in a single
// `documents` table.  The version column drives the optimistic commit: a
// transaction re-checks (with row locks) that every document it read still
// carries the observed version before its writes are applied, and bails out
// with ErrConflict otherwise so the retry loop can re-run the body.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore wraps an open database handle.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// EnsureSchema creates the documents table when it does not exist yet.  It
// is called once at startup.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS documents (
        collection VARCHAR(64)  NOT NULL,
        id         VARCHAR(64)  NOT NULL,
        version    BIGINT UNSIGNED NOT NULL,
        data       JSON         NOT NULL,
        PRIMARY KEY (collection, id)
    )`
	_, err := s.db.ExecContext(ctx, q)
	return err
}

// Get loads and decodes one document.
func (s *MySQLStore) Get(ctx context.Context, collection, id string) (Doc, error) {
	const q = `SELECT data FROM documents WHERE collection = ? AND id = ?`
	var raw []byte
	err := s.db.QueryRowContext(ctx, q, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDoc(raw)
}

// Add inserts data under a freshly minted ID and returns it.
func (s *MySQLStore) Add(ctx context.Context, collection string, data Doc) (string, error) {
	id := uuid.NewString()
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	const q = `INSERT INTO documents (collection, id, version, data) VALUES (?, ?, 1, ?)`
	if _, err := s.db.ExecContext(ctx, q, collection, id, raw); err != nil {
		return "", err
	}
	return id, nil
}

// Set replaces the document, creating it when absent.
func (s *MySQLStore) Set(ctx context.Context, collection, id string, data Doc) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	const q = `INSERT INTO documents (collection, id, version, data) VALUES (?, ?, 1, ?)
               ON DUPLICATE KEY UPDATE data = VALUES(data), version = version + 1`
	_, err = s.db.ExecContext(ctx, q, collection, id, raw)
	return err
}

// Delete removes the document; absent documents are a no-op.
func (s *MySQLStore) Delete(ctx context.Context, collection, id string) error {
	const q = `DELETE FROM documents WHERE collection = ? AND id = ?`
	_, err := s.db.ExecContext(ctx, q, collection, id)
	return err
}

// List returns all documents of a collection ordered by ID.
func (s *MySQLStore) List(ctx context.Context, collection string) ([]Document, error) {
	const q = `SELECT id, data FROM documents WHERE collection = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Document, 0)
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		data, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Document{ID: id, Data: data})
	}
	return out, rows.Err()
}

// RunTransaction executes fn with snapshot reads and CAS commit, retrying a
// bounded number of times on conflict.
func (s *MySQLStore) RunTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	return runTransaction(ctx, fn, s.attempt)
}

// attempt runs the body against plain (unlocked) snapshot reads, then
// commits inside one SQL transaction that locks and re-verifies every
// version observed by the body.
func (s *MySQLStore) attempt(ctx context.Context, fn func(tx *Tx) error) error {
	tx := newTx(func(k docKey) (Doc, uint64, error) {
		const q = `SELECT version, data FROM documents WHERE collection = ? AND id = ?`
		var version uint64
		var raw []byte
		err := s.db.QueryRowContext(ctx, q, k.collection, k.id).Scan(&version, &raw)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		data, err := decodeDoc(raw)
		if err != nil {
			return nil, 0, err
		}
		return data, version, nil
	})
	if err := fn(tx); err != nil {
		return err
	}
	if err := s.commit(ctx, tx); err != nil {
		// InnoDB resolves lock-order deadlocks by killing one transaction;
		// treat that the same as a version conflict and retry the body.
		if isDeadlock(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *MySQLStore) commit(ctx context.Context, tx *Tx) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	// Lock every document the body read and verify its version is still the
	// one observed.  A missing row verifies against version 0.  Locks are
	// taken in sorted key order so two commits touching the same documents
	// never acquire them in opposite orders.
	for _, k := range sortedReadKeys(tx) {
		seen := tx.reads[k]
		const q = `SELECT version FROM documents WHERE collection = ? AND id = ? FOR UPDATE`
		var cur uint64
		err := sqlTx.QueryRowContext(ctx, q, k.collection, k.id).Scan(&cur)
		if errors.Is(err, sql.ErrNoRows) {
			cur = 0
		} else if err != nil {
			return err
		}
		if cur != seen {
			return ErrConflict
		}
	}

	for _, w := range tx.writes {
		if err := s.applyWrite(ctx, sqlTx, w); err != nil {
			return err
		}
	}
	if err := sqlTx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *MySQLStore) applyWrite(ctx context.Context, sqlTx *sql.Tx, w write) error {
	switch {
	case w.create:
		raw, err := json.Marshal(w.data)
		if err != nil {
			return err
		}
		const q = `INSERT INTO documents (collection, id, version, data) VALUES (?, ?, 1, ?)`
		if _, err := sqlTx.ExecContext(ctx, q, w.key.collection, w.key.id, raw); err != nil {
			// A duplicate ID means another writer created the document
			// between snapshot and commit; treat it as a lost race.
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil
	case w.data != nil:
		raw, err := json.Marshal(w.data)
		if err != nil {
			return err
		}
		const q = `INSERT INTO documents (collection, id, version, data) VALUES (?, ?, 1, ?)
                   ON DUPLICATE KEY UPDATE data = VALUES(data), version = version + 1`
		_, err = sqlTx.ExecContext(ctx, q, w.key.collection, w.key.id, raw)
		return err
	default:
		// Field updates apply against the row's committed data, which the
		// version check above proved identical to the body's snapshot.
		const sel = `SELECT data FROM documents WHERE collection = ? AND id = ? FOR UPDATE`
		var raw []byte
		if err := sqlTx.QueryRowContext(ctx, sel, w.key.collection, w.key.id).Scan(&raw); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: update of missing document %s/%s", ErrConflict, w.key.collection, w.key.id)
			}
			return err
		}
		data, err := decodeDoc(raw)
		if err != nil {
			return err
		}
		next, err := json.Marshal(applyUpdates(data, w.updates))
		if err != nil {
			return err
		}
		const upd = `UPDATE documents SET data = ?, version = version + 1 WHERE collection = ? AND id = ?`
		_, err = sqlTx.ExecContext(ctx, upd, next, w.key.collection, w.key.id)
		return err
	}
}

// sortedReadKeys returns the transaction's read set ordered by collection
// then id, the lock acquisition order for every commit.
func sortedReadKeys(tx *Tx) []docKey {
	keys := make([]docKey, 0, len(tx.reads))
	for k := range tx.reads {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].collection != keys[j].collection {
			return keys[i].collection < keys[j].collection
		}
		return keys[i].id < keys[j].id
	})
	return keys
}

// isDeadlock reports whether err is MySQL error 1213 (deadlock found when
// trying to get lock).
func isDeadlock(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1213
}

func decodeDoc(raw []byte) (Doc, error) {
	var d Doc
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return d, nil
}
