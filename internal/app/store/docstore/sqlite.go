// internal/app/store/docstore/sqlite.go
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT    NOT NULL,
	id         TEXT    NOT NULL,
	version    INTEGER NOT NULL,
	data       BLOB    NOT NULL,
	PRIMARY KEY (collection, id)
);`

// SQLite stores bson documents in a single table. Filtering runs in process
// with the same semantics as the memory backend.
type SQLite struct {
	db  *sql.DB
	hub *Hub
	log *zap.Logger
}

type sqliteTxKey struct{}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: units of work hold it, other callers queue behind.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, hub: NewHub(logger, 0), log: logger}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLite) conn(ctx context.Context) execer {
	if tx, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

func (s *SQLite) Hub() *Hub { return s.hub }

func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLite) Close(ctx context.Context) error {
	s.hub.Close()
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, coll, id string) (Raw, error) {
	var data []byte
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, coll, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Raw{}, ErrNotFound
	}
	if err != nil {
		return Raw{}, err
	}
	return newRaw(id, bson.Raw(data)), nil
}

func (s *SQLite) Create(ctx context.Context, coll, id string, doc any) error {
	data, version, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = s.conn(ctx).ExecContext(ctx,
		`INSERT INTO documents (collection, id, version, data) VALUES (?, ?, ?, ?)`,
		coll, id, version, []byte(data))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrExists
		}
		return err
	}
	emit(ctx, s.hub, Event{Type: EventCreated, Collection: coll, ID: id, Data: data})
	return nil
}

func (s *SQLite) Replace(ctx context.Context, coll, id string, doc any, expectVersion int64) error {
	data, next, err := encode(doc)
	if err != nil {
		return err
	}
	if err := checkAdvance(coll, id, next, expectVersion); err != nil {
		return err
	}
	c := s.conn(ctx)
	res, err := c.ExecContext(ctx,
		`UPDATE documents SET data = ?, version = ? WHERE collection = ? AND id = ? AND version = ?`,
		[]byte(data), next, coll, id, expectVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		err := c.QueryRowContext(ctx,
			`SELECT 1 FROM documents WHERE collection = ? AND id = ?`, coll, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	emit(ctx, s.hub, Event{Type: EventUpdated, Collection: coll, ID: id, Data: data})
	return nil
}

func (s *SQLite) Delete(ctx context.Context, coll, id string) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, coll, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	emit(ctx, s.hub, Event{Type: EventDeleted, Collection: coll, ID: id})
	return nil
}

func (s *SQLite) Find(ctx context.Context, coll string, q Query) ([]Raw, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? ORDER BY rowid`, coll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raws := make([]Raw, 0)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		raws = append(raws, newRaw(id, bson.Raw(data)))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return q.apply(raws)
}

// WithTx runs fn in a SQL transaction; events publish after commit.
func (s *SQLite) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, inTx := ctx.Value(sqliteTxKey{}).(*sql.Tx); inTx {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	txCtx, events := withPending(context.WithValue(ctx, sqliteTxKey{}, tx))
	if err := fn(txCtx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	events.flush(s.hub)
	return nil
}
