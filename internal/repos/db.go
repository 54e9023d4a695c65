package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLite stores each collection as a table of JSON documents.
type SQLite struct {
	sqliteOps
	db *sqlx.DB
}

func OpenDB(dsn string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLite{sqliteOps: sqliteOps{x: db}, db: db}, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  body TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS customers(
  id TEXT PRIMARY KEY,
  body TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  body TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLite) RunInTx(ctx context.Context, fn func(ctx context.Context, b Backend) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, &sqliteTx{sqliteOps{x: tx}}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) Close() error { return s.db.Close() }

type sqliteTx struct{ sqliteOps }

func (t *sqliteTx) RunInTx(ctx context.Context, fn func(ctx context.Context, b Backend) error) error {
	return fn(ctx, t)
}

func (t *sqliteTx) Close() error { return nil }

// sqliteOps runs document statements against either the pool or a transaction.
type sqliteOps struct{ x sqlx.ExtContext }

var tables = map[string]bool{CollProducts: true, CollCustomers: true, CollOrders: true}

func table(coll string) (string, error) {
	if !tables[coll] {
		return "", fmt.Errorf("unknown collection %q", coll)
	}
	return coll, nil
}

func (o sqliteOps) Get(ctx context.Context, coll, id string) (Doc, error) {
	t, err := table(coll)
	if err != nil {
		return nil, err
	}
	var body string
	err = sqlx.GetContext(ctx, o.x, &body, `SELECT body FROM `+t+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return jsonDoc(body), nil
}

func (o sqliteOps) Put(ctx context.Context, coll, id string, v any) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	body, err := marshalJSON(v)
	if err != nil {
		return err
	}
	_, err = o.x.ExecContext(ctx, `
		INSERT INTO `+t+`(id, body, created_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP
	`, id, body)
	return err
}

func (o sqliteOps) Delete(ctx context.Context, coll, id string) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	res, err := o.x.ExecContext(ctx, `DELETE FROM `+t+` WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (o sqliteOps) List(ctx context.Context, coll string) ([]Doc, error) {
	t, err := table(coll)
	if err != nil {
		return nil, err
	}
	var bodies []string
	if err := sqlx.SelectContext(ctx, o.x, &bodies, `SELECT body FROM `+t+` ORDER BY created_at, id`); err != nil {
		return nil, err
	}
	out := make([]Doc, 0, len(bodies))
	for _, b := range bodies {
		out = append(out, jsonDoc(b))
	}
	return out, nil
}
