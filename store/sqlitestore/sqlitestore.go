// Package sqlitestore keeps the Record Store in a single SQLite file. Each
// record is stored as its JSON wire form in the documents table.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"lovenest/models"
	"lovenest/store"
	"lovenest/store/sqlitestore/migrations"
)

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the database at dsn and migrates it.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, dsn string) (*store.Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// modernc serializes writers anyway; one connection also keeps
	// ":memory:" databases from being opened once per pooled connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return FromDB(db), nil
}

// FromDB wraps an already migrated database.
func FromDB(db *sql.DB) *store.Store {
	return store.New(
		NewCollection[models.Plan](db, store.Plans),
		NewCollection[models.BucketListItem](db, store.BucketList),
		NewCollection[models.Dream](db, store.Dreams),
		NewCollection[models.Milestone](db, store.Milestones),
		NewCollection[models.Movie](db, store.Cinema),
		func(context.Context) error { return db.Close() },
	)
}

type Collection[T any] struct {
	db   *sql.DB
	name string
}

func NewCollection[T any](db *sql.DB, name string) *Collection[T] {
	return &Collection[T]{db: db, name: name}
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE collection = ? ORDER BY seq`, c.name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var doc T
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", c.name, err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	body, err := c.body(ctx, c.db, id)
	if err != nil {
		return doc, err
	}
	err = json.Unmarshal(body, &doc)
	return doc, err
}

func (c *Collection[T]) Insert(ctx context.Context, id string, doc T) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)`, c.name, id, string(body))
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, set store.Fields) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	body, err := c.body(ctx, tx, id)
	if err != nil {
		return err
	}
	merged, err := store.MergeJSON(body, set)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET body = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE collection = ? AND id = ?`, string(merged), c.name, id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c.name, id, err)
	}
	return tx.Commit()
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, c.name, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (c *Collection[T]) body(ctx context.Context, q queryer, id string) ([]byte, error) {
	var body string
	err := q.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, c.name, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}
