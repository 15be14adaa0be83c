// Package storage implements the ledger store on an embedded SQLite
// database. One repository owns one database handle; the handle is
// injected at construction and released by Close, never held in a
// package-level singleton.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"pocketledger/internal/core"
)

// SQLiteRepository is the CRUD surface over the persisted ledger rows.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if necessary) the database at
// dbPath and ensures the schema is current before returning.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, core.StorageError{Op: "open", Err: err}
	}

	// Single logical writer: every statement goes through one
	// connection, so mutations against the same table never run
	// concurrently and reads never observe an in-flight write.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, core.StorageError{Op: "open", Err: err}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, core.StorageError{Op: "migrate", Err: err}
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FindOrCreateUser returns the user row for name, inserting it first
// if absent. Lookup is exact and case-sensitive. The check and the
// insert run inside one transaction, so sequential calls can never
// produce duplicate rows.
func (r *SQLiteRepository) FindOrCreateUser(ctx context.Context, name string) (core.User, error) {
	if strings.TrimSpace(name) == "" {
		return core.User{}, core.ValidationError{Field: "name"}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.User{}, core.StorageError{Op: "find or create user", Err: err}
	}
	defer tx.Rollback()

	var u core.User
	err = tx.QueryRowContext(ctx,
		`SELECT id, name FROM users WHERE name = ?`, name,
	).Scan(&u.ID, &u.Name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `INSERT INTO users (name) VALUES (?)`, name)
		if err != nil {
			return core.User{}, core.StorageError{Op: "create user", Err: err}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return core.User{}, core.StorageError{Op: "create user", Err: err}
		}
		u = core.User{ID: id, Name: name}
		slog.InfoContext(ctx, "User created", "id", u.ID, "name", u.Name)
	case err != nil:
		return core.User{}, core.StorageError{Op: "find user", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return core.User{}, core.StorageError{Op: "find or create user", Err: err}
	}

	return u, nil
}

// InsertTransaction validates required fields, then persists a new
// row and returns it with its freshly assigned id. AUTOINCREMENT
// keeps ids unique, strictly increasing and never reused. On a
// storage fault no row is created.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, nt core.NewTransaction) (core.Transaction, error) {
	if err := nt.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (name, amount, title, note, category, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nt.Owner, nt.Amount.String(), nt.Title, nt.Note, string(nt.Category), nt.Date,
	)
	if err != nil {
		return core.Transaction{}, core.StorageError{Op: "insert transaction", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, core.StorageError{Op: "insert transaction", Err: err}
	}

	t := core.Transaction{
		ID:       id,
		Owner:    nt.Owner,
		Amount:   *nt.Amount,
		Title:    nt.Title,
		Note:     nt.Note,
		Category: nt.Category,
		Date:     nt.Date,
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"owner", t.Owner,
		"amount", t.Amount.String(),
		"category", string(t.Category),
		"date", t.Date)

	return t, nil
}

// ListTransactions returns every row owned by owner in ascending id
// order, i.e. insertion order. Most-recent-first is a display concern
// and is left to the caller. An owner with no rows yields an empty
// slice, not an error.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount, title, note, category, date
		 FROM transactions WHERE name = ? ORDER BY id ASC`, owner,
	)
	if err != nil {
		return nil, core.StorageError{Op: "list transactions", Err: err}
	}
	defer rows.Close()

	txs := make([]core.Transaction, 0)
	for rows.Next() {
		var (
			t        core.Transaction
			note     sql.NullString
			category string
		)
		if err := rows.Scan(&t.ID, &t.Owner, &t.Amount, &t.Title, &note, &category, &t.Date); err != nil {
			return nil, core.StorageError{Op: "list transactions", Err: err}
		}
		t.Note = note.String
		t.Category = core.Category(category)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StorageError{Op: "list transactions", Err: err}
	}

	return txs, nil
}

// DeleteTransaction removes the row with the given id and reports
// whether anything was removed. A missing id is a no-op, not an
// error.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, core.StorageError{Op: "delete transaction", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, core.StorageError{Op: "delete transaction", Err: err}
	}
	if n > 0 {
		slog.InfoContext(ctx, "Transaction deleted", "id", id)
	}

	return n > 0, nil
}
