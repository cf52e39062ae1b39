// Package store keeps a local SQLite snapshot of the backend's
// transactions and categories. The snapshot is what the UI renders when
// it starts offline; it is replaced wholesale after every successful
// list fetch and never written back to the backend.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trirule/internal/core"

	_ "modernc.org/sqlite"
)

const metaSyncedAt = "synced_at"

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Replace swaps the whole snapshot in one transaction. A partial write
// never becomes visible.
func (s *Store) Replace(ctx context.Context, transactions []core.Transaction, categories []core.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	for _, c := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, color, type) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Color, string(c.Type)); err != nil {
			return fmt.Errorf("insert category %d: %w", c.ID, err)
		}
	}

	for _, t := range transactions {
		var categoryID any
		if t.Category != nil {
			categoryID = t.Category.ID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, amount_cents, description, date, kind, category_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, t.Amount.Cents, t.Description, t.Date.String(), string(t.Kind), categoryID); err != nil {
			return fmt.Errorf("insert transaction %d: %w", t.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaSyncedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Categories returns the snapshot categories ordered by name.
func (s *Store) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, type FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &typ); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.CategoryType(typ)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Transactions returns the snapshot transactions newest first, with
// categories joined in.
func (s *Store) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.amount_cents, t.description, t.date, t.kind,
		        c.id, c.name, c.color, c.type
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 ORDER BY t.date DESC, t.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var kind, date string
		var catID sql.NullInt64
		var catName, catColor, catType sql.NullString
		if err := rows.Scan(&t.ID, &t.Amount.Cents, &t.Description, &date, &kind,
			&catID, &catName, &catColor, &catType); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.Kind(kind)
		parsed, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d has malformed date %q: %w", t.ID, date, err)
		}
		t.Date = parsed
		if catID.Valid {
			t.Category = &core.Category{
				ID:    catID.Int64,
				Name:  catName.String,
				Color: catColor.String,
				Type:  core.CategoryType(catType.String),
			}
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// LastSync reports when the snapshot was last replaced; ok is false for
// a fresh database.
func (s *Store) LastSync(ctx context.Context) (time.Time, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM snapshot_meta WHERE key = ?`, metaSyncedAt).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query sync time: %w", err)
	}
	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse sync time %q: %w", value, err)
	}
	return at, true, nil
}
