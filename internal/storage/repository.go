package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"shopledger/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists transactions and categories in a local SQLite
// database and tracks export sync state per transaction.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
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

	return &SQLiteRepository{db: db}, nil
}

// Ping verifies the database connection, backing the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction inserts a validated transaction and returns it with its
// generated id and creation timestamp filled in.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, date, type, category, payment_type, description, amount_cents, sync_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.String(), string(t.Type), t.Category, string(t.PaymentType),
		t.Description, t.Amount.Cents, SyncPending, t.CreatedAt,
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"category", t.Category,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())

	return t, nil
}

// GetTransaction loads a single transaction by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, type, category, payment_type, description, amount_cents, created_at
		FROM transactions WHERE id = ?`, id)

	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// DeleteTransaction removes a transaction and returns its last known state
// so callers can propagate deletes downstream.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := r.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return t, nil
}

// ListTransactions returns transactions matching the filter, most recent
// date first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	query := `
		SELECT id, date, type, category, payment_type, description, amount_cents, created_at
		FROM transactions WHERE 1=1`
	var args []any

	if f.Type != "" {
		query += " AND type = ?"
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Range != nil {
		// Dates are stored as YYYY-MM-DD, so inclusive day comparison is
		// plain string comparison.
		query += " AND date >= ? AND date <= ?"
		args = append(args, f.Range.Start.String(), f.Range.End.String())
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// CreateCategory inserts a category and returns it with id and timestamp set.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, type, icon, color, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Icon, c.Color, boolToInt(c.IsDefault), c.CreatedAt,
	)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	slog.InfoContext(ctx, "Category saved", "id", c.ID, "name", c.Name, "type", c.Type)
	return c, nil
}

// GetCategory loads a single category by id.
func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, icon, color, is_default, created_at
		FROM categories WHERE id = ?`, id)

	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return core.Category{}, ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns every category, oldest first.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, icon, color, is_default, created_at
		FROM categories ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// DeleteCategory removes a category by id. Default protection is enforced by
// the service layer; the store only reports existence.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// SeedDefaultCategories inserts defaults when no default-flagged category
// exists yet. Check and insert run in one SQL transaction, so serialized
// callers never double-seed; it reports whether anything was inserted.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context, defaults []core.Category) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE is_default = 1`).Scan(&count); err != nil {
		return false, fmt.Errorf("count default categories: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	for _, c := range defaults {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, type, icon, color, is_default, created_at)
			VALUES (?, ?, ?, ?, ?, 1, ?)`,
			uuid.NewString(), c.Name, string(c.Type), c.Icon, c.Color, now,
		); err != nil {
			return false, fmt.Errorf("insert default category %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed transaction: %w", err)
	}

	slog.InfoContext(ctx, "Default categories seeded", "count", len(defaults))
	return true, nil
}

// ListPendingExport returns up to limit transactions not yet exported,
// oldest first. Backup path for lost AMQP messages.
func (r *SQLiteRepository) ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, type, category, payment_type, description, amount_cents, created_at
		FROM transactions WHERE sync_status = ? ORDER BY created_at ASC LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending transactions: %w", err)
	}
	return out, nil
}

// MarkExported records that a transaction reached the export target.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncDone, id); err != nil {
		return fmt.Errorf("mark transaction exported: %w", err)
	}
	return nil
}

// MarkExportError records a failed export attempt.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark transaction export error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with export error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		date    string
		typ     string
		payment string
	)
	if err := row.Scan(&t.ID, &date, &typ, &t.Category, &payment, &t.Description, &t.Amount.Cents, &t.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	t.Date = d
	t.Type = core.TransactionType(typ)
	t.PaymentType = core.PaymentMethod(payment)
	return t, nil
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c         core.Category
		typ       string
		isDefault int
	)
	if err := row.Scan(&c.ID, &c.Name, &typ, &c.Icon, &c.Color, &isDefault, &c.CreatedAt); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TransactionType(typ)
	c.IsDefault = isDefault != 0
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
