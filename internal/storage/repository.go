// Package storage is the embedded SQLite record store backend. It is
// the source of truth when the service runs standalone, without a
// remote record store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/store"

	_ "modernc.org/sqlite"
)

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

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func priceParam(t core.Task) sql.NullInt64 {
	if t.Price == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Price.Cents, Valid: true}
}

func scanTask(scan func(...any) error) (core.Task, error) {
	var (
		t     core.Task
		price sql.NullInt64
	)
	err := scan(&t.ID, &t.UserID, &t.Title, &price, &t.Status, &t.Type, &t.Month, &t.Year, &t.CreatedAt)
	if err != nil {
		return core.Task{}, err
	}
	if price.Valid {
		t.Price = &core.Money{Cents: price.Int64}
	}
	return t, nil
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, f store.Filter) ([]core.Task, error) {
	query := `SELECT id, user_id, title, price_cents, status, type, month, year, created_at
		FROM tasks WHERE 1=1`
	var args []any
	if f.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, f.UserID)
	}
	if f.Month != 0 {
		query += " AND month = ?"
		args = append(args, f.Month)
	}
	if f.Year != 0 {
		query += " AND year = ?"
		args = append(args, f.Year)
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, price_cents, status, type, month, year, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, priceParam(t), t.Status, t.Type, t.Month, t.Year, t.CreatedAt)
	if err != nil {
		return core.Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, price_cents = ?, status = ?, type = ?, month = ?, year = ?
		 WHERE id = ? AND user_id = ?`,
		t.Title, priceParam(t), t.Status, t.Type, t.Month, t.Year, t.ID, t.UserID)
	if err != nil {
		return core.Task{}, fmt.Errorf("update task: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.Task{}, err
	}
	return r.getTask(ctx, t.UserID, t.ID)
}

func (r *SQLiteRepository) UpdateTaskStatus(ctx context.Context, userID, id string, status core.TaskStatus) error {
	if !status.Valid() {
		return core.ErrInvalidStatus
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = ? WHERE id = ? AND user_id = ?`,
		status, id, userID)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) getTask(ctx context.Context, userID, id string) (core.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, price_cents, status, type, month, year, created_at
		 FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Task{}, store.ErrNotFound
	}
	if err != nil {
		return core.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, f store.Filter) ([]core.Income, error) {
	query := `SELECT id, user_id, description, amount_cents, month, year, created_at
		FROM incomes WHERE 1=1`
	var args []any
	if f.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, f.UserID)
	}
	if f.Month != 0 {
		query += " AND month = ?"
		args = append(args, f.Month)
	}
	if f.Year != 0 {
		query += " AND year = ?"
		args = append(args, f.Year)
	}
	query += " ORDER BY created_at, id"

	return r.queryIncomes(ctx, query, args...)
}

func (r *SQLiteRepository) ListAllIncomes(ctx context.Context, userID string) ([]core.Income, error) {
	return r.queryIncomes(ctx,
		`SELECT id, user_id, description, amount_cents, month, year, created_at
		 FROM incomes WHERE user_id = ? ORDER BY created_at, id`, userID)
}

func (r *SQLiteRepository) queryIncomes(ctx context.Context, query string, args ...any) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var i core.Income
		if err := rows.Scan(&i.ID, &i.UserID, &i.Description, &i.Amount.Cents, &i.Month, &i.Year, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, i)
	}
	return incomes, rows.Err()
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	if err := i.Validate(); err != nil {
		return core.Income{}, err
	}
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (id, user_id, description, amount_cents, month, year, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.UserID, i.Description, i.Amount.Cents, i.Month, i.Year, i.CreatedAt)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	return i, nil
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	if err := i.Validate(); err != nil {
		return core.Income{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET description = ?, amount_cents = ?, month = ?, year = ?
		 WHERE id = ? AND user_id = ?`,
		i.Description, i.Amount.Cents, i.Month, i.Year, i.ID, i.UserID)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.Income{}, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, description, amount_cents, month, year, created_at
		 FROM incomes WHERE id = ? AND user_id = ?`, i.ID, i.UserID)
	var out core.Income
	if err := row.Scan(&out.ID, &out.UserID, &out.Description, &out.Amount.Cents, &out.Month, &out.Year, &out.CreatedAt); err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
