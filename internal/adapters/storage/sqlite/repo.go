package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/todo/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// IDGenerator returns unique row identifiers.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Repository stores the ordered task list in one sqlite table.
type Repository struct {
	db    *sql.DB
	idGen IDGenerator
	clock Clock
}

// Open opens (and migrates) the database at path.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// The memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)
	return newRepository(db)
}

// newRepository migrates db and wraps it with default id and clock sources.
func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{
		db:    db,
		idGen: uuid.NewString,
		clock: time.Now,
	}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			saved_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// Load lists tasks in display order.
func (r *Repository) Load(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title, completed FROM tasks ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// Save replaces the stored list with tasks in one transaction.
func (r *Repository) Save(ctx context.Context, tasks []domain.Task) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks(id, position, title, completed, saved_at) VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare task insert: %w", err)
	}
	defer stmt.Close()

	savedAt := ts(r.clock())
	for idx, task := range tasks {
		if _, err = stmt.ExecContext(ctx, r.idGen(), idx, task.Title, boolToInt(task.Completed), savedAt); err != nil {
			return fmt.Errorf("insert task %d: %w", idx, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

// scanner represents row scanning behavior.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask scans one task row.
func scanTask(s scanner) (domain.Task, error) {
	var (
		task      domain.Task
		completed int64
	)
	if err := s.Scan(&task.Title, &completed); err != nil {
		return domain.Task{}, fmt.Errorf("scan task: %w", err)
	}
	task.Completed = completed != 0
	return task, nil
}

// boolToInt maps a flag onto sqlite's integer storage.
func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
