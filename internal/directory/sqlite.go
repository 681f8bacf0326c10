package directory

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDirectory implements Directory over a SQLite employee database.
type SQLiteDirectory struct {
	db *sql.DB
}

// NewSQLite opens the employee directory database.
func NewSQLite(dbPath string) (*SQLiteDirectory, error) {
	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open directory database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping directory database: %w", err)
	}

	d := &SQLiteDirectory{db: db}
	if err := d.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize directory schema: %w", err)
	}
	return d, nil
}

func (d *SQLiteDirectory) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS employees (
		employee_id INTEGER PRIMARY KEY,
		cedula TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		hire_date TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_employees_cedula ON employees(cedula);
	`
	if _, err := d.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Verify checks an exact (cedula, employee code) match.
func (d *SQLiteDirectory) Verify(ctx context.Context, cedula, code string) (string, error) {
	codeNum, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		return "", ErrInvalidCode
	}

	query := `SELECT employee_id FROM employees WHERE cedula = ? AND employee_id = ?`
	var employeeID int64
	err = d.db.QueryRowContext(ctx, query, cedula, codeNum).Scan(&employeeID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("verify employee: %w", err)
	}
	return strconv.FormatInt(employeeID, 10), nil
}

// EmployeeName returns the employee's full display name.
func (d *SQLiteDirectory) EmployeeName(ctx context.Context, employeeID string) (string, error) {
	query := `SELECT first_name || ' ' || last_name FROM employees WHERE employee_id = ?`
	var name string
	err := d.db.QueryRowContext(ctx, query, employeeID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query employee name: %w", err)
	}
	return name, nil
}

// HireDate returns the employee's hire date. Dates are stored as YYYY-MM-DD.
func (d *SQLiteDirectory) HireDate(ctx context.Context, employeeID string) (time.Time, error) {
	query := `SELECT hire_date FROM employees WHERE employee_id = ?`
	var raw string
	err := d.db.QueryRowContext(ctx, query, employeeID).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query hire date: %w", err)
	}

	hired, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse hire date %q: %w", raw, err)
	}
	return hired, nil
}

// Close closes the directory database connection.
func (d *SQLiteDirectory) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close directory database: %w", err)
	}
	return nil
}
