// Package directory queries the HR employee directory.
//
// The directory is read-only from the assistant's point of view: it is
// owned by the HR system and this package only runs lookup queries
// against it.
package directory

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means no employee matched the query.
	ErrNotFound = errors.New("directory: employee not found")

	// ErrInvalidCode means the employee code was not a number. This is an
	// input-validation failure, distinct from a failed lookup.
	ErrInvalidCode = errors.New("directory: employee code is not numeric")
)

// Directory resolves employee identity and profile data.
type Directory interface {
	// Verify checks an exact (cedula, employee code) match and returns the
	// employee ID. The code must parse as a base-10 integer; otherwise
	// ErrInvalidCode is returned. No fuzzy matching.
	Verify(ctx context.Context, cedula, code string) (string, error)

	// EmployeeName returns the display name for an employee.
	EmployeeName(ctx context.Context, employeeID string) (string, error)

	// HireDate returns the employee's hire date.
	HireDate(ctx context.Context, employeeID string) (time.Time, error)
}
