package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrConnectionUnavailable means the database could not be opened. It is
	// memoized: every later call fails the same way without retrying.
	ErrConnectionUnavailable = errors.New("storage unavailable")

	// ErrUniqueViolation is matched by *ConstraintError.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrTransactionFailed is matched by *TxError.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrNotFound is returned by updates of a missing id and by a sale that
	// references a missing product or customer. Plain reads report absence
	// through their found result instead.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned by Authenticate.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ConstraintError reports an add or update that collided with an existing
// record on a unique key or the primary id.
type ConstraintError struct {
	Collection string // "products", "customers", "users", "sales"
	Field      string // "sku", "phone", "username", "id"
	Value      string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %s %q already exists", e.Collection, e.Field, e.Value)
}

// Is reports ErrUniqueViolation so callers can use errors.Is.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrUniqueViolation
}

// TxError reports a unit of work that was rolled back. Unwrap returns the
// cause so errors.Is(err, ErrNotFound) and friends still work.
type TxError struct {
	Op   string // "add sale"
	Step string // mutation that failed, empty for begin/commit
	Err  error
}

func (e *TxError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("%s: %s: %v (rolled back)", e.Op, e.Step, e.Err)
	}
	return fmt.Sprintf("%s: %v (rolled back)", e.Op, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// Is reports ErrTransactionFailed so callers can use errors.Is.
func (e *TxError) Is(target error) bool {
	return target == ErrTransactionFailed
}

// IsUniqueViolation returns true if err is or wraps a ConstraintError.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}

// IsTransactionFailure returns true if err is or wraps a TxError.
func IsTransactionFailure(err error) bool {
	return errors.Is(err, ErrTransactionFailed)
}

// translate converts a SQLite unique/primary-key failure into a
// ConstraintError. Other errors pass through untouched.
//
// SQLite reports the offending column as "UNIQUE constraint failed: table.column".
func translate(err error, value func(field string) string) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	if se.ExtendedCode != sqlite3.ErrConstraintUnique && se.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
		return err
	}

	msg := se.Error()
	const marker = "constraint failed: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return err
	}
	target := strings.TrimSpace(msg[i+len(marker):])
	if j := strings.IndexByte(target, ','); j >= 0 {
		target = target[:j]
	}
	collection, field, ok := strings.Cut(target, ".")
	if !ok {
		return err
	}
	return &ConstraintError{Collection: collection, Field: field, Value: value(field)}
}
