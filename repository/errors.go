package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// DuplicateError reports a unique constraint violation on Field.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

// ErrReferenceNotFound is returned when a row points at a parent that does
// not exist.
var ErrReferenceNotFound = errors.New("referenced row not found")

var constraintFields = map[string]string{
	"users_email_key":    "email",
	"users_username_key": "username",
}

func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		field, ok := constraintFields[pqErr.Constraint]
		if !ok {
			field = pqErr.Constraint
		}
		return &DuplicateError{Field: field, Err: err}
	case pqForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrReferenceNotFound, pqErr.Constraint)
	}
	return err
}
