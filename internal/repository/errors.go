package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noryangjin/auction-server/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

const uniqueViolationCode = "23505"

// DuplicateError reports a unique constraint rejected by the store.
type DuplicateError struct {
	Field      string
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// constraintFields maps unique constraint names to the field they guard.
var constraintFields = map[string]string{
	"users_email_key":        domain.FieldEmail,
	"users_phone_number_key": domain.FieldPhoneNumber,
}

// translateError maps driver errors to the errors the persistence port promises:
// ErrNotFound, *DuplicateError, or a domain StoreUnavailableError.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return &DuplicateError{Field: fieldForConstraint(pgErr.ConstraintName), Constraint: pgErr.ConstraintName}
	}
	return domain.NewStoreUnavailableError(op, err)
}

func fieldForConstraint(name string) string {
	if field, ok := constraintFields[name]; ok {
		return field
	}
	switch {
	case strings.Contains(name, "email"):
		return domain.FieldEmail
	case strings.Contains(name, "phone"):
		return domain.FieldPhoneNumber
	default:
		return name
	}
}
