package db

import (
	"errors"

	"github.com/lib/pq"
)

const (
	PgUniqueViolation     = "23505"
	PgForeignKeyViolation = "23503"
	PgCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool { return pgCode(err) == PgUniqueViolation }

func IsForeignKeyViolation(err error) bool { return pgCode(err) == PgForeignKeyViolation }

func IsCheckViolation(err error) bool { return pgCode(err) == PgCheckViolation }

// ConstraintName returns the violated constraint, if the error carries one.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}
