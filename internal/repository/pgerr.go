package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const uniqueViolation = "23505"

// uniqueConstraint returns the violated constraint name when err is a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

const dateLayout = "2006-01-02"

func dateParam(value *string) (pgtype.Date, error) {
	if value == nil {
		return pgtype.Date{}, nil
	}

	parsed, err := time.Parse(dateLayout, *value)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("parse date %q: %w", *value, err)
	}

	return pgtype.Date{Time: parsed, Valid: true}, nil
}

func dateString(value pgtype.Date) *string {
	if !value.Valid {
		return nil
	}

	formatted := value.Time.Format(dateLayout)
	return &formatted
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
