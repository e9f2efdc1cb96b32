// Package postgres implements the repositories on PostgreSQL with sqlx.
package postgres

import (
	"database/sql"

	"github.com/Laisky/errors/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"hrcms/internal/apperror"
)

const uniqueViolation = "23505"

// validID reports whether id can ever match a UUID primary key.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(kind, id string) error {
	return errors.Wrapf(apperror.ErrNotFound, "%s %s", kind, id)
}

// translate maps driver errors onto the repository sentinels.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(apperror.ErrNotFound, msg)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return errors.Wrap(apperror.ErrDuplicate, msg)
	}
	return errors.Wrap(err, msg)
}

func checkAffected(res sql.Result, kind, id string) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if rowsAffected == 0 {
		return notFound(kind, id)
	}
	return nil
}
