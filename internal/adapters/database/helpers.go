package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// notFoundOr maps sql.ErrNoRows to a not found error and anything else to an internal error
func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError(notFound)
	}
	return apperrors.NewInternalError(internal, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with wildcards in s escaped
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
