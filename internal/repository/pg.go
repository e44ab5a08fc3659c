package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// PostgreSQL error codes the repositories react to.
const (
	PgErrUniqueViolation     = "23505" // unique_violation
	PgErrForeignKeyViolation = "23503" // foreign_key_violation
)

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != PgErrUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE/ILIKE pattern matching s anywhere, with
// wildcards in s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// pqStringArray adapts a []string destination for a Postgres TEXT[] column.
// NULL scans to a nil slice.
func pqStringArray(p *[]string) any {
	return pq.Array(p)
}

func nullIfEmpty(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return strings.TrimSpace(*s)
}
