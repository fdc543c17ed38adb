package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/mkravets/team-dashboard/internal/db"
)

// uniqueViolation is the Postgres error code for a unique index violation.
// The unique indexes are the final arbiter for every uniqueness rule; the
// taken() checks below only give callers an early, typed rejection.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type fieldMatch struct {
	column string
	value  any
}

// taken reports whether any row of table other than excludeID matches all
// given column/value pairs. It serves every uniqueness rule in the system:
// global single-column scopes (username, email, team name) and the
// composite (team_id, user_id) membership key. Pass excludeID = 0 when no
// row should be exempted.
func taken(ctx context.Context, e db.Executor, table string, excludeID int64, fields ...fieldMatch) (bool, error) {
	q := psql.Select(
		sm.Columns("id"),
		sm.From(table),
	)

	for _, f := range fields {
		q.Apply(sm.Where(psql.Quote(f.column).EQ(psql.Arg(f.value))))
	}
	if excludeID != 0 {
		q.Apply(sm.Where(psql.Quote("id").NE(psql.Arg(excludeID))))
	}
	q.Apply(sm.Limit(1))

	sql, args, err := q.Build(ctx)
	if err != nil {
		return false, err
	}

	var id int64
	if err = e.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
