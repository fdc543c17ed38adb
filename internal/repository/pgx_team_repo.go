package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/mkravets/team-dashboard/internal/db"
)

type Team struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type TeamRepository interface {
	Create(ctx context.Context, team *Team) (*Team, error)
	Get(ctx context.Context, teamID int64) (*Team, error)
	List(ctx context.Context) ([]*Team, error)
	ListByUser(ctx context.Context, userID int64) ([]*Team, error)
	Rename(ctx context.Context, teamID int64, name string) (*Team, error)
	Delete(ctx context.Context, teamID int64) error
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
}

type pgxTeamRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &pgxTeamRepository{pool: pool}
}

func (p *pgxTeamRepository) Create(ctx context.Context, team *Team) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("teams", "name"),
		im.Values(psql.Arg(team.Name)),
		im.Returning("id", "name"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	created := &Team{}
	err = e.QueryRow(ctx, sql, args...).Scan(&created.ID, &created.Name)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (p *pgxTeamRepository) Get(ctx context.Context, teamID int64) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "name"),
		sm.From("teams"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(teamID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	team := &Team{}
	if err = e.QueryRow(ctx, sql, args...).Scan(&team.ID, &team.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return team, nil
}

func (p *pgxTeamRepository) List(ctx context.Context) ([]*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "name"),
		sm.From("teams"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Team, error) {
		team := &Team{}
		if err = row.Scan(&team.ID, &team.Name); err != nil {
			return nil, err
		}
		return team, nil
	})
}

func (p *pgxTeamRepository) ListByUser(ctx context.Context, userID int64) ([]*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("teams.id", "teams.name"),
		sm.From("teams"),
		sm.InnerJoin("team_members").On(
			psql.Quote("team_members", "team_id").EQ(psql.Quote("teams", "id")),
		),
		sm.Where(psql.Quote("team_members", "user_id").EQ(psql.Arg(userID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Team, error) {
		team := &Team{}
		if err = row.Scan(&team.ID, &team.Name); err != nil {
			return nil, err
		}
		return team, nil
	})
}

func (p *pgxTeamRepository) Rename(ctx context.Context, teamID int64, name string) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("teams"),
		um.SetCol("name").ToArg(name),
		um.Where(psql.Quote("id").EQ(psql.Arg(teamID))),
		um.Returning("id", "name"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	team := &Team{}
	err = e.QueryRow(ctx, sql, args...).Scan(&team.ID, &team.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (p *pgxTeamRepository) Delete(ctx context.Context, teamID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("teams"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(teamID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	commandTag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *pgxTeamRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)
	return taken(ctx, e, "teams", excludeID, fieldMatch{column: "name", value: name})
}
