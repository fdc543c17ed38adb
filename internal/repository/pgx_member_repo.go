package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/mkravets/team-dashboard/internal/db"
)

type TeamMember struct {
	ID          int64     `db:"id"`
	TeamID      int64     `db:"team_id"`
	UserID      int64     `db:"user_id"`
	IsModerator bool      `db:"is_moderator"`
	JoinedAt    time.Time `db:"joined_at"`
}

type MemberRepository interface {
	Create(ctx context.Context, member *TeamMember) (*TeamMember, error)
	Get(ctx context.Context, memberID int64) (*TeamMember, error)
	GetByTeamUser(ctx context.Context, teamID, userID int64) (*TeamMember, error)
	ListByTeam(ctx context.Context, teamID int64) ([]*TeamMember, error)
	ListAll(ctx context.Context) ([]*TeamMember, error)
	SetModerator(ctx context.Context, teamID, userID int64, isModerator bool) (*TeamMember, error)
	Delete(ctx context.Context, teamID, userID int64) error
	DeleteByTeam(ctx context.Context, teamID int64) error
	DeleteByUser(ctx context.Context, userID int64) error
	Exists(ctx context.Context, teamID, userID int64) (bool, error)
}

type pgxMemberRepository struct {
	pool *pgxpool.Pool
}

func NewPgxMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &pgxMemberRepository{pool: pool}
}

func scanMember(row pgx.Row) (*TeamMember, error) {
	m := &TeamMember{}
	if err := row.Scan(&m.ID, &m.TeamID, &m.UserID, &m.IsModerator, &m.JoinedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *pgxMemberRepository) Create(ctx context.Context, member *TeamMember) (*TeamMember, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("team_members", "team_id", "user_id", "is_moderator"),
		im.Values(psql.Arg(member.TeamID), psql.Arg(member.UserID), psql.Arg(member.IsModerator)),
		im.Returning("id", "team_id", "user_id", "is_moderator", "joined_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	created, err := scanMember(e.QueryRow(ctx, sql, args...))
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (p *pgxMemberRepository) Get(ctx context.Context, memberID int64) (*TeamMember, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "user_id", "is_moderator", "joined_at"),
		sm.From("team_members"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(memberID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	m, err := scanMember(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (p *pgxMemberRepository) GetByTeamUser(ctx context.Context, teamID, userID int64) (*TeamMember, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "user_id", "is_moderator", "joined_at"),
		sm.From("team_members"),
		sm.Where(
			psql.Quote("team_id").EQ(psql.Arg(teamID)).
				And(psql.Quote("user_id").EQ(psql.Arg(userID))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	m, err := scanMember(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (p *pgxMemberRepository) ListByTeam(ctx context.Context, teamID int64) ([]*TeamMember, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "user_id", "is_moderator", "joined_at"),
		sm.From("team_members"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*TeamMember, error) {
		return scanMember(row)
	})
}

func (p *pgxMemberRepository) ListAll(ctx context.Context) ([]*TeamMember, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "user_id", "is_moderator", "joined_at"),
		sm.From("team_members"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*TeamMember, error) {
		return scanMember(row)
	})
}

func (p *pgxMemberRepository) SetModerator(ctx context.Context, teamID, userID int64, isModerator bool) (*TeamMember, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("team_members"),
		um.SetCol("is_moderator").ToArg(isModerator),
		um.Where(
			psql.Quote("team_id").EQ(psql.Arg(teamID)).
				And(psql.Quote("user_id").EQ(psql.Arg(userID))),
		),
		um.Returning("id", "team_id", "user_id", "is_moderator", "joined_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	m, err := scanMember(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (p *pgxMemberRepository) Delete(ctx context.Context, teamID, userID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("team_members"),
		dm.Where(
			psql.Quote("team_id").EQ(psql.Arg(teamID)).
				And(psql.Quote("user_id").EQ(psql.Arg(userID))),
		),
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

func (p *pgxMemberRepository) DeleteByTeam(ctx context.Context, teamID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("team_members"),
		dm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)
	return err
}

func (p *pgxMemberRepository) Exists(ctx context.Context, teamID, userID int64) (bool, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)
	return taken(ctx, e, "team_members", 0,
		fieldMatch{column: "team_id", value: teamID},
		fieldMatch{column: "user_id", value: userID},
	)
}

func (p *pgxMemberRepository) DeleteByUser(ctx context.Context, userID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("team_members"),
		dm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)
	return err
}
