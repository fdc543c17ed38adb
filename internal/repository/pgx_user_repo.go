package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/mkravets/team-dashboard/internal/db"
)

type User struct {
	ID           int64   `db:"id"`
	Username     string  `db:"username"`
	Email        string  `db:"email"`
	PasswordHash string  `db:"password_hash"`
	FullName     *string `db:"full_name"`
}

type UserPatch struct {
	ID           int64   `db:"id"`
	Username     *string `db:"username"`
	Email        *string `db:"email"`
	PasswordHash *string `db:"password_hash"`
	FullName     *string `db:"full_name"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	Get(ctx context.Context, userID int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Patch(ctx context.Context, patch *UserPatch) (*User, error)
	Delete(ctx context.Context, userID int64) error
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgxUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgxUserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName); err != nil {
		return nil, err
	}
	return u, nil
}

func (p *pgxUserRepository) Create(ctx context.Context, user *User) (*User, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("users", "username", "email", "password_hash", "full_name"),
		im.Values(psql.Arg(user.Username), psql.Arg(user.Email), psql.Arg(user.PasswordHash), psql.Arg(user.FullName)),
		im.Returning("id", "username", "email", "password_hash", "full_name"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	created, err := scanUser(e.QueryRow(ctx, sql, args...))
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (p *pgxUserRepository) Get(ctx context.Context, userID int64) (*User, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "username", "email", "password_hash", "full_name"),
		sm.From("users"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(userID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (p *pgxUserRepository) List(ctx context.Context) ([]*User, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "username", "email", "password_hash", "full_name"),
		sm.From("users"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*User, error) {
		return scanUser(row)
	})
}

func (p *pgxUserRepository) Patch(ctx context.Context, patch *UserPatch) (*User, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sets := make([]bob.Mod[*dialect.UpdateQuery], 0, 4)

	if patch.Username != nil {
		sets = append(sets, um.SetCol("username").ToArg(*patch.Username))
	}
	if patch.Email != nil {
		sets = append(sets, um.SetCol("email").ToArg(*patch.Email))
	}
	if patch.PasswordHash != nil {
		sets = append(sets, um.SetCol("password_hash").ToArg(*patch.PasswordHash))
	}
	if patch.FullName != nil {
		sets = append(sets, um.SetCol("full_name").ToArg(*patch.FullName))
	}

	q := psql.Update(
		um.Table("users"),
		um.Where(psql.Quote("id").EQ(psql.Arg(patch.ID))),
		um.Returning("id", "username", "email", "password_hash", "full_name"),
	)

	q.Apply(sets...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (p *pgxUserRepository) Delete(ctx context.Context, userID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("users"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(userID))),
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

func (p *pgxUserRepository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)
	return taken(ctx, e, "users", excludeID, fieldMatch{column: "username", value: username})
}

func (p *pgxUserRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)
	return taken(ctx, e, "users", excludeID, fieldMatch{column: "email", value: email})
}
