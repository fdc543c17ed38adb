package repository

import (
	"context"
	"errors"
	"time"

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

type Task struct {
	ID          int64      `db:"id"`
	Title       string     `db:"title"`
	Description *string    `db:"description"`
	Status      string     `db:"status"`
	DueDate     *time.Time `db:"due_date"`
	OwnerID     int64      `db:"owner_id"`
	TeamID      *int64     `db:"team_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// TaskPatch carries optional field updates. ClearTeam distinguishes
// "set team_id to NULL" from "leave team_id alone".
type TaskPatch struct {
	ID          int64
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
	OwnerID     *int64
	TeamID      *int64
	ClearTeam   bool
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) (*Task, error)
	Get(ctx context.Context, taskID int64) (*Task, error)
	List(ctx context.Context) ([]*Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Task, error)
	ListByTeam(ctx context.Context, teamID int64) ([]*Task, error)
	ListByStatus(ctx context.Context, status string) ([]*Task, error)
	Patch(ctx context.Context, patch *TaskPatch) (*Task, error)
	Delete(ctx context.Context, taskID int64) error
	DeleteByOwner(ctx context.Context, ownerID int64) error
	ClearTeam(ctx context.Context, teamID int64) error
}

type pgxTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &pgxTaskRepository{pool: pool}
}

func scanTask(row pgx.Row) (*Task, error) {
	t := &Task{}
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.DueDate,
		&t.OwnerID,
		&t.TeamID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

var taskColumns = []any{"id", "title", "description", "status", "due_date", "owner_id", "team_id", "created_at", "updated_at"}

func (p *pgxTaskRepository) Create(ctx context.Context, task *Task) (*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("tasks", "title", "description", "status", "due_date", "owner_id", "team_id"),
		im.Values(
			psql.Arg(task.Title),
			psql.Arg(task.Description),
			psql.Arg(task.Status),
			psql.Arg(task.DueDate),
			psql.Arg(task.OwnerID),
			psql.Arg(task.TeamID),
		),
		im.Returning(taskColumns...),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	return scanTask(e.QueryRow(ctx, sql, args...))
}

func (p *pgxTaskRepository) Get(ctx context.Context, taskID int64) (*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(taskColumns...),
		sm.From("tasks"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(taskID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	t, err := scanTask(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (p *pgxTaskRepository) list(ctx context.Context, where ...bob.Mod[*dialect.SelectQuery]) ([]*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(taskColumns...),
		sm.From("tasks"),
	)
	q.Apply(where...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Task, error) {
		return scanTask(row)
	})
}

func (p *pgxTaskRepository) List(ctx context.Context) ([]*Task, error) {
	return p.list(ctx)
}

func (p *pgxTaskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*Task, error) {
	return p.list(ctx, sm.Where(psql.Quote("owner_id").EQ(psql.Arg(ownerID))))
}

func (p *pgxTaskRepository) ListByTeam(ctx context.Context, teamID int64) ([]*Task, error) {
	return p.list(ctx, sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))))
}

func (p *pgxTaskRepository) ListByStatus(ctx context.Context, status string) ([]*Task, error) {
	return p.list(ctx, sm.Where(psql.Quote("status").EQ(psql.Arg(status))))
}

func (p *pgxTaskRepository) Patch(ctx context.Context, patch *TaskPatch) (*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sets := make([]bob.Mod[*dialect.UpdateQuery], 0, 6)

	if patch.Title != nil {
		sets = append(sets, um.SetCol("title").ToArg(*patch.Title))
	}
	if patch.Description != nil {
		sets = append(sets, um.SetCol("description").ToArg(*patch.Description))
	}
	if patch.Status != nil {
		sets = append(sets, um.SetCol("status").ToArg(*patch.Status))
	}
	if patch.DueDate != nil {
		sets = append(sets, um.SetCol("due_date").ToArg(*patch.DueDate))
	}
	if patch.OwnerID != nil {
		sets = append(sets, um.SetCol("owner_id").ToArg(*patch.OwnerID))
	}
	if patch.TeamID != nil {
		sets = append(sets, um.SetCol("team_id").ToArg(*patch.TeamID))
	} else if patch.ClearTeam {
		sets = append(sets, um.SetCol("team_id").To(psql.Raw("NULL")))
	}

	sets = append(sets, um.SetCol("updated_at").To(psql.Raw("now()")))

	q := psql.Update(
		um.Table("tasks"),
		um.Where(psql.Quote("id").EQ(psql.Arg(patch.ID))),
		um.Returning(taskColumns...),
	)

	q.Apply(sets...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	t, err := scanTask(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (p *pgxTaskRepository) Delete(ctx context.Context, taskID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("tasks"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(taskID))),
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

func (p *pgxTaskRepository) DeleteByOwner(ctx context.Context, ownerID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("tasks"),
		dm.Where(psql.Quote("owner_id").EQ(psql.Arg(ownerID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)
	return err
}

// ClearTeam detaches all tasks from a team without deleting them.
func (p *pgxTaskRepository) ClearTeam(ctx context.Context, teamID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("tasks"),
		um.SetCol("team_id").To(psql.Raw("NULL")),
		um.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)
	return err
}
