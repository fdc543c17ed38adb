package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mkravets/team-dashboard/internal/db"
	"github.com/mkravets/team-dashboard/internal/model"
	"github.com/mkravets/team-dashboard/internal/repository"
	"github.com/mkravets/team-dashboard/pkg/logger"
)

type TaskService struct {
	tx db.Transactor

	users repository.UserRepository
	teams repository.TeamRepository
	tasks repository.TaskRepository
}

func NewTaskService(tx db.Transactor) *TaskService {
	return &TaskService{tx: tx}
}

type CreateTaskInput struct {
	Title       string
	Description *string
	Status      *string
	DueDate     *time.Time
	OwnerID     int64
	TeamID      *int64
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
	OwnerID     *int64
	TeamID      *int64
}

func toModelTask(t *repository.Task) *model.Task {
	return &model.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      model.TaskStatus(t.Status),
		DueDate:     t.DueDate,
		OwnerID:     t.OwnerID,
		TeamID:      t.TeamID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (s *TaskService) checkOwner(ctx context.Context, ownerID int64) *Error {
	if _, err := s.users.Get(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(ErrorCodeNotFound, "task owner not found")
		}
		return NewError(ErrorCodeUnspecified, "failed to get task owner")
	}
	return nil
}

func (s *TaskService) checkTeam(ctx context.Context, teamID int64) *Error {
	if _, err := s.teams.Get(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(ErrorCodeNotFound, "team not found")
		}
		return NewError(ErrorCodeUnspecified, "failed to get team")
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, in *CreateTaskInput) (*model.Task, *Error) {
	l := logger.FromContext(ctx)

	if in.Title == "" {
		return nil, NewError(ErrorCodeValidation, "title is required")
	}
	if in.OwnerID == 0 {
		return nil, NewError(ErrorCodeValidation, "owner_id is required")
	}

	status := model.TaskStatusPending
	if in.Status != nil {
		parsed, ok := model.ParseTaskStatus(*in.Status)
		if !ok {
			return nil, NewError(ErrorCodeValidation, "unrecognized task status")
		}
		status = parsed
	}

	if serr := s.checkOwner(ctx, in.OwnerID); serr != nil {
		return nil, serr
	}
	if in.TeamID != nil {
		if serr := s.checkTeam(ctx, *in.TeamID); serr != nil {
			return nil, serr
		}
	}

	l.Info("creating task",
		zap.String("title", in.Title),
		zap.Int64("owner_id", in.OwnerID),
		zap.String("status", string(status)))

	task, err := s.tasks.Create(ctx, &repository.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      string(status),
		DueDate:     in.DueDate,
		OwnerID:     in.OwnerID,
		TeamID:      in.TeamID,
	})
	if err != nil {
		l.Error("failed to create task", zap.String("title", in.Title), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create task")
	}

	return toModelTask(task), nil
}

func (s *TaskService) Get(ctx context.Context, taskID int64) (*model.Task, *Error) {
	task, err := s.tasks.Get(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "task not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to get task")
	}
	return toModelTask(task), nil
}

func (s *TaskService) List(ctx context.Context) ([]*model.Task, *Error) {
	tasksRepo, err := s.tasks.List(ctx)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list tasks")
	}
	return toModelTasks(tasksRepo), nil
}

func (s *TaskService) Update(ctx context.Context, taskID int64, in *UpdateTaskInput) (*model.Task, *Error) {
	l := logger.FromContext(ctx)

	if in.Title != nil && *in.Title == "" {
		return nil, NewError(ErrorCodeValidation, "title cannot be empty")
	}

	var status *string
	if in.Status != nil {
		parsed, ok := model.ParseTaskStatus(*in.Status)
		if !ok {
			return nil, NewError(ErrorCodeValidation, "unrecognized task status")
		}
		v := string(parsed)
		status = &v
	}

	if in.OwnerID != nil {
		if serr := s.checkOwner(ctx, *in.OwnerID); serr != nil {
			return nil, serr
		}
	}
	if in.TeamID != nil {
		if serr := s.checkTeam(ctx, *in.TeamID); serr != nil {
			return nil, serr
		}
	}

	task, err := s.tasks.Patch(ctx, &repository.TaskPatch{
		ID:          taskID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		DueDate:     in.DueDate,
		OwnerID:     in.OwnerID,
		TeamID:      in.TeamID,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "task not found")
	}
	if err != nil {
		l.Error("failed to update task", zap.Int64("task_id", taskID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to update task")
	}

	return toModelTask(task), nil
}

func (s *TaskService) Delete(ctx context.Context, taskID int64) *Error {
	err := s.tasks.Delete(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "task not found")
	}
	if err != nil {
		return NewError(ErrorCodeUnspecified, "failed to delete task")
	}
	return nil
}

func (s *TaskService) ListByUser(ctx context.Context, userID int64) ([]*model.Task, *Error) {
	if serr := s.checkOwner(ctx, userID); serr != nil {
		return nil, serr
	}

	tasksRepo, err := s.tasks.ListByOwner(ctx, userID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list user tasks")
	}
	return toModelTasks(tasksRepo), nil
}

func (s *TaskService) ListByTeam(ctx context.Context, teamID int64) ([]*model.Task, *Error) {
	if serr := s.checkTeam(ctx, teamID); serr != nil {
		return nil, serr
	}

	tasksRepo, err := s.tasks.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list team tasks")
	}
	return toModelTasks(tasksRepo), nil
}

// ListByStatus rejects unknown statuses instead of returning an empty
// list: the status set is closed, so an unrecognized value is a caller
// mistake, not a miss.
func (s *TaskService) ListByStatus(ctx context.Context, status string) ([]*model.Task, *Error) {
	parsed, ok := model.ParseTaskStatus(status)
	if !ok {
		return nil, NewError(ErrorCodeValidation, "unrecognized task status")
	}

	tasksRepo, err := s.tasks.ListByStatus(ctx, string(parsed))
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list tasks by status")
	}
	return toModelTasks(tasksRepo), nil
}

func toModelTasks(tasksRepo []*repository.Task) []*model.Task {
	tasks := make([]*model.Task, 0, len(tasksRepo))
	for _, task := range tasksRepo {
		tasks = append(tasks, toModelTask(task))
	}
	return tasks
}

func (s *TaskService) WithUserRepo(r repository.UserRepository) *TaskService {
	s.users = r
	return s
}

func (s *TaskService) WithTeamRepo(r repository.TeamRepository) *TaskService {
	s.teams = r
	return s
}

func (s *TaskService) WithTaskRepo(r repository.TaskRepository) *TaskService {
	s.tasks = r
	return s
}
