package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mkravets/team-dashboard/internal/db"
	"github.com/mkravets/team-dashboard/internal/model"
	"github.com/mkravets/team-dashboard/internal/repository"
	"github.com/mkravets/team-dashboard/pkg/logger"
)

type TeamService struct {
	tx db.Transactor

	users   repository.UserRepository
	teams   repository.TeamRepository
	members repository.MemberRepository
	tasks   repository.TaskRepository
}

func NewTeamService(tx db.Transactor) *TeamService {
	return &TeamService{tx: tx}
}

func toModelTeam(t *repository.Team) *model.Team {
	return &model.Team{
		ID:   t.ID,
		Name: t.Name,
	}
}

func toModelMember(m *repository.TeamMember) *model.TeamMember {
	return &model.TeamMember{
		ID:          m.ID,
		TeamID:      m.TeamID,
		UserID:      m.UserID,
		IsModerator: m.IsModerator,
		JoinedAt:    m.JoinedAt,
	}
}

// Create persists the team and the creator's moderator membership in one
// transaction: either both rows become visible or neither does.
func (t *TeamService) Create(ctx context.Context, name string, creatorID int64) (*model.Team, *Error) {
	l := logger.FromContext(ctx)
	l.Info("creating team", zap.String("team_name", name), zap.Int64("creator_id", creatorID))

	var created *model.Team

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := t.users.Get(txCtx, creatorID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				l.Warn("creator user not found", zap.Int64("creator_id", creatorID))
				return NewError(ErrorCodeNotFound, "creator user not found")
			}
			return NewError(ErrorCodeUnspecified, "failed to get creator user")
		}

		taken, err := t.teams.NameTaken(txCtx, name, 0)
		if err != nil {
			return NewError(ErrorCodeUnspecified, "failed to check team name")
		}
		if taken {
			l.Warn("team name already exists", zap.String("team_name", name))
			return NewError(ErrorCodeConflict, "team name already exists")
		}

		team, err := t.teams.Create(txCtx, &repository.Team{Name: name})
		if errors.Is(err, repository.ErrAlreadyExists) {
			return NewError(ErrorCodeConflict, "team name already exists")
		}
		if err != nil {
			l.Error("failed to create team", zap.String("team_name", name), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to create team")
		}

		if _, err = t.members.Create(txCtx, &repository.TeamMember{
			TeamID:      team.ID,
			UserID:      creatorID,
			IsModerator: true,
		}); err != nil {
			l.Error("failed to create creator membership",
				zap.String("team_name", name),
				zap.Int64("creator_id", creatorID),
				zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to create creator membership")
		}

		created = toModelTeam(team)
		return nil
	})

	if err != nil {
		return nil, asServiceError(err)
	}
	return created, nil
}

func (t *TeamService) Get(ctx context.Context, teamID int64) (*model.Team, *Error) {
	team, err := t.teams.Get(ctx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "team not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to get team")
	}
	return toModelTeam(team), nil
}

func (t *TeamService) List(ctx context.Context) ([]*model.Team, *Error) {
	teamsRepo, err := t.teams.List(ctx)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list teams")
	}

	teams := make([]*model.Team, 0, len(teamsRepo))
	for _, team := range teamsRepo {
		teams = append(teams, toModelTeam(team))
	}
	return teams, nil
}

func (t *TeamService) Update(ctx context.Context, teamID int64, name string) (*model.Team, *Error) {
	var updated *model.Team

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		taken, err := t.teams.NameTaken(txCtx, name, teamID)
		if err != nil {
			return NewError(ErrorCodeUnspecified, "failed to check team name")
		}
		if taken {
			return NewError(ErrorCodeConflict, "team name already taken")
		}

		team, err := t.teams.Rename(txCtx, teamID, name)
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(ErrorCodeNotFound, "team not found")
		}
		if errors.Is(err, repository.ErrAlreadyExists) {
			return NewError(ErrorCodeConflict, "team name already taken")
		}
		if err != nil {
			return NewError(ErrorCodeUnspecified, "failed to update team")
		}

		updated = toModelTeam(team)
		return nil
	})

	if err != nil {
		return nil, asServiceError(err)
	}
	return updated, nil
}

// Delete removes the team and its memberships. Tasks that referenced the
// team survive with their team reference cleared and their owner intact.
func (t *TeamService) Delete(ctx context.Context, teamID int64) *Error {
	l := logger.FromContext(ctx)
	l.Info("deleting team", zap.Int64("team_id", teamID))

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := t.teams.Get(txCtx, teamID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrorCodeNotFound, "team not found")
			}
			return NewError(ErrorCodeUnspecified, "failed to get team")
		}

		if err := t.members.DeleteByTeam(txCtx, teamID); err != nil {
			return NewError(ErrorCodeUnspecified, "failed to delete team memberships")
		}

		if err := t.tasks.ClearTeam(txCtx, teamID); err != nil {
			return NewError(ErrorCodeUnspecified, "failed to detach team tasks")
		}

		if err := t.teams.Delete(txCtx, teamID); err != nil {
			l.Error("failed to delete team", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to delete team")
		}

		return nil
	})

	return asServiceError(err)
}

func (t *TeamService) Members(ctx context.Context, teamID int64) ([]*model.TeamMember, *Error) {
	if _, err := t.teams.Get(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrorCodeNotFound, "team not found")
		}
		return nil, NewError(ErrorCodeUnspecified, "failed to get team")
	}

	membersRepo, err := t.members.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list team members")
	}

	members := make([]*model.TeamMember, 0, len(membersRepo))
	for _, member := range membersRepo {
		members = append(members, toModelMember(member))
	}
	return members, nil
}

func (t *TeamService) UserTeams(ctx context.Context, userID int64) ([]*model.Team, *Error) {
	if _, err := t.users.Get(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrorCodeNotFound, "user not found")
		}
		return nil, NewError(ErrorCodeUnspecified, "failed to get user")
	}

	teamsRepo, err := t.teams.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list user teams")
	}

	teams := make([]*model.Team, 0, len(teamsRepo))
	for _, team := range teamsRepo {
		teams = append(teams, toModelTeam(team))
	}
	return teams, nil
}

func (t *TeamService) WithUserRepo(r repository.UserRepository) *TeamService {
	t.users = r
	return t
}

func (t *TeamService) WithTeamRepo(r repository.TeamRepository) *TeamService {
	t.teams = r
	return t
}

func (t *TeamService) WithMemberRepo(r repository.MemberRepository) *TeamService {
	t.members = r
	return t
}

func (t *TeamService) WithTaskRepo(r repository.TaskRepository) *TeamService {
	t.tasks = r
	return t
}
