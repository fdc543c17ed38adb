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

type MemberService struct {
	tx db.Transactor

	users   repository.UserRepository
	teams   repository.TeamRepository
	members repository.MemberRepository
}

func NewMemberService(tx db.Transactor) *MemberService {
	return &MemberService{tx: tx}
}

func (m *MemberService) Add(ctx context.Context, teamID, userID int64, isModerator bool) (*model.TeamMember, *Error) {
	l := logger.FromContext(ctx)
	l.Info("adding team member",
		zap.Int64("team_id", teamID),
		zap.Int64("user_id", userID),
		zap.Bool("is_moderator", isModerator))

	if _, err := m.teams.Get(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrorCodeNotFound, "team not found")
		}
		return nil, NewError(ErrorCodeUnspecified, "failed to get team")
	}

	if _, err := m.users.Get(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrorCodeNotFound, "user not found")
		}
		return nil, NewError(ErrorCodeUnspecified, "failed to get user")
	}

	exists, err := m.members.Exists(ctx, teamID, userID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to check membership")
	}
	if exists {
		l.Warn("user already in team", zap.Int64("team_id", teamID), zap.Int64("user_id", userID))
		return nil, NewError(ErrorCodeConflict, "user already in this team")
	}

	member, err := m.members.Create(ctx, &repository.TeamMember{
		TeamID:      teamID,
		UserID:      userID,
		IsModerator: isModerator,
	})
	// Concurrent adds of the same pair race past the check above; the
	// composite unique index settles it.
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, NewError(ErrorCodeConflict, "user already in this team")
	}
	if err != nil {
		l.Error("failed to add team member",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to add team member")
	}

	return toModelMember(member), nil
}

func (m *MemberService) Get(ctx context.Context, memberID int64) (*model.TeamMember, *Error) {
	member, err := m.members.Get(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "team member not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to get team member")
	}
	return toModelMember(member), nil
}

func (m *MemberService) ListByTeam(ctx context.Context, teamID int64) ([]*model.TeamMember, *Error) {
	if _, err := m.teams.Get(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrorCodeNotFound, "team not found")
		}
		return nil, NewError(ErrorCodeUnspecified, "failed to get team")
	}

	membersRepo, err := m.members.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list team members")
	}

	members := make([]*model.TeamMember, 0, len(membersRepo))
	for _, member := range membersRepo {
		members = append(members, toModelMember(member))
	}
	return members, nil
}

func (m *MemberService) ListAll(ctx context.Context) ([]*model.TeamMember, *Error) {
	membersRepo, err := m.members.ListAll(ctx)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list memberships")
	}

	members := make([]*model.TeamMember, 0, len(membersRepo))
	for _, member := range membersRepo {
		members = append(members, toModelMember(member))
	}
	return members, nil
}

// requireModerator is the capability check gating membership mutation:
// the acting user must hold a moderator membership of the team.
func (m *MemberService) requireModerator(ctx context.Context, teamID, actorID int64) *Error {
	actor, err := m.members.GetByTeamUser(ctx, teamID, actorID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeForbidden, "only moderators can modify team membership")
	}
	if err != nil {
		return NewError(ErrorCodeUnspecified, "failed to check acting user membership")
	}
	if !actor.IsModerator {
		return NewError(ErrorCodeForbidden, "only moderators can modify team membership")
	}
	return nil
}

func (m *MemberService) UpdateRole(ctx context.Context, teamID, userID, actorID int64, isModerator bool) (*model.TeamMember, *Error) {
	l := logger.FromContext(ctx)
	l.Info("updating member role",
		zap.Int64("team_id", teamID),
		zap.Int64("user_id", userID),
		zap.Int64("actor_id", actorID),
		zap.Bool("is_moderator", isModerator))

	if serr := m.requireModerator(ctx, teamID, actorID); serr != nil {
		return nil, serr
	}

	member, err := m.members.SetModerator(ctx, teamID, userID, isModerator)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "member not found in this team")
	}
	if err != nil {
		l.Error("failed to update member role",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to update member role")
	}

	return toModelMember(member), nil
}

// Remove deletes a membership. Removing the last moderator is allowed
// and leaves the team without one; there is no auto-promotion.
func (m *MemberService) Remove(ctx context.Context, teamID, userID, actorID int64) *Error {
	l := logger.FromContext(ctx)
	l.Info("removing team member",
		zap.Int64("team_id", teamID),
		zap.Int64("user_id", userID),
		zap.Int64("actor_id", actorID))

	if serr := m.requireModerator(ctx, teamID, actorID); serr != nil {
		return serr
	}

	err := m.members.Delete(ctx, teamID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "member not found in this team")
	}
	if err != nil {
		l.Error("failed to remove team member",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to remove team member")
	}

	return nil
}

func (m *MemberService) WithUserRepo(r repository.UserRepository) *MemberService {
	m.users = r
	return m
}

func (m *MemberService) WithTeamRepo(r repository.TeamRepository) *MemberService {
	m.teams = r
	return m
}

func (m *MemberService) WithMemberRepo(r repository.MemberRepository) *MemberService {
	m.members = r
	return m
}
