package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkravets/team-dashboard/internal/db"
	"github.com/mkravets/team-dashboard/internal/model"
	"github.com/mkravets/team-dashboard/internal/repository"
	"github.com/mkravets/team-dashboard/pkg/logger"
)

type UserService struct {
	tx db.Transactor

	users   repository.UserRepository
	members repository.MemberRepository
	tasks   repository.TaskRepository
}

func NewUserService(tx db.Transactor) *UserService {
	return &UserService{tx: tx}
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	FullName *string
}

type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	FullName *string
}

func toModelUser(u *repository.User) *model.User {
	return &model.User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (u *UserService) Create(ctx context.Context, in *CreateUserInput) (*model.User, *Error) {
	l := logger.FromContext(ctx)
	l.Info("creating user", zap.String("username", in.Username))

	var created *model.User

	err := u.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		taken, err := u.users.UsernameTaken(txCtx, in.Username, 0)
		if err != nil {
			return NewError(ErrorCodeUnspecified, "failed to check username")
		}
		if taken {
			l.Warn("username already registered", zap.String("username", in.Username))
			return NewError(ErrorCodeConflict, "username already registered")
		}

		taken, err = u.users.EmailTaken(txCtx, in.Email, 0)
		if err != nil {
			return NewError(ErrorCodeUnspecified, "failed to check email")
		}
		if taken {
			l.Warn("email already registered", zap.String("email", in.Email))
			return NewError(ErrorCodeConflict, "email already registered")
		}

		hash, err := hashPassword(in.Password)
		if err != nil {
			return NewError(ErrorCodeUnspecified, "failed to hash password")
		}

		user, err := u.users.Create(txCtx, &repository.User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: hash,
			FullName:     in.FullName,
		})
		// The unique index is the final arbiter for concurrent creates
		// that both pass the checks above.
		if errors.Is(err, repository.ErrAlreadyExists) {
			return NewError(ErrorCodeConflict, "username or email already registered")
		}
		if err != nil {
			l.Error("failed to create user", zap.String("username", in.Username), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to create user")
		}

		created = toModelUser(user)
		return nil
	})

	if err != nil {
		return nil, asServiceError(err)
	}
	return created, nil
}

func (u *UserService) Get(ctx context.Context, userID int64) (*model.User, *Error) {
	user, err := u.users.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "user not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to get user")
	}
	return toModelUser(user), nil
}

func (u *UserService) List(ctx context.Context) ([]*model.User, *Error) {
	usersRepo, err := u.users.List(ctx)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list users")
	}

	users := make([]*model.User, 0, len(usersRepo))
	for _, user := range usersRepo {
		users = append(users, toModelUser(user))
	}
	return users, nil
}

func (u *UserService) Update(ctx context.Context, userID int64, in *UpdateUserInput) (*model.User, *Error) {
	l := logger.FromContext(ctx)

	var updated *model.User

	err := u.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if in.Username != nil {
			taken, err := u.users.UsernameTaken(txCtx, *in.Username, userID)
			if err != nil {
				return NewError(ErrorCodeUnspecified, "failed to check username")
			}
			if taken {
				return NewError(ErrorCodeConflict, "username already taken")
			}
		}

		if in.Email != nil {
			taken, err := u.users.EmailTaken(txCtx, *in.Email, userID)
			if err != nil {
				return NewError(ErrorCodeUnspecified, "failed to check email")
			}
			if taken {
				return NewError(ErrorCodeConflict, "email already registered")
			}
		}

		patch := &repository.UserPatch{
			ID:       userID,
			Username: in.Username,
			Email:    in.Email,
			FullName: in.FullName,
		}

		if in.Password != nil {
			hash, err := hashPassword(*in.Password)
			if err != nil {
				return NewError(ErrorCodeUnspecified, "failed to hash password")
			}
			patch.PasswordHash = &hash
		}

		if patch.Username == nil && patch.Email == nil && patch.PasswordHash == nil && patch.FullName == nil {
			user, err := u.users.Get(txCtx, userID)
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrorCodeNotFound, "user not found")
			}
			if err != nil {
				return NewError(ErrorCodeUnspecified, "failed to get user")
			}
			updated = toModelUser(user)
			return nil
		}

		user, err := u.users.Patch(txCtx, patch)
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(ErrorCodeNotFound, "user not found")
		}
		if errors.Is(err, repository.ErrAlreadyExists) {
			return NewError(ErrorCodeConflict, "username or email already taken")
		}
		if err != nil {
			l.Error("failed to update user", zap.Int64("user_id", userID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to update user")
		}

		updated = toModelUser(user)
		return nil
	})

	if err != nil {
		return nil, asServiceError(err)
	}
	return updated, nil
}

// Delete removes the user together with their memberships and owned
// tasks. owner_id stays non-null for every surviving task.
func (u *UserService) Delete(ctx context.Context, userID int64) *Error {
	l := logger.FromContext(ctx)
	l.Info("deleting user", zap.Int64("user_id", userID))

	err := u.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := u.users.Get(txCtx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrorCodeNotFound, "user not found")
			}
			return NewError(ErrorCodeUnspecified, "failed to get user")
		}

		if err := u.members.DeleteByUser(txCtx, userID); err != nil {
			return NewError(ErrorCodeUnspecified, "failed to delete user memberships")
		}

		if err := u.tasks.DeleteByOwner(txCtx, userID); err != nil {
			return NewError(ErrorCodeUnspecified, "failed to delete user tasks")
		}

		if err := u.users.Delete(txCtx, userID); err != nil {
			l.Error("failed to delete user", zap.Int64("user_id", userID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to delete user")
		}

		return nil
	})

	return asServiceError(err)
}

func (u *UserService) WithUserRepo(r repository.UserRepository) *UserService {
	u.users = r
	return u
}

func (u *UserService) WithMemberRepo(r repository.MemberRepository) *UserService {
	u.members = r
	return u
}

func (u *UserService) WithTaskRepo(r repository.TaskRepository) *UserService {
	u.tasks = r
	return u
}
