package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrUserDataInvalid = errors.New("invalid user data")

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateSettings(ctx context.Context, settings Settings) (User, error)
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.GetUser(ctx, userId)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

// CreateUser stores a new user. A missing uid is generated.
func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	if strings.TrimSpace(user.Username) == "" {
		return User{}, fmt.Errorf("%w: username is required", ErrUserDataInvalid)
	}
	if user.Uid == "" {
		user.Uid = uuid.NewString()
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	userId, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	return user, nil
}

func (u *UserServiceImpl) UpdateSettings(ctx context.Context, settings Settings) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if settings.FixedNeedsAmount.IsNegative() {
		return User{}, fmt.Errorf("%w: fixed needs amount cannot be negative", ErrUserDataInvalid)
	}
	if err := u.repo.UpdateSettings(ctx, userId, settings); err != nil {
		return User{}, err
	}
	return u.repo.GetUser(ctx, userId)
}
