package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const UserKey contextKey = "user"

var ErrNoUser = errors.New("user not found")

func fromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("no user in request context")
	}
	return u, ok
}

// CurrentId returns the id of the user attached to ctx, or ErrNoUser.
func CurrentId(ctx context.Context) (int, error) {
	u, ok := fromContext(ctx)
	if !ok {
		return 0, ErrNoUser
	}
	return u.Id, nil
}

func CurrentUser(ctx context.Context) (User, error) {
	u, ok := fromContext(ctx)
	if !ok {
		return User{}, ErrNoUser
	}
	return u, nil
}

// CurrentSettings returns the budgeting settings of the current user. Without a user the
// zero Settings are returned, which means base currency, UTC and no fixed lifestyle.
func CurrentSettings(ctx context.Context) Settings {
	u, _ := fromContext(ctx)
	return u.Settings
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
