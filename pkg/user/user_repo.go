package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateSettings(ctx context.Context, userId int, settings Settings) error
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

const selectUser = `SELECT id, uid, username, display_name, timezone, currency, fixed_lifestyle_mode,
				fixed_needs_amount FROM users`

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, username, display_name, timezone, currency, fixed_lifestyle_mode, 
				fixed_needs_amount) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query,
		user.Uid,
		user.Username,
		user.DisplayName,
		user.Settings.Timezone,
		user.Settings.Currency,
		user.Settings.FixedLifestyleMode,
		user.Settings.FixedNeedsAmount,
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.getOne(ctx, selectUser+` WHERE uid = $1`, uid)
}

func (u *UserRepoImpl) getOne(ctx context.Context, query string, arg any) (User, error) {
	var user User
	var fixedNeeds decimal.NullDecimal
	err := u.db.QueryRow(ctx, query, arg).
		Scan(
			&user.Id,
			&user.Uid,
			&user.Username,
			&user.DisplayName,
			&user.Settings.Timezone,
			&user.Settings.Currency,
			&user.Settings.FixedLifestyleMode,
			&fixedNeeds,
		)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Infof("user %v not found", arg)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	if fixedNeeds.Valid {
		user.Settings.FixedNeedsAmount = fixedNeeds.Decimal
	}
	return user, nil
}

func (u *UserRepoImpl) UpdateSettings(ctx context.Context, userId int, settings Settings) error {
	query := `UPDATE users SET timezone = $1, currency = $2, fixed_lifestyle_mode = $3, fixed_needs_amount = $4 
				WHERE id = $5`
	result, err := u.db.Exec(ctx, query,
		settings.Timezone,
		settings.Currency,
		settings.FixedLifestyleMode,
		settings.FixedNeedsAmount,
		userId,
	)
	if err != nil {
		return fmt.Errorf("failed to update user settings: %w", err)
	}
	if result.RowsAffected() == 0 {
		log.Info("no rows affected of updating user settings")
		return ErrUserNotFound
	}
	return nil
}
