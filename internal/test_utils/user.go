package test_utils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/budgetwise/pkg/user"
	"github.com/stretchr/testify/require"
)

// CreateUser stores a user owning the records of a repository test and returns its id.
func CreateUser(t *testing.T, ctx context.Context, db *pgxpool.Pool) int {
	t.Helper()
	id, err := user.NewUserRepo(db).CreateUser(ctx, user.User{
		Uid:         uuid.NewString(),
		Username:    "test_user",
		DisplayName: "Test User",
		Settings:    user.Settings{Timezone: "Europe/Warsaw", Currency: "USD"},
	})
	require.NoError(t, err)
	return id
}
