package user_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/budgetwise/internal/test_utils"
	"github.com/klokku/budgetwise/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *user.UserRepoImpl) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, user.NewUserRepo(db)
}

func TestUserRepoImpl_CreateUser(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	uid := uuid.NewString()

	// when
	id, err := repo.CreateUser(ctx, user.User{
		Uid: uid, Username: "alice", DisplayName: "Alice",
		Settings: user.Settings{Timezone: "Europe/Warsaw", Currency: "PLN"},
	})

	// then
	require.NoError(t, err)
	stored, err := repo.GetUserByUid(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, id, stored.Id)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, "PLN", stored.Settings.Currency)
	assert.False(t, stored.Settings.FixedLifestyleMode)
}

func TestUserRepoImpl_UpdateSettings(t *testing.T) {
	t.Run("should store fixed lifestyle settings", func(t *testing.T) {
		// given
		ctx, repo := setupTestRepository(t)
		id, err := repo.CreateUser(ctx, user.User{Uid: uuid.NewString(), Username: "bob", DisplayName: "Bob"})
		require.NoError(t, err)

		// when
		err = repo.UpdateSettings(ctx, id, user.Settings{
			Currency: "EUR", FixedLifestyleMode: true, FixedNeedsAmount: decimal.NewFromInt(3000),
		})

		// then
		require.NoError(t, err)
		stored, err := repo.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "EUR", stored.Settings.Currency)
		assert.True(t, stored.Settings.FixedLifestyleMode)
		assert.True(t, decimal.NewFromInt(3000).Equal(stored.Settings.FixedNeedsAmount))
	})

	t.Run("should return not found for unknown user", func(t *testing.T) {
		ctx, repo := setupTestRepository(t)

		err := repo.UpdateSettings(ctx, 999, user.Settings{})

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestUserRepoImpl_GetUser_NotFound(t *testing.T) {
	ctx, repo := setupTestRepository(t)

	_, err := repo.GetUser(ctx, 999)

	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
