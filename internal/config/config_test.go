package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should use defaults without a file", func(t *testing.T) {
		// when
		app, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.NoError(t, err)
		assert.Equal(t, 8181, app.Port)
		assert.Equal(t, "budgetwise", app.Database.Name)
		assert.Equal(t, "USD", app.Budget.DefaultCurrency)
		assert.True(t, decimal.RequireFromString("0.01").Equal(app.Budget.Tolerance()))
	})

	t.Run("should read yaml file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := `
db:
  host: db.internal
  port: 6543
budget:
  defaultcurrency: EUR
exchangerates:
  - from: EUR
    to: USD
    rate: "1.08"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// when
		app, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "db.internal", app.Database.Host)
		assert.Equal(t, 6543, app.Database.Port)
		assert.Equal(t, "budgetwise", app.Database.User)
		assert.Equal(t, "EUR", app.Budget.DefaultCurrency)
		require.Len(t, app.ExchangeRates, 1)
		assert.Equal(t, "1.08", app.ExchangeRates[0].Rate)
	})

	t.Run("should override with environment variables", func(t *testing.T) {
		// given
		t.Setenv("BUDGET_DB_HOST", "from-env")
		t.Setenv("BUDGET_BUDGET_DEFAULTCURRENCY", "PLN")

		// when
		app, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.NoError(t, err)
		assert.Equal(t, "from-env", app.Database.Host)
		assert.Equal(t, "PLN", app.Budget.DefaultCurrency)
	})
}

func TestBudget_Tolerance(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(Budget{SyncTolerance: "abc"}.Tolerance()))
	assert.True(t, decimal.RequireFromString("0.5").Equal(Budget{SyncTolerance: "0.5"}.Tolerance()))
}
