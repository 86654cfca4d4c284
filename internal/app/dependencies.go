package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/budgetwise/internal/config"
	"github.com/klokku/budgetwise/internal/database"
	"github.com/klokku/budgetwise/internal/event_bus"
	"github.com/klokku/budgetwise/internal/utils"
	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/calculation"
	"github.com/klokku/budgetwise/pkg/category"
	"github.com/klokku/budgetwise/pkg/currency"
	"github.com/klokku/budgetwise/pkg/dashboard"
	"github.com/klokku/budgetwise/pkg/stats"
	"github.com/klokku/budgetwise/pkg/transaction"
	"github.com/klokku/budgetwise/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	UserService user.Service
	UserHandler *user.Handler

	CategoryService *category.ServiceImpl
	CategoryHandler *category.Handler

	BudgetRepo       budget.Repository
	BudgetService    *budget.ServiceImpl
	BudgetHandler    *budget.Handler
	SystemBudgetSync *budget.SystemBudgetSync

	TransactionService *transaction.ServiceImpl
	TransactionHandler *transaction.Handler

	StatsService     *stats.StatsServiceImpl
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	DashboardService *dashboard.ServiceImpl
	DashboardHandler *dashboard.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.CategoryService = category.NewService(category.NewRepository(db))
	deps.CategoryHandler = category.NewHandler(deps.CategoryService)

	deps.BudgetRepo = budget.NewRepository(db)
	deps.BudgetService = budget.NewService(deps.BudgetRepo, deps.EventBus, database.NewTransactor(db))
	deps.BudgetHandler = budget.NewHandler(deps.BudgetService)
	deps.SystemBudgetSync = budget.NewSystemBudgetSync(deps.BudgetRepo, cfg.Budget.Tolerance())

	deps.TransactionService = transaction.NewService(
		transaction.NewRepository(db),
		deps.BudgetService,
		calculation.MigrateOnPaidDateChange,
		deps.EventBus,
	)
	deps.TransactionHandler = transaction.NewHandler(deps.TransactionService)

	deps.StatsService = stats.NewStatsServiceImpl(deps.TransactionService, deps.CategoryService, deps.BudgetService)
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer, deps.Clock)

	deps.DashboardService = dashboard.NewService(
		deps.TransactionService,
		deps.CategoryService,
		deps.BudgetService,
		deps.SystemBudgetSync,
		exchangeRates(cfg.ExchangeRates),
		cfg.Budget.DefaultCurrency,
	)
	deps.DashboardHandler = dashboard.NewHandler(deps.DashboardService, deps.Clock)

	return deps
}

func exchangeRates(configured []config.ExchangeRate) currency.RateTable {
	rates := make([]currency.ExchangeRate, 0, len(configured))
	for _, r := range configured {
		rate, err := decimal.NewFromString(r.Rate)
		if err != nil {
			log.Warnf("ignoring exchange rate %s to %s: %v", r.From, r.To, err)
			continue
		}
		rates = append(rates, currency.ExchangeRate{FromCurrency: r.From, ToCurrency: r.To, Rate: rate})
	}
	return currency.NewRateTable(rates)
}
