package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Dashboard
	r.HandleFunc("/api/dashboard", deps.DashboardHandler.GetSummary).Methods("GET")

	// Stats
	r.HandleFunc("/api/stats/monthly", deps.StatsHandler.GetMonthStats).Methods("GET")

	// Budgets
	r.HandleFunc("/api/budget/goals", deps.BudgetHandler.GetGoals).Methods("GET")
	r.HandleFunc("/api/budget/goals", deps.BudgetHandler.UpdateGoals).Methods("PUT")
	r.HandleFunc("/api/budget/system", deps.BudgetHandler.GetSystemBudgets).Methods("GET")
	r.HandleFunc("/api/budget/custom", deps.BudgetHandler.GetCustomBudgets).Methods("GET")
	r.HandleFunc("/api/budget/custom", deps.BudgetHandler.CreateCustomBudget).Methods("POST")
	r.HandleFunc("/api/budget/custom/{budgetId:[0-9]+}", deps.BudgetHandler.DeleteCustomBudget).Methods("DELETE")
	r.HandleFunc("/api/budget/custom/{budgetId:[0-9]+}/status", deps.BudgetHandler.UpdateCustomBudgetStatus).Methods("PUT")

	// Transactions
	r.HandleFunc("/api/transaction", deps.TransactionHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/transaction", deps.TransactionHandler.Create).Methods("POST")
	r.HandleFunc("/api/transaction/{id:[0-9]+}/paid", deps.TransactionHandler.MarkPaid).Methods("PUT")
	r.HandleFunc("/api/transaction/{id:[0-9]+}/paid-date", deps.TransactionHandler.UpdatePaidDate).Methods("PUT")
	r.HandleFunc("/api/transaction/{id:[0-9]+}/paid", deps.TransactionHandler.MarkUnpaid).Methods("DELETE")
	r.HandleFunc("/api/transaction/{id:[0-9]+}/assignment", deps.TransactionHandler.Reassign).Methods("PUT")
	r.HandleFunc("/api/transaction/{id:[0-9]+}", deps.TransactionHandler.Delete).Methods("DELETE")

	// Categories
	r.HandleFunc("/api/category", deps.CategoryHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/category", deps.CategoryHandler.Create).Methods("POST")

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current/settings", deps.UserHandler.UpdateSettings).Methods("PUT")
}
