package dashboard

import (
	"net/http"

	"github.com/klokku/budgetwise/internal/rest"
	"github.com/klokku/budgetwise/internal/utils"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/stats"
	"github.com/klokku/budgetwise/pkg/transaction"
	"github.com/klokku/budgetwise/pkg/user"
	"github.com/shopspring/decimal"
)

type WarningDTO struct {
	Kind     string `json:"kind"`
	BudgetId int    `json:"budgetId,omitempty"`
	Message  string `json:"message"`
}

type CrossPeriodSettlementDTO struct {
	Transaction    transaction.TransactionDTO `json:"transaction"`
	OriginalPeriod string                     `json:"originalPeriod"`
	BucketName     string                     `json:"bucketName"`
}

type SummaryDTO struct {
	Month                  string                     `json:"month"`
	Currency               string                     `json:"currency"`
	MonthlyIncome          decimal.Decimal            `json:"monthlyIncome"`
	MonthlyExpenses        decimal.Decimal            `json:"monthlyExpenses"`
	RemainingBudget        decimal.Decimal            `json:"remainingBudget"`
	Priorities             []stats.PriorityTotalsDTO  `json:"priorities"`
	SystemBudgets          []stats.BudgetStatsDTO     `json:"systemBudgets"`
	CustomBudgets          []stats.BudgetStatsDTO     `json:"customBudgets"`
	Savings                *stats.SavingsProgressDTO  `json:"savings,omitempty"`
	CrossPeriodSettlements []CrossPeriodSettlementDTO `json:"crossPeriodSettlements"`
	Warnings               []WarningDTO               `json:"warnings"`
}

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

// GetSummary godoc
// @Summary Get the dashboard summary of a month
// @Description Syncs the system budgets of the month and returns income, expenses, budget stats and warnings
// @Tags Dashboard
// @Produce json
// @Param month query string false "Month in YYYY-MM format, defaults to the current month"
// @Success 200 {object} SummaryDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/dashboard [get]
// @Security XUserId
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	month := utils.CurrentMonth(h.clock, user.CurrentSettings(r.Context()).Timezone)
	if value := r.URL.Query().Get("month"); value != "" {
		parsed, err := period.MonthFromString(value)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid month", "Month must be in YYYY-MM format")
			return
		}
		month = parsed
	}

	summary, err := h.service.GetSummary(r.Context(), month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, SummaryToDTO(summary))
}

func SummaryToDTO(s Summary) SummaryDTO {
	monthStats := stats.MonthStatsToDTO(stats.MonthStats{
		Month:         s.Month,
		Income:        s.MonthlyIncome,
		SystemBudgets: s.SystemBudgets,
		CustomBudgets: s.CustomBudgets,
		Priorities:    s.Priorities,
		Savings:       s.Savings,
	})

	settlements := make([]CrossPeriodSettlementDTO, 0, len(s.CrossPeriodSettlements))
	for _, settlement := range s.CrossPeriodSettlements {
		settlements = append(settlements, CrossPeriodSettlementDTO{
			Transaction:    transaction.TransactionToDTO(settlement.Transaction),
			OriginalPeriod: settlement.OriginalPeriod,
			BucketName:     settlement.BucketName,
		})
	}
	warnings := make([]WarningDTO, 0, len(s.Warnings))
	for _, warning := range s.Warnings {
		warnings = append(warnings, WarningDTO{
			Kind:     string(warning.Kind),
			BudgetId: warning.BudgetId,
			Message:  warning.Message,
		})
	}

	return SummaryDTO{
		Month:                  s.Month.String(),
		Currency:               s.Currency,
		MonthlyIncome:          s.MonthlyIncome,
		MonthlyExpenses:        s.MonthlyExpenses,
		RemainingBudget:        s.RemainingBudget,
		Priorities:             monthStats.Priorities,
		SystemBudgets:          monthStats.SystemBudgets,
		CustomBudgets:          monthStats.CustomBudgets,
		Savings:                monthStats.Savings,
		CrossPeriodSettlements: settlements,
		Warnings:               warnings,
	}
}
