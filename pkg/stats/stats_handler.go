package stats

import (
	"net/http"

	"github.com/klokku/budgetwise/internal/rest"
	"github.com/klokku/budgetwise/internal/utils"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/user"
	"github.com/shopspring/decimal"
)

type SavingsProgressDTO struct {
	Target      decimal.Decimal `json:"target"`
	Actual      decimal.Decimal `json:"actual"`
	Shortfall   decimal.Decimal `json:"shortfall"`
	Surplus     decimal.Decimal `json:"surplus"`
	StatusLabel string          `json:"statusLabel"`
}

type AllocationStatsDTO struct {
	CategoryId   int             `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Allocated    decimal.Decimal `json:"allocated"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	IsOver       bool            `json:"isOver"`
}

type BudgetStatsDTO struct {
	BudgetId         int                  `json:"budgetId"`
	Name             string               `json:"name"`
	Kind             string               `json:"kind"`
	Priority         string               `json:"priority,omitempty"`
	Allocated        decimal.Decimal      `json:"allocated"`
	PaidAmount       decimal.Decimal      `json:"paidAmount"`
	UnpaidAmount     decimal.Decimal      `json:"unpaidAmount"`
	Remaining        decimal.Decimal      `json:"remaining"`
	IsOver           bool                 `json:"isOver"`
	PercentageUsed   decimal.Decimal      `json:"percentageUsed"`
	DisplayRemaining decimal.Decimal      `json:"displayRemaining"`
	StatusLabel      string               `json:"statusLabel"`
	Savings          *SavingsProgressDTO  `json:"savings,omitempty"`
	Allocations      []AllocationStatsDTO `json:"allocations,omitempty"`
}

type PriorityTotalsDTO struct {
	Priority        string          `json:"priority"`
	Allocated       decimal.Decimal `json:"allocated"`
	Paid            decimal.Decimal `json:"paid"`
	Unpaid          decimal.Decimal `json:"unpaid"`
	Total           decimal.Decimal `json:"total"`
	PercentOfIncome decimal.Decimal `json:"percentOfIncome"`
}

type MonthStatsDTO struct {
	Month         string              `json:"month"`
	Income        decimal.Decimal     `json:"income"`
	SystemBudgets []BudgetStatsDTO    `json:"systemBudgets"`
	CustomBudgets []BudgetStatsDTO    `json:"customBudgets"`
	Priorities    []PriorityTotalsDTO `json:"priorities"`
	Savings       *SavingsProgressDTO `json:"savings,omitempty"`
}

type StatsHandler struct {
	statsService     StatsService
	csvStatsRenderer StatsRenderer
	clock            utils.Clock
}

func NewStatsHandler(statsService StatsService, csvStatsRenderer StatsRenderer, clock utils.Clock) *StatsHandler {
	return &StatsHandler{statsService, csvStatsRenderer, clock}
}

// GetMonthStats godoc
// @Summary Budget statistics of a month
// @Description Returns JSON, or CSV when the Accept header is text/csv
// @Tags Stats
// @Produce json,text/csv
// @Param month query string false "Month in YYYY-MM format, defaults to the current month"
// @Success 200 {object} MonthStatsDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid month"
// @Router /api/stats/monthly [get]
// @Security XUserId
func (handler *StatsHandler) GetMonthStats(w http.ResponseWriter, r *http.Request) {
	month := utils.CurrentMonth(handler.clock, user.CurrentSettings(r.Context()).Timezone)
	if value := r.URL.Query().Get("month"); value != "" {
		parsed, err := period.MonthFromString(value)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid month format", "month must be in YYYY-MM format")
			return
		}
		month = parsed
	}
	stats, err := handler.statsService.GetMonthStats(r.Context(), month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.csvStatsRenderer.RenderStats(stats)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, MonthStatsToDTO(stats))
}

func MonthStatsToDTO(stats MonthStats) MonthStatsDTO {
	priorities := make([]PriorityTotalsDTO, 0, len(stats.Priorities))
	for _, p := range stats.Priorities {
		priorities = append(priorities, PriorityTotalsDTO{
			Priority:        string(p.Priority),
			Allocated:       p.Allocated,
			Paid:            p.Paid,
			Unpaid:          p.Unpaid,
			Total:           p.Total,
			PercentOfIncome: p.PercentOfIncome,
		})
	}
	return MonthStatsDTO{
		Month:         stats.Month.String(),
		Income:        stats.Income,
		SystemBudgets: BudgetStatsToDTO(stats.SystemBudgets),
		CustomBudgets: BudgetStatsToDTO(stats.CustomBudgets),
		Priorities:    priorities,
		Savings:       SavingsProgressToDTO(stats.Savings),
	}
}

func BudgetStatsToDTO(stats []BudgetStats) []BudgetStatsDTO {
	dtos := make([]BudgetStatsDTO, 0, len(stats))
	for _, s := range stats {
		allocations := make([]AllocationStatsDTO, 0, len(s.Allocations))
		for _, a := range s.Allocations {
			allocations = append(allocations, AllocationStatsDTO(a))
		}
		dtos = append(dtos, BudgetStatsDTO{
			BudgetId:         s.BudgetId,
			Name:             s.Name,
			Kind:             string(s.Kind),
			Priority:         string(s.Priority),
			Allocated:        s.Allocated,
			PaidAmount:       s.PaidAmount,
			UnpaidAmount:     s.UnpaidAmount,
			Remaining:        s.Remaining,
			IsOver:           s.IsOver,
			PercentageUsed:   s.PercentageUsed,
			DisplayRemaining: s.DisplayRemaining,
			StatusLabel:      s.StatusLabel,
			Savings:          SavingsProgressToDTO(s.Savings),
			Allocations:      allocations,
		})
	}
	return dtos
}

func SavingsProgressToDTO(progress *SavingsProgress) *SavingsProgressDTO {
	if progress == nil {
		return nil
	}
	dto := SavingsProgressDTO(*progress)
	return &dto
}
