package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/klokku/budgetwise/internal/rest"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type GoalDTO struct {
	Priority         string          `json:"priority" validate:"required,oneof=needs wants savings"`
	TargetPercentage decimal.Decimal `json:"targetPercentage"`
	IsAbsolute       bool            `json:"isAbsolute"`
	AbsoluteAmount   decimal.Decimal `json:"absoluteAmount"`
}

type UpdateGoalsRequest struct {
	Goals  []GoalDTO `json:"goals" validate:"omitempty,dive"`
	Split1 *int      `json:"split1" validate:"required_without=Goals"`
	Split2 *int      `json:"split2" validate:"required_with=Split1"`
}

type SystemBudgetDTO struct {
	Id               int             `json:"id"`
	Name             string          `json:"name"`
	BudgetAmount     decimal.Decimal `json:"budgetAmount"`
	StartDate        string          `json:"startDate"`
	EndDate          string          `json:"endDate"`
	SystemBudgetType string          `json:"systemBudgetType"`
}

type AllocationDTO struct {
	Id              int             `json:"id,omitempty"`
	CategoryId      int             `json:"categoryId" validate:"required"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
}

type CustomBudgetDTO struct {
	Id              int             `json:"id,omitempty"`
	Kind            string          `json:"kind" validate:"omitempty,oneof=custom mini"`
	Name            string          `json:"name" validate:"required,notblank"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	StartDate       string          `json:"startDate,omitempty" validate:"omitempty,isodate"`
	EndDate         string          `json:"endDate,omitempty" validate:"omitempty,isodate"`
	Status          string          `json:"status,omitempty" validate:"omitempty,oneof=planned active completed"`
	Allocations     []AllocationDTO `json:"allocations,omitempty" validate:"omitempty,dive"`
}

type StatusUpdateDTO struct {
	Status string `json:"status" validate:"required,oneof=planned active completed"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetGoals godoc
// @Summary Get budget goals
// @Description Needs/wants/savings goals of the current user, defaults to 50/30/20
// @Tags Budget
// @Produce json
// @Success 200 {array} GoalDTO
// @Router /api/budget/goals [get]
// @Security XUserId
func (h *Handler) GetGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.service.GetGoals(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, goalsToDTO(goals))
}

// UpdateGoals godoc
// @Summary Update budget goals
// @Description Accepts either explicit goals or the two split points of the percentage slider
// @Tags Budget
// @Accept json
// @Produce json
// @Param goals body UpdateGoalsRequest true "Goals or split points"
// @Success 200 {array} GoalDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid goals"
// @Router /api/budget/goals [put]
// @Security XUserId
func (h *Handler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	var request UpdateGoalsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := rest.ValidateStruct(request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid goals", err.Error())
		return
	}

	var goals []Goal
	var err error
	if request.Split1 != nil {
		goals, err = h.service.UpdateGoalSplits(r.Context(), *request.Split1, *request.Split2)
	} else {
		goals, err = h.service.UpdateGoals(r.Context(), dtoToGoals(request.Goals))
	}
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid goals", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, goalsToDTO(goals))
}

// GetSystemBudgets godoc
// @Summary Get the system budgets of a month
// @Tags Budget
// @Produce json
// @Param month query string true "Month in YYYY-MM format"
// @Success 200 {array} SystemBudgetDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid month"
// @Router /api/budget/system [get]
// @Security XUserId
func (h *Handler) GetSystemBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := period.MonthFromString(r.URL.Query().Get("month"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid month", "Month must be in YYYY-MM format")
		return
	}
	budgets, err := h.service.GetSystemBudgetsForMonth(r.Context(), month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]SystemBudgetDTO, 0, len(budgets))
	for _, b := range budgets {
		dtos = append(dtos, SystemBudgetToDTO(b))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// GetCustomBudgets godoc
// @Summary Get custom and mini budgets
// @Tags Budget
// @Produce json
// @Success 200 {array} CustomBudgetDTO
// @Router /api/budget/custom [get]
// @Security XUserId
func (h *Handler) GetCustomBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.service.GetCustomBudgets(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]CustomBudgetDTO, 0, len(budgets))
	for _, b := range budgets {
		dtos = append(dtos, CustomBudgetToDTO(b))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateCustomBudget godoc
// @Summary Create a custom or mini budget
// @Tags Budget
// @Accept json
// @Produce json
// @Param budget body CustomBudgetDTO true "Budget"
// @Success 201 {object} CustomBudgetDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid budget"
// @Router /api/budget/custom [post]
// @Security XUserId
func (h *Handler) CreateCustomBudget(w http.ResponseWriter, r *http.Request) {
	var dto CustomBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := rest.ValidateStruct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid budget", err.Error())
		return
	}
	created, err := h.service.CreateCustomBudget(r.Context(), DTOToCustomBudget(dto))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid budget", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusCreated, CustomBudgetToDTO(created))
}

// UpdateCustomBudgetStatus godoc
// @Summary Move a custom or mini budget to another status
// @Tags Budget
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param status body StatusUpdateDTO true "New status"
// @Success 200 {object} CustomBudgetDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid status"
// @Failure 404 {string} string "Budget not found"
// @Failure 409 {object} rest.ErrorResponse "Transition not allowed"
// @Router /api/budget/custom/{budgetId}/status [put]
// @Security XUserId
func (h *Handler) UpdateCustomBudgetStatus(w http.ResponseWriter, r *http.Request) {
	budgetId, err := strconv.Atoi(mux.Vars(r)["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto StatusUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := rest.ValidateStruct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid status", err.Error())
		return
	}

	updated, err := h.service.UpdateCustomBudgetStatus(r.Context(), budgetId, Status(dto.Status))
	switch {
	case errors.Is(err, ErrBudgetNotFound):
		http.Error(w, "Budget not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidStatusTransition):
		rest.WriteError(w, http.StatusConflict, "Transition not allowed", err.Error())
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, CustomBudgetToDTO(updated))
}

// DeleteCustomBudget godoc
// @Summary Delete a custom or mini budget
// @Description Deletes the budget and every transaction assigned to it
// @Tags Budget
// @Param budgetId path int true "Budget ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/custom/{budgetId} [delete]
// @Security XUserId
func (h *Handler) DeleteCustomBudget(w http.ResponseWriter, r *http.Request) {
	budgetId, err := strconv.Atoi(mux.Vars(r)["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	deleted, err := h.service.DeleteCustomBudget(r.Context(), budgetId)
	if errors.Is(err, ErrBudgetNotFound) || (err == nil && !deleted) {
		http.Error(w, "Budget not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Debugf("custom budget %d deleted", budgetId)
	w.WriteHeader(http.StatusNoContent)
}

func goalsToDTO(goals []Goal) []GoalDTO {
	dtos := make([]GoalDTO, 0, len(goals))
	for _, g := range goals {
		dtos = append(dtos, GoalDTO{
			Priority:         string(g.Priority),
			TargetPercentage: g.TargetPercentage,
			IsAbsolute:       g.IsAbsolute,
			AbsoluteAmount:   g.AbsoluteAmount,
		})
	}
	return dtos
}

func dtoToGoals(dtos []GoalDTO) []Goal {
	goals := make([]Goal, 0, len(dtos))
	for _, dto := range dtos {
		goals = append(goals, Goal{
			Priority:         priority.Priority(dto.Priority),
			TargetPercentage: dto.TargetPercentage,
			IsAbsolute:       dto.IsAbsolute,
			AbsoluteAmount:   dto.AbsoluteAmount,
		})
	}
	return goals
}

func SystemBudgetToDTO(b SystemBudget) SystemBudgetDTO {
	return SystemBudgetDTO{
		Id:               b.Id,
		Name:             b.Name,
		BudgetAmount:     b.BudgetAmount,
		StartDate:        period.FormatDate(b.StartDate),
		EndDate:          period.FormatDate(b.EndDate),
		SystemBudgetType: string(b.SystemBudgetType),
	}
}

func CustomBudgetToDTO(b CustomBudget) CustomBudgetDTO {
	allocations := make([]AllocationDTO, 0, len(b.Allocations))
	for _, a := range b.Allocations {
		allocations = append(allocations, AllocationDTO{
			Id:              a.Id,
			CategoryId:      a.CategoryId,
			AllocatedAmount: a.AllocatedAmount,
		})
	}
	return CustomBudgetDTO{
		Id:              b.Id,
		Kind:            string(b.Kind),
		Name:            b.Name,
		AllocatedAmount: b.AllocatedAmount,
		StartDate:       period.FormatDate(b.StartDate),
		EndDate:         period.FormatDate(b.EndDate),
		Status:          string(b.Status),
		Allocations:     allocations,
	}
}

func DTOToCustomBudget(dto CustomBudgetDTO) CustomBudget {
	startDate, _ := period.ParseDate(dto.StartDate)
	endDate, _ := period.ParseDate(dto.EndDate)
	allocations := make([]Allocation, 0, len(dto.Allocations))
	for _, a := range dto.Allocations {
		allocations = append(allocations, Allocation{
			CategoryId:      a.CategoryId,
			AllocatedAmount: a.AllocatedAmount,
		})
	}
	return CustomBudget{
		Id:              dto.Id,
		Kind:            Kind(dto.Kind),
		Name:            dto.Name,
		AllocatedAmount: dto.AllocatedAmount,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          Status(dto.Status),
		Allocations:     allocations,
	}
}
