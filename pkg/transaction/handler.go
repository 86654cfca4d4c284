package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/budgetwise/internal/rest"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type TransactionDTO struct {
	Id                int             `json:"id,omitempty"`
	Title             string          `json:"title" validate:"required,notblank"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type" validate:"required,oneof=income expense"`
	Date              string          `json:"date" validate:"required,isodate"`
	IsPaid            bool            `json:"isPaid"`
	PaidDate          string          `json:"paidDate,omitempty" validate:"omitempty,isodate"`
	CategoryId        *int            `json:"categoryId,omitempty"`
	FinancialPriority string          `json:"financialPriority,omitempty" validate:"omitempty,oneof=needs wants savings"`
	CustomBudgetId    *int            `json:"customBudgetId,omitempty"`
}

type PaymentDTO struct {
	PaidDate string `json:"paidDate" validate:"required,isodate"`
}

type AssignmentDTO struct {
	CategoryId        *int   `json:"categoryId"`
	FinancialPriority string `json:"financialPriority" validate:"omitempty,oneof=needs wants savings"`
	CustomBudgetId    *int   `json:"customBudgetId"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAll godoc
// @Summary List transactions
// @Tags Transaction
// @Produce json
// @Success 200 {array} TransactionDTO
// @Router /api/transaction [get]
// @Security XUserId
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]TransactionDTO, 0, len(transactions))
	for _, t := range transactions {
		dtos = append(dtos, TransactionToDTO(t))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Create a transaction
// @Tags Transaction
// @Accept json
// @Produce json
// @Param transaction body TransactionDTO true "Transaction"
// @Success 201 {object} TransactionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid transaction"
// @Router /api/transaction [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := rest.ValidateStruct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid transaction", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), DTOToTransaction(dto))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid transaction", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusCreated, TransactionToDTO(created))
}

// MarkPaid godoc
// @Summary Mark a transaction paid
// @Description Expenses assigned to a system budget move to the system budget of the payment month
// @Tags Transaction
// @Accept json
// @Produce json
// @Param id path int true "Transaction ID"
// @Param payment body PaymentDTO true "Payment"
// @Success 200 {object} TransactionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid payment"
// @Failure 404 {string} string "Transaction not found"
// @Router /api/transaction/{id}/paid [put]
// @Security XUserId
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.service.MarkPaid)
}

// UpdatePaidDate godoc
// @Summary Change the paid date of a paid transaction
// @Description Expenses assigned to a system budget move to the system budget of the new payment month
// @Tags Transaction
// @Accept json
// @Produce json
// @Param id path int true "Transaction ID"
// @Param payment body PaymentDTO true "Payment"
// @Success 200 {object} TransactionDTO
// @Failure 400 {object} rest.ErrorResponse "Transaction is not paid"
// @Failure 404 {string} string "Transaction not found"
// @Router /api/transaction/{id}/paid-date [put]
// @Security XUserId
func (h *Handler) UpdatePaidDate(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.service.UpdatePaidDate)
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request, settle func(ctx context.Context, id int, paidDate time.Time) (Transaction, error)) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto PaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := rest.ValidateStruct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid payment", err.Error())
		return
	}
	paidDate, _ := period.ParseDate(dto.PaidDate)

	updated, err := settle(r.Context(), id, paidDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, TransactionToDTO(updated))
}

// MarkUnpaid godoc
// @Summary Clear the payment of a transaction
// @Tags Transaction
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionDTO
// @Failure 404 {string} string "Transaction not found"
// @Router /api/transaction/{id}/paid [delete]
// @Security XUserId
func (h *Handler) MarkUnpaid(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.service.MarkUnpaid(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, TransactionToDTO(updated))
}

// Reassign godoc
// @Summary Change category, priority or bucket of a transaction
// @Tags Transaction
// @Accept json
// @Produce json
// @Param id path int true "Transaction ID"
// @Param assignment body AssignmentDTO true "Assignment"
// @Success 200 {object} TransactionDTO
// @Failure 404 {string} string "Transaction not found"
// @Router /api/transaction/{id}/assignment [put]
// @Security XUserId
func (h *Handler) Reassign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto AssignmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := rest.ValidateStruct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid assignment", err.Error())
		return
	}
	updated, err := h.service.Reassign(r.Context(), id, Assignment{
		CategoryId:        dto.CategoryId,
		FinancialPriority: priority.Priority(dto.FinancialPriority),
		CustomBudgetId:    dto.CustomBudgetId,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, TransactionToDTO(updated))
}

// Delete godoc
// @Summary Delete a transaction
// @Tags Transaction
// @Param id path int true "Transaction ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Transaction not found"
// @Router /api/transaction/{id} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		http.Error(w, "Transaction not found", http.StatusNotFound)
	case errors.Is(err, ErrNotPaid), errors.Is(err, ErrPaidWithoutDate), errors.Is(err, priority.ErrInvalidPriority):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		log.Errorf("transaction request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func TransactionToDTO(t Transaction) TransactionDTO {
	return TransactionDTO{
		Id:                t.Id,
		Title:             t.Title,
		Amount:            t.Amount,
		Type:              string(t.Type),
		Date:              period.FormatDate(t.Date),
		IsPaid:            t.IsPaid,
		PaidDate:          period.FormatDate(t.PaidDate),
		CategoryId:        t.CategoryId,
		FinancialPriority: string(t.FinancialPriority),
		CustomBudgetId:    t.CustomBudgetId,
	}
}

func DTOToTransaction(dto TransactionDTO) Transaction {
	date, _ := period.ParseDate(dto.Date)
	paidDate, _ := period.ParseDate(dto.PaidDate)
	return Transaction{
		Id:                dto.Id,
		Title:             dto.Title,
		Amount:            dto.Amount,
		Type:              Type(dto.Type),
		Date:              date,
		IsPaid:            dto.IsPaid,
		PaidDate:          paidDate,
		CategoryId:        dto.CategoryId,
		FinancialPriority: priority.Priority(dto.FinancialPriority),
		CustomBudgetId:    dto.CustomBudgetId,
	}
}
