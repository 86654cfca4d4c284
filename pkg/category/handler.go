package category

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klokku/budgetwise/internal/rest"
	"github.com/klokku/budgetwise/pkg/priority"
	log "github.com/sirupsen/logrus"
)

type CategoryDTO struct {
	Id       int    `json:"id"`
	Name     string `json:"name" validate:"notblank"`
	Priority string `json:"priority" validate:"omitempty,oneof=needs wants savings"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAll godoc
// @Summary List categories
// @Description Categories of the current user with their default financial priority
// @Tags Category
// @Produce json
// @Success 200 {array} CategoryDTO
// @Router /api/category [get]
// @Security XUserId
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, categoryToDTO(c))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Create a category
// @Tags Category
// @Accept json
// @Produce json
// @Param category body CategoryDTO true "Category"
// @Success 201 {object} CategoryDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/category [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := rest.ValidateStruct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid category", err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), dtoToCategory(dto))
	if err != nil {
		if errors.Is(err, priority.ErrInvalidPriority) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid category", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Debugf("created category %d", created.Id)
	rest.WriteJSON(w, http.StatusCreated, categoryToDTO(created))
}

func categoryToDTO(c Category) CategoryDTO {
	return CategoryDTO{
		Id:       c.Id,
		Name:     c.Name,
		Priority: string(c.Priority),
		Color:    c.Color,
		Icon:     c.Icon,
	}
}

func dtoToCategory(dto CategoryDTO) Category {
	return Category{
		Id:       dto.Id,
		Name:     dto.Name,
		Priority: priority.Priority(dto.Priority),
		Color:    dto.Color,
		Icon:     dto.Icon,
	}
}
