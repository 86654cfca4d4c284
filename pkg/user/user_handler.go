package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klokku/budgetwise/internal/rest"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Uid         string      `json:"uid"`
	Username    string      `json:"username" validate:"notblank"`
	DisplayName string      `json:"displayName"`
	Settings    SettingsDTO `json:"settings"`
}

type SettingsDTO struct {
	Timezone           string          `json:"timezone"`
	Currency           string          `json:"currency" validate:"omitempty,len=3,alpha"`
	FixedLifestyleMode bool            `json:"fixedLifestyleMode"`
	FixedNeedsAmount   decimal.Decimal `json:"fixedNeedsAmount"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CreateUser godoc
// @Summary Create a new user
// @Description Register a new user in the system
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/user [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating user")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if err := rest.ValidateStruct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
		return
	}

	createdUser, err := h.userService.CreateUser(r.Context(), dtoToUser(dto))
	if err != nil {
		if errors.Is(err, ErrUserDataInvalid) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Tracef("Created user: %+v", createdUser)

	rest.WriteJSON(w, http.StatusCreated, userToDTO(createdUser))
}

// CurrentUser godoc
// @Summary Get current user
// @Description Retrieve the currently authenticated user's information
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 404 {string} string "User Not Found"
// @Router /api/user/current [get]
// @Security XUserId
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(currentUser))
}

// UpdateSettings godoc
// @Summary Update settings of the current user
// @Description Changes the display currency and the fixed lifestyle mode
// @Tags User
// @Accept json
// @Produce json
// @Param settings body SettingsDTO true "Settings"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/user/current/settings [put]
// @Security XUserId
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var dto SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if err := rest.ValidateStruct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid settings", err.Error())
		return
	}

	updated, err := h.userService.UpdateSettings(r.Context(), dtoToSettings(dto))
	if err != nil {
		switch {
		case errors.Is(err, ErrUserDataInvalid):
			rest.WriteError(w, http.StatusBadRequest, "Invalid settings", err.Error())
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNoUser):
			w.WriteHeader(http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(updated))
}

func userToDTO(user User) UserDTO {
	return UserDTO{
		Uid:         user.Uid,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Settings: SettingsDTO{
			Timezone:           user.Settings.Timezone,
			Currency:           user.Settings.Currency,
			FixedLifestyleMode: user.Settings.FixedLifestyleMode,
			FixedNeedsAmount:   user.Settings.FixedNeedsAmount,
		},
	}
}

func dtoToUser(dto UserDTO) User {
	return User{
		Uid:         dto.Uid,
		Username:    dto.Username,
		DisplayName: dto.DisplayName,
		Settings:    dtoToSettings(dto.Settings),
	}
}

func dtoToSettings(dto SettingsDTO) Settings {
	return Settings{
		Timezone:           dto.Timezone,
		Currency:           dto.Currency,
		FixedLifestyleMode: dto.FixedLifestyleMode,
		FixedNeedsAmount:   dto.FixedNeedsAmount,
	}
}
