package identity_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"family-calendar/internal/calendar"
	"family-calendar/internal/identity"
	"family-calendar/internal/logger"
	"family-calendar/internal/models"
	"family-calendar/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	IdentityService *identity.Service
	Logger          *logger.Logger
}

func NewHandler(identityService *identity.Service, log *logger.Logger) *Handler {
	return &Handler{IdentityService: identityService, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.GetUsers)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/current-user", h.GetCurrentUser)
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.IdentityService.Users(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetUsers: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: failed to decode request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if req.UserID == 0 {
		utils.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	user, err := h.IdentityService.Login(w, r, req.UserID)
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.Logger.LogSession("LOGIN", user.Name)
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logged in successfully",
		"user":    user,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.IdentityService.Logout(w, r)
	h.Logger.LogSession("LOGOUT", "-")
	utils.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.IdentityService.CurrentUser(r)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCurrentUser: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// user may be nil; the body is {"user": null} in that case
	utils.WriteJSON(w, http.StatusOK, map[string]*models.User{"user": user})
}
