package handlers

import (
	"encoding/json"
	"net/http"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"
	"worklog-backend/internal/services"
	"worklog-backend/pkg/utils"
)

type AuthHandler struct {
	Service *services.UserService
}

func NewAuthHandler(service *services.UserService) *AuthHandler {
	return &AuthHandler{Service: service}
}

// Register creates a new account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, apperr.Validation("invalid request body"))
		return
	}

	resp, err := h.Service.Register(r.Context(), &req)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, resp)
}

// Login authenticates and returns a JWT
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, apperr.Validation("invalid request body"))
		return
	}

	resp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		if apperr.IsKind(err, apperr.KindAuthorization) {
			// Credential failures read as 401 to the login form
			utils.JSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// ListTeamLeaders returns the team leader directory for filter dropdowns
func (h *AuthHandler) ListTeamLeaders(w http.ResponseWriter, r *http.Request) {
	leaders, err := h.Service.ListTeamLeaders(r.Context())
	if err != nil {
		utils.Error(w, err)
		return
	}
	if leaders == nil {
		leaders = []models.User{}
	}
	utils.JSON(w, http.StatusOK, leaders)
}
