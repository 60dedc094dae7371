package handlers

import (
	"net/http"
	"strconv"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/services"
	"worklog-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// List returns the caller's notifications; ?unread=true narrows to unread
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := h.Service.List(r.Context(), actor, unreadOnly)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, notifications)
}

// MarkRead marks one notification as read (idempotent)
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, apperr.Validation("invalid notification ID"))
		return
	}

	if err := h.Service.MarkRead(r.Context(), actor, id); err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "notification read"})
}

// MarkAllRead marks every unread notification of the caller
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	affected, err := h.Service.MarkAllRead(r.Context(), actor)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]int{"marked_read": affected})
}

// UnreadCount returns the bell counter
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), actor)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]int{"unread": count})
}
