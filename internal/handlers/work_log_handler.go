package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/middleware"
	"worklog-backend/internal/models"
	"worklog-backend/internal/services"
	"worklog-backend/internal/timeutil"
	"worklog-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type WorkLogHandler struct {
	Service *services.WorkLogService
}

func NewWorkLogHandler(service *services.WorkLogService) *WorkLogHandler {
	return &WorkLogHandler{Service: service}
}

func actorFromRequest(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return actor, ok
}

func workLogID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, apperr.Validation("invalid work log ID")
	}
	return id, nil
}

// Create starts a new draft work log
func (h *WorkLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var input models.WorkLogInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.Error(w, apperr.Validation("invalid request body"))
		return
	}

	wl, err := h.Service.Create(r.Context(), actor, &input)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, wl)
}

// List returns work logs matching the query filters. Team leaders only
// ever see their own logs here.
func (h *WorkLogHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	filter, err := parseLogFilter(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	logs, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, logs)
}

func parseLogFilter(r *http.Request) (models.LogFilter, error) {
	var filter models.LogFilter
	q := r.URL.Query()

	if v := q.Get("start_date"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			return filter, apperr.Validation("start_date must be YYYY-MM-DD")
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			return filter, apperr.Validation("end_date must be YYYY-MM-DD")
		}
		filter.EndDate = &t
	}
	if v := q.Get("project_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return filter, apperr.Validation("project_id must be a number")
		}
		filter.ProjectID = &id
	}
	if v := q.Get("status"); v != "" {
		status := models.LogStatus(v)
		switch status {
		case models.StatusDraft, models.StatusSubmitted, models.StatusApproved:
			filter.Status = &status
		default:
			return filter, apperr.Validation("status must be draft, submitted or approved")
		}
	}
	if v := q.Get("team_leader_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return filter, apperr.Validation("team_leader_id must be a number")
		}
		filter.TeamLeaderID = &id
	}
	filter.Search = q.Get("search")

	return filter, nil
}

// Get returns one work log
func (h *WorkLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := workLogID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	wl, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, wl)
}

// Update replaces the editable fields of a draft
func (h *WorkLogHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := workLogID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	var input models.WorkLogInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.Error(w, apperr.Validation("invalid request body"))
		return
	}

	wl, err := h.Service.Update(r.Context(), actor, id, &input)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, wl)
}

// Delete removes a draft
func (h *WorkLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := workLogID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "work log deleted"})
}

// Submit freezes a draft and notifies all managers
func (h *WorkLogHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := workLogID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	wl, err := h.Service.Submit(r.Context(), actor, id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, wl)
}

// Approve finalizes a submitted log and notifies its owner
func (h *WorkLogHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := workLogID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	wl, err := h.Service.Approve(r.Context(), actor, id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, wl)
}
