package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"worklog-backend/internal/handlers"
	"worklog-backend/internal/middleware"
	"worklog-backend/internal/models"
	"worklog-backend/internal/services"
	"worklog-backend/internal/services/servicetest"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *mux.Router
	stores *servicetest.Stores
	logs   *services.WorkLogService

	leader      models.Actor
	otherLeader models.Actor
	manager     models.Actor
	projectID   int
}

// newTestEnv mounts the handlers on the production routes. Identity is
// injected per request instead of going through the JWT middleware.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	stores := servicetest.New()

	seedUser := func(name, email string, role models.Role) models.Actor {
		u := &models.User{FullName: name, Email: email, Role: role}
		require.NoError(t, stores.Users.Create(ctx, u))
		return models.Actor{ID: u.ID, Role: role}
	}

	env := &testEnv{
		stores:      stores,
		leader:      seedUser("Tom Mason", "tom@site.test", models.RoleTeamLeader),
		otherLeader: seedUser("Ana Ruiz", "ana@site.test", models.RoleTeamLeader),
		manager:     seedUser("Dana Webb", "dana@site.test", models.RoleManager),
	}

	project := &models.Project{Name: "Riverside Towers", Address: "12 Quay Street"}
	require.NoError(t, stores.Projects.Create(ctx, project))
	env.projectID = project.ID

	workLogService := services.NewWorkLogService(stores.Logs, stores.Users, stores.Projects)
	env.logs = workLogService
	notificationService := services.NewNotificationService(stores.Notifications)
	workLogHandler := handlers.NewWorkLogHandler(workLogService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	// No object store in tests; upload routes exercise the precondition
	// and lookup paths.
	uploadHandler := handlers.NewUploadHandler(workLogService, nil)

	r := mux.NewRouter()
	r.HandleFunc("/api/work-logs", workLogHandler.List).Methods("GET")
	r.HandleFunc("/api/work-logs", workLogHandler.Create).Methods("POST")
	r.HandleFunc("/api/work-logs/{id}", workLogHandler.Get).Methods("GET")
	r.HandleFunc("/api/work-logs/{id}", workLogHandler.Update).Methods("PUT")
	r.HandleFunc("/api/work-logs/{id}", workLogHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/work-logs/{id}/submit", workLogHandler.Submit).Methods("PUT")
	r.HandleFunc("/api/work-logs/{id}/approve", workLogHandler.Approve).Methods("PUT")
	r.HandleFunc("/api/work-logs/{id}/photos", uploadHandler.UploadPhoto).Methods("POST")
	r.HandleFunc("/api/work-logs/{id}/documents", uploadHandler.UploadDocument).Methods("POST")
	r.HandleFunc("/api/work-logs/{id}/attachments", uploadHandler.Download).Methods("GET")
	r.HandleFunc("/api/notifications", notificationHandler.List).Methods("GET")
	r.HandleFunc("/api/notifications/unread-count", notificationHandler.UnreadCount).Methods("GET")
	r.HandleFunc("/api/notifications/read-all", notificationHandler.MarkAllRead).Methods("PATCH")
	r.HandleFunc("/api/notifications/{id}/read", notificationHandler.MarkRead).Methods("PATCH")
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, actor models.Actor, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.ContextWithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func validPayload(projectID int) map[string]interface{} {
	return map[string]interface{}{
		"date":             "2026-03-02",
		"project_id":       projectID,
		"start_time":       "07:30",
		"end_time":         "16:00",
		"work_description": "Poured the slab for level 2",
	}
}

func decodeWorkLog(t *testing.T, rec *httptest.ResponseRecorder) models.WorkLog {
	t.Helper()
	var wl models.WorkLog
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&wl))
	return wl
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCreateAndGetWorkLogHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, env.leader, http.MethodPost, "/api/work-logs", validPayload(env.projectID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	wl := decodeWorkLog(t, rec)
	assert.Equal(t, models.StatusDraft, wl.Status)
	assert.Equal(t, env.leader.ID, wl.TeamLeaderID)

	rec = env.do(t, env.leader, http.MethodGet, fmt.Sprintf("/api/work-logs/%d", wl.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Another team leader cannot read it.
	rec = env.do(t, env.otherLeader, http.MethodGet, fmt.Sprintf("/api/work-logs/%d", wl.ID), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "authorization", decodeError(t, rec)["kind"])
}

func TestCreateWorkLogBadRequestHTTP(t *testing.T) {
	env := newTestEnv(t)

	payload := validPayload(env.projectID)
	payload["date"] = ""
	rec := env.do(t, env.leader, http.MethodPost, "/api/work-logs", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "validation", body["kind"])
	assert.Contains(t, body["error"], "date")
}

func TestLifecycleHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, env.leader, http.MethodPost, "/api/work-logs", validPayload(env.projectID))
	require.Equal(t, http.StatusCreated, rec.Code)
	wl := decodeWorkLog(t, rec)

	rec = env.do(t, env.leader, http.MethodPut, fmt.Sprintf("/api/work-logs/%d/submit", wl.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.StatusSubmitted, decodeWorkLog(t, rec).Status)

	// Double submit loses the compare-and-swap.
	rec = env.do(t, env.leader, http.MethodPut, fmt.Sprintf("/api/work-logs/%d/submit", wl.ID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_state", decodeError(t, rec)["kind"])

	// Editing a submitted log is rejected.
	rec = env.do(t, env.leader, http.MethodPut, fmt.Sprintf("/api/work-logs/%d", wl.ID), validPayload(env.projectID))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, env.manager, http.MethodPut, fmt.Sprintf("/api/work-logs/%d/approve", wl.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decodeWorkLog(t, rec)
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedByUserID)
	assert.Equal(t, env.manager.ID, *approved.ApprovedByUserID)

	rec = env.do(t, env.manager, http.MethodPut, fmt.Sprintf("/api/work-logs/%d/approve", wl.ID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestWorkLogNotFoundHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, env.leader, http.MethodGet, "/api/work-logs/4242", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec)["kind"])

	rec = env.do(t, env.leader, http.MethodGet, "/api/work-logs/not-a-number", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFiltersHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, env.leader, http.MethodPost, "/api/work-logs", validPayload(env.projectID))
	require.Equal(t, http.StatusCreated, rec.Code)
	wl := decodeWorkLog(t, rec)
	rec = env.do(t, env.leader, http.MethodPut, fmt.Sprintf("/api/work-logs/%d/submit", wl.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, env.leader, http.MethodPost, "/api/work-logs", validPayload(env.projectID))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, env.manager, http.MethodGet, "/api/work-logs?status=submitted", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []models.WorkLog
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&logs))
	require.Len(t, logs, 1)
	assert.Equal(t, wl.ID, logs[0].ID)

	rec = env.do(t, env.manager, http.MethodGet, "/api/work-logs?status=bogus", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, env.manager, http.MethodGet, "/api/work-logs?start_date=2026-13-01", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationEndpointsHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, env.leader, http.MethodPost, "/api/work-logs", validPayload(env.projectID))
	require.Equal(t, http.StatusCreated, rec.Code)
	wl := decodeWorkLog(t, rec)
	rec = env.do(t, env.leader, http.MethodPut, fmt.Sprintf("/api/work-logs/%d/submit", wl.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, env.manager, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notifications []models.Notification
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&notifications))
	require.Len(t, notifications, 1)
	assert.Equal(t, models.EventLogSubmitted, notifications[0].Event)

	rec = env.do(t, env.manager, http.MethodGet, "/api/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var count map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&count))
	assert.Equal(t, 1, count["unread"])

	rec = env.do(t, env.manager, http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", notifications[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Not the recipient.
	rec = env.do(t, env.leader, http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", notifications[0].ID), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, env.manager, http.MethodPatch, "/api/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var marked map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&marked))
	assert.Equal(t, 0, marked["marked_read"])
}
