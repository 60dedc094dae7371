package handlers

import (
	"encoding/json"
	"net/http"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"
	"worklog-backend/internal/services"
	"worklog-backend/pkg/utils"
)

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

// CreateProject adds a construction site (managers only, via route guard)
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, apperr.Validation("invalid request body"))
		return
	}

	project, err := h.Service.CreateProject(r.Context(), &req)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, project)
}

// ListProjects returns all sites for the form and filter dropdowns
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Service.ListProjects(r.Context())
	if err != nil {
		utils.Error(w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	utils.JSON(w, http.StatusOK, projects)
}

// CreateEmployee adds a site worker to the crew picker (managers only)
func (h *ProjectHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, apperr.Validation("invalid request body"))
		return
	}

	employee, err := h.Service.CreateEmployee(r.Context(), &req)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, employee)
}

// ListEmployees returns the active crew
func (h *ProjectHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		utils.Error(w, err)
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	utils.JSON(w, http.StatusOK, employees)
}
