package services

import (
	"context"
	"encoding/json"
	"time"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/cache"
	"worklog-backend/internal/models"
)

// ProjectService manages the reference data behind the log form: the
// projects a log is written against and the employees selectable on it.
type ProjectService struct {
	Projects  ProjectStore
	Employees EmployeeStore
}

func NewProjectService(projects ProjectStore, employees EmployeeStore) *ProjectService {
	return &ProjectService{Projects: projects, Employees: employees}
}

// CreateProject adds a site. Managers only, enforced at the route.
func (s *ProjectService) CreateProject(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	if req.Name == "" {
		return nil, apperr.Validation("project name is required")
	}

	project := &models.Project{Name: req.Name, Address: req.Address}
	if err := s.Projects.Create(ctx, project); err != nil {
		return nil, err
	}

	cache.InvalidateProjectCaches(ctx)
	return project, nil
}

// ListProjects returns all sites, cached since the dropdown hits this on
// every page load.
func (s *ProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	if data, ok := cache.GetCached(ctx, cache.ProjectListKey); ok {
		var projects []models.Project
		if err := json.Unmarshal(data, &projects); err == nil {
			return projects, nil
		}
	}

	projects, err := s.Projects.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(projects); err == nil {
		cache.SetCached(ctx, cache.ProjectListKey, data, 10*time.Minute)
	}
	return projects, nil
}

// CreateEmployee adds a site worker to the crew picker. Managers only.
func (s *ProjectService) CreateEmployee(ctx context.Context, req *models.CreateEmployeeRequest) (*models.Employee, error) {
	if req.FullName == "" {
		return nil, apperr.Validation("employee name is required")
	}

	employee := &models.Employee{FullName: req.FullName, Trade: req.Trade}
	if err := s.Employees.Create(ctx, employee); err != nil {
		return nil, err
	}

	cache.InvalidateProjectCaches(ctx)
	return employee, nil
}

// ListEmployees returns the active crew, cached like the project list.
func (s *ProjectService) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	if data, ok := cache.GetCached(ctx, cache.EmployeeListKey); ok {
		var employees []models.Employee
		if err := json.Unmarshal(data, &employees); err == nil {
			return employees, nil
		}
	}

	employees, err := s.Employees.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(employees); err == nil {
		cache.SetCached(ctx, cache.EmployeeListKey, data, 10*time.Minute)
	}
	return employees, nil
}
