package repositories

import (
	"context"
	"errors"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectRepository struct {
	DB *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (name, address)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.DB.QueryRow(ctx, query, project.Name, project.Address).
		Scan(&project.ID, &project.CreatedAt)
	if err != nil {
		return apperr.Storage(err, "create project")
	}
	return nil
}

func (r *ProjectRepository) Get(ctx context.Context, id int) (*models.Project, error) {
	query := `SELECT id, name, address, created_at FROM projects WHERE id = $1`

	project := &models.Project{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&project.ID, &project.Name, &project.Address, &project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("project %d not found", id)
		}
		return nil, apperr.Storage(err, "get project")
	}
	return project, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := `SELECT id, name, address, created_at FROM projects ORDER BY name ASC`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, apperr.Storage(err, "list projects")
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.CreatedAt); err != nil {
			return nil, apperr.Storage(err, "scan project")
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err, "list projects")
	}
	return projects, nil
}
