package repositories

import (
	"context"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EmployeeRepository struct {
	DB *pgxpool.Pool
}

func NewEmployeeRepository(db *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	query := `
		INSERT INTO employees (full_name, trade, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING id, is_active, created_at
	`

	err := r.DB.QueryRow(ctx, query, employee.FullName, employee.Trade).
		Scan(&employee.ID, &employee.IsActive, &employee.CreatedAt)
	if err != nil {
		return apperr.Storage(err, "create employee")
	}
	return nil
}

// List retrieves active employees for the crew picker on the log form.
func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	query := `
		SELECT id, full_name, trade, is_active, created_at
		FROM employees
		WHERE is_active = TRUE
		ORDER BY full_name ASC
	`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, apperr.Storage(err, "list employees")
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.FullName, &e.Trade, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, apperr.Storage(err, "scan employee")
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err, "list employees")
	}
	return employees, nil
}
