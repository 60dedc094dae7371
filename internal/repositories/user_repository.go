package repositories

import (
	"context"
	"errors"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

// Create inserts a new account and fills in the generated fields.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (full_name, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, is_active, created_at, updated_at
	`

	err := r.DB.QueryRow(ctx, query,
		user.FullName, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return apperr.Storage(err, "create user")
	}
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, role, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.FullName, &user.Email, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user %d not found", id)
		}
		return nil, apperr.Storage(err, "get user")
	}
	return user, nil
}

// GetByEmail retrieves a user by email (login lookup)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, role, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}
	err := r.DB.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.FullName, &user.Email, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("no account for %s", email)
		}
		return nil, apperr.Storage(err, "get user by email")
	}
	return user, nil
}

// ListByRole retrieves all active users with the given role, name order.
// Used for manager fan-out on submit and the team leader filter dropdown.
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, role, is_active, created_at, updated_at
		FROM users
		WHERE role = $1 AND is_active = TRUE
		ORDER BY full_name ASC
	`

	rows, err := r.DB.Query(ctx, query, role)
	if err != nil {
		return nil, apperr.Storage(err, "list users by role")
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.FullName, &user.Email, &user.PasswordHash,
			&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, apperr.Storage(err, "scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err, "list users by role")
	}
	return users, nil
}
