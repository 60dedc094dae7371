package services

import (
	"context"
	"strings"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/auth"
	"worklog-backend/internal/models"
)

type UserService struct {
	Users      UserStore
	JWTManager *auth.JWTManager
}

func NewUserService(users UserStore, jwtManager *auth.JWTManager) *UserService {
	return &UserService{Users: users, JWTManager: jwtManager}
}

// Register creates a new account and returns a signed token.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if req.FullName == "" {
		return nil, apperr.Validation("full name is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}
	if len(req.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, apperr.Validation("role must be team_leader or manager")
	}

	if existing, err := s.Users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperr.Validation("an account with this email already exists")
	} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Storage(err, "hash password")
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, apperr.Storage(err, "sign token")
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed token. Suspended
// accounts cannot log in.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Authorization("invalid email or password")
		}
		return nil, err
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, apperr.Authorization("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Authorization("account is suspended")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, apperr.Storage(err, "sign token")
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// ListTeamLeaders returns the team leader directory for the manager's
// filter dropdown.
func (s *UserService) ListTeamLeaders(ctx context.Context) ([]models.User, error) {
	return s.Users.ListByRole(ctx, models.RoleTeamLeader)
}
