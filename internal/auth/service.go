package auth

import (
	"errors"
	"fmt"

	"github.com/Mbarathm345672005/docuflow/internal/models"
	"github.com/Mbarathm345672005/docuflow/internal/repository"
	"github.com/Mbarathm345672005/docuflow/internal/workflow"
	"github.com/Mbarathm345672005/docuflow/pkg/utils"
	"go.uber.org/zap"
)

// Service implements signup, login and credential reset on top of the
// user and admin repositories. All credentials are bcrypt-hashed.
type Service struct {
	users     *repository.UserRepository
	admins    *repository.AdminRepository
	jwtSecret string
	logger    *zap.Logger
}

// NewService creates a new auth service
func NewService(users *repository.UserRepository, admins *repository.AdminRepository, jwtSecret string, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		admins:    admins,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// SignupRequest carries a new account registration
type SignupRequest struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Phone     string
	Role      string
}

// Signup registers a new user. Duplicate username or email yields
// ErrConflict; weak input yields ErrValidation.
func (s *Service) Signup(req SignupRequest) (*models.User, error) {
	if err := utils.ValidateUsername(req.Username); err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrValidation, err)
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrValidation, err)
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrValidation, err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleUploader
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", workflow.ErrValidation, role)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         role,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username or email already registered", workflow.ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("username", user.Username),
		zap.String("role", user.Role))
	return user, nil
}

// Session is the result of a successful login
type Session struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

// Login verifies user credentials and issues a session token
func (s *Service) Login(username, password string) (*Session, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", workflow.ErrAuth)
	}

	token, err := GenerateToken(s.jwtSecret, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Username: user.Username, Role: user.Role, Token: token}, nil
}

// AdminLogin verifies an admin account against the admins table. The
// stored hash is bcrypt-compared; there is no plaintext path.
func (s *Service) AdminLogin(username, password string) (*Session, error) {
	admin, err := s.admins.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if admin == nil || !CheckPassword(password, admin.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid admin credentials", workflow.ErrAuth)
	}

	token, err := GenerateToken(s.jwtSecret, admin.Username, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &Session{Username: admin.Username, Role: models.RoleAdmin, Token: token}, nil
}

// ResetPassword replaces the credential for a matching username+email
// pair. No matching user yields ErrNotFound.
func (s *Service) ResetPassword(username, email, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", workflow.ErrValidation, err)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	rows, err := s.users.UpdatePassword(username, email, hash)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: no user with that username and email", workflow.ErrNotFound)
	}

	s.logger.Info("Password reset", zap.String("username", username))
	return nil
}
