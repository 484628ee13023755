package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Mbarathm345672005/docuflow/internal/models"
	"go.uber.org/zap"
)

// UserRepository handles user database operations
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// ErrDuplicate is returned by Create when the username or email is taken.
var ErrDuplicate = fmt.Errorf("duplicate user")

// Create inserts a new user. Returns ErrDuplicate on a UNIQUE violation.
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, username, email, password_hash, phone, role)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.Role,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		r.logger.Error("Failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	return nil
}

// GetByUsername retrieves a user by username. Returns (nil, nil) when absent.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getOne("username = ?", username)
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when absent.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getOne("email = ?", email)
}

func (r *UserRepository) getOne(where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, username, email, password_hash, phone, role, created_at
		FROM users
		WHERE ` + where + `
		LIMIT 1
	`
	var user models.User
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.Role,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdatePassword replaces the credential hash for a matching username+email
// pair. Returns the number of rows affected; zero means no such user.
func (r *UserRepository) UpdatePassword(username, email, passwordHash string) (int64, error) {
	result, err := r.db.Exec(
		"UPDATE users SET password_hash = ? WHERE username = ? AND email = ?",
		passwordHash, username, email,
	)
	if err != nil {
		r.logger.Error("Failed to update password",
			zap.String("username", username),
			zap.Error(err))
		return 0, fmt.Errorf("failed to update password: %w", err)
	}
	return result.RowsAffected()
}

// EmailsByRole returns the email addresses of every user holding role.
// Feeds role-wide notification fan-out.
func (r *UserRepository) EmailsByRole(role string) ([]string, error) {
	rows, err := r.db.Query("SELECT email FROM users WHERE role = ?", role)
	if err != nil {
		r.logger.Error("Failed to list emails by role", zap.String("role", role), zap.Error(err))
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
