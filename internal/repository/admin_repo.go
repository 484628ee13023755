package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Mbarathm345672005/docuflow/internal/models"
	"go.uber.org/zap"
)

// AdminRepository handles the admins table. Admin credentials are stored
// bcrypt-hashed; there is no plaintext comparison path.
type AdminRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *sql.DB, logger *zap.Logger) *AdminRepository {
	return &AdminRepository{db: db, logger: logger}
}

// GetByUsername retrieves an admin account. Returns (nil, nil) when absent.
func (r *AdminRepository) GetByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.QueryRow(
		"SELECT id, username, password_hash FROM admins WHERE username = ?",
		username,
	).Scan(&admin.ID, &admin.Username, &admin.PasswordHash)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get admin", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}

// Seed inserts an admin account if the username is not already taken.
// Used at startup to bootstrap the first admin.
func (r *AdminRepository) Seed(username, passwordHash string) error {
	_, err := r.db.Exec(
		"INSERT INTO admins (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil
		}
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	r.logger.Info("Seeded admin account", zap.String("username", username))
	return nil
}
