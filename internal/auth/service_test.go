package auth

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Mbarathm345672005/docuflow/internal/models"
	"github.com/Mbarathm345672005/docuflow/internal/repository"
	"github.com/Mbarathm345672005/docuflow/internal/workflow"
)

const testJWTSecret = "test-secret"

func newTestService(t *testing.T) (*Service, *repository.AdminRepository) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// In-memory sqlite is per-connection; keep the pool at one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_initial_schema.sql"))
	if err != nil {
		t.Fatalf("failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	logger := zap.NewNop()
	users := repository.NewUserRepository(db, logger)
	admins := repository.NewAdminRepository(db, logger)
	return NewService(users, admins, testJWTSecret, logger), admins
}

func validSignup() SignupRequest {
	return SignupRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "correct-horse",
		Phone:     "555-0100",
	}
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Signup(validSignup())
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if user.Role != models.RoleUploader {
		t.Errorf("Signup() default role = %q, want uploader", user.Role)
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("Signup() stored the password in plaintext")
	}

	session, err := svc.Login("alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if session.Username != "alice" || session.Role != models.RoleUploader {
		t.Errorf("Login() session = %+v", session)
	}
	if session.Token == "" {
		t.Fatal("Login() issued no token")
	}

	claims, err := ValidateToken(testJWTSecret, session.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Username != "alice" || claims.Role != models.RoleUploader {
		t.Errorf("ValidateToken() claims = %+v", claims)
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name   string
		mutate func(*SignupRequest)
	}{
		{"short username", func(r *SignupRequest) { r.Username = "ab" }},
		{"bad email", func(r *SignupRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *SignupRequest) { r.Password = "short" }},
		{"unknown role", func(r *SignupRequest) { r.Role = "overlord" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSignup()
			tc.mutate(&req)
			if _, err := svc.Signup(req); !errors.Is(err, workflow.ErrValidation) {
				t.Errorf("Signup() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Signup(validSignup()); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	dup := validSignup()
	dup.Email = "other@example.com"
	if _, err := svc.Signup(dup); !errors.Is(err, workflow.ErrConflict) {
		t.Errorf("Signup() duplicate username error = %v, want ErrConflict", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Signup(validSignup()); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if _, err := svc.Login("alice", "wrong-password"); !errors.Is(err, workflow.ErrAuth) {
		t.Errorf("Login(wrong password) error = %v, want ErrAuth", err)
	}
	if _, err := svc.Login("nobody", "correct-horse"); !errors.Is(err, workflow.ErrAuth) {
		t.Errorf("Login(unknown user) error = %v, want ErrAuth", err)
	}
}

func TestAdminLogin(t *testing.T) {
	svc, admins := newTestService(t)

	hash, err := HashPassword("admin-secret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := admins.Seed("root", hash); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	session, err := svc.AdminLogin("root", "admin-secret")
	if err != nil {
		t.Fatalf("AdminLogin() error = %v", err)
	}
	if session.Role != models.RoleAdmin {
		t.Errorf("AdminLogin() role = %q, want admin", session.Role)
	}

	if _, err := svc.AdminLogin("root", "wrong"); !errors.Is(err, workflow.ErrAuth) {
		t.Errorf("AdminLogin(wrong password) error = %v, want ErrAuth", err)
	}
	if _, err := svc.AdminLogin("nobody", "admin-secret"); !errors.Is(err, workflow.ErrAuth) {
		t.Errorf("AdminLogin(unknown admin) error = %v, want ErrAuth", err)
	}
}

func TestResetPassword(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Signup(validSignup()); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if err := svc.ResetPassword("alice", "alice@example.com", "new-password-1"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if _, err := svc.Login("alice", "new-password-1"); err != nil {
		t.Errorf("Login() after reset error = %v", err)
	}
	if _, err := svc.Login("alice", "correct-horse"); !errors.Is(err, workflow.ErrAuth) {
		t.Errorf("Login() with old password error = %v, want ErrAuth", err)
	}

	err := svc.ResetPassword("alice", "wrong@example.com", "new-password-2")
	if !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("ResetPassword(mismatched email) error = %v, want ErrNotFound", err)
	}
	if err := svc.ResetPassword("alice", "alice@example.com", "short"); !errors.Is(err, workflow.ErrValidation) {
		t.Errorf("ResetPassword(weak password) error = %v, want ErrValidation", err)
	}
}
