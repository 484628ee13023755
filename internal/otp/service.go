package otp

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mbarathm345672005/docuflow/internal/notify"
	"github.com/Mbarathm345672005/docuflow/internal/repository"
	"go.uber.org/zap"
)

// Errors surfaced to the handler layer
var (
	// ErrMismatch is returned when the supplied username does not own
	// the supplied email address.
	ErrMismatch = errors.New("username and email do not match")

	// ErrInvalidCode is returned when verification fails for any reason:
	// unknown email, wrong code, or an expired entry.
	ErrInvalidCode = errors.New("invalid or expired OTP")
)

// Service issues and verifies one-time passcodes. Codes are dispatched
// synchronously so a relay failure is visible to the requester.
type Service struct {
	store    *Store
	users    *repository.UserRepository
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService creates a new OTP service
func NewService(store *Store, users *repository.UserRepository, notifier notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// Request issues a code for email and dispatches it. When username is
// non-empty it must resolve to a user owning that email address.
func (s *Service) Request(ctx context.Context, email, username string) error {
	if username != "" {
		user, err := s.users.GetByUsername(username)
		if err != nil {
			return err
		}
		if user == nil || user.Email != email {
			return ErrMismatch
		}
	}

	code, err := s.store.Issue(email)
	if err != nil {
		return err
	}

	ttlMinutes := int(s.store.TTL().Minutes())
	if err := s.notifier.Send(ctx, notify.OTPCode(email, code, ttlMinutes)); err != nil {
		s.logger.Error("Failed to dispatch OTP", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("failed to dispatch OTP: %w", err)
	}

	s.logger.Info("OTP dispatched", zap.String("email", email))
	return nil
}

// Verify consumes the code for email; single-use by construction
func (s *Service) Verify(email, candidate string) error {
	if !s.store.Verify(email, candidate) {
		return ErrInvalidCode
	}
	return nil
}
