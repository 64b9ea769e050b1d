package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/userhub/userhub/internal/audit"
	"github.com/userhub/userhub/internal/credential"
	"github.com/userhub/userhub/internal/user"
)

// FailureReason identifies why an authentication attempt was rejected. The
// reason is logged for the audit trail; callers only ever see the generic
// "invalid email or password" message.
type FailureReason string

const (
	ReasonUserNotFound             FailureReason = "user_not_found"
	ReasonNoPasswordSet            FailureReason = "no_password_set"
	ReasonInvalidPasswordHashed    FailureReason = "invalid_password_hashed"
	ReasonInvalidPasswordPlaintext FailureReason = "invalid_password_plaintext"
)

// FailedError is the typed outcome of a rejected authentication attempt.
type FailedError struct {
	Reason FailureReason
}

func (e *FailedError) Error() string {
	return "invalid email or password"
}

// Service answers whether an email/password pair is valid. It performs no
// writes; the only side effect is audit logging.
type Service struct {
	users user.Repository
	audit *audit.Recorder
}

// NewService creates the authentication orchestrator.
func NewService(users user.Repository, rec *audit.Recorder) *Service {
	return &Service{users: users, audit: rec}
}

// Authenticate looks up the stored credential for the email and verifies the
// password against it, handling both hashed and legacy plaintext variants.
// A *FailedError carries the specific rejection reason; any other error is an
// infrastructure failure, not a credential mismatch.
func (s *Service) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, s.reject(email, ReasonUserNotFound)
		}
		return user.User{}, fmt.Errorf("find user by email: %w", err)
	}

	cred := credential.Parse(u.Password)
	if cred == nil {
		return user.User{}, s.reject(email, ReasonNoPasswordSet)
	}

	if !cred.Verify(password) {
		if cred.Kind() == credential.KindHashed {
			return user.User{}, s.reject(email, ReasonInvalidPasswordHashed)
		}
		return user.User{}, s.reject(email, ReasonInvalidPasswordPlaintext)
	}

	if cred.Kind() == credential.KindPlaintext {
		// Accounts predating hashed storage; the migration sweep in
		// cmd/migrate rewrites these in batch.
		s.audit.LoginAttempt(email, true, "Legacy plaintext login")
	} else {
		s.audit.LoginAttempt(email, true, "")
	}
	return u, nil
}

func (s *Service) reject(email string, reason FailureReason) error {
	s.audit.LoginAttempt(email, false, string(reason))
	return &FailedError{Reason: reason}
}
