package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/userhub/userhub/internal/audit"
	"github.com/userhub/userhub/internal/logging"
	"github.com/userhub/userhub/internal/user"
)

func testAuthService(repo user.Repository) *Service {
	return NewService(repo, audit.New(logging.Discard()))
}

func seedRaw(t *testing.T, repo user.Repository, email, stored string) user.User {
	t.Helper()
	now := time.Now().UTC()
	u, err := repo.Create(context.Background(), user.User{
		Name:      "Test User",
		Email:     email,
		Password:  stored,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func assertFailure(t *testing.T, err error, want FailureReason) {
	t.Helper()
	var failed *FailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected FailedError, got %v", err)
	}
	if failed.Reason != want {
		t.Fatalf("expected reason %s, got %s", want, failed.Reason)
	}
}

func TestAuthenticateLegacyPlaintext(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := testAuthService(repo)
	seedRaw(t, repo, "a@b.com", "secret123")

	u, err := svc.Authenticate(context.Background(), "a@b.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.Email != "a@b.com" {
		t.Fatalf("expected identity for a@b.com, got %s", u.Email)
	}
}

func TestAuthenticatePlaintextMismatch(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := testAuthService(repo)
	seedRaw(t, repo, "a@b.com", "secret123")

	_, err := svc.Authenticate(context.Background(), "a@b.com", "Secret123")
	assertFailure(t, err, ReasonInvalidPasswordPlaintext)
}

func TestAuthenticateHashed(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := testAuthService(repo)
	seedUser(t, repo, "a@b.com", "secret123")

	u, err := svc.Authenticate(context.Background(), "a@b.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.Email != "a@b.com" {
		t.Fatalf("expected identity for a@b.com, got %s", u.Email)
	}
}

func TestAuthenticateHashedMismatch(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := testAuthService(repo)
	seedUser(t, repo, "a@b.com", "secret123")

	_, err := svc.Authenticate(context.Background(), "a@b.com", "wrongpass")
	assertFailure(t, err, ReasonInvalidPasswordHashed)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := testAuthService(repo)

	_, err := svc.Authenticate(context.Background(), "nobody@b.com", "whatever")
	assertFailure(t, err, ReasonUserNotFound)
}

func TestAuthenticateNoPasswordSet(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := testAuthService(repo)
	seedRaw(t, repo, "a@b.com", "")

	_, err := svc.Authenticate(context.Background(), "a@b.com", "anything")
	assertFailure(t, err, ReasonNoPasswordSet)
}

func TestAuthenticateIsReadOnly(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := testAuthService(repo)
	seeded := seedRaw(t, repo, "a@b.com", "secret123")

	if _, err := svc.Authenticate(context.Background(), "a@b.com", "secret123"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	// The legacy credential must not be rewritten by a login; only the
	// explicit migration sweep converts plaintext records.
	after, err := repo.FindByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if after.Password != "secret123" {
		t.Fatalf("stored credential changed during authentication: %s", after.Password)
	}
}
