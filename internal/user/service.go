package user

import (
	"context"
	"strings"
	"time"

	"github.com/userhub/userhub/internal/credential"
)

// Service manages the user lifecycle: registration, profile updates, deletion
// and password rotation. Credential verification for login lives in the auth
// package; this service only ever writes freshly hashed credentials.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the fields required to register a user.
type CreateInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateInput carries optional profile changes. Nil fields stay untouched.
type UpdateInput struct {
	Name  *string
	Email *string
}

// Create validates the input, hashes the password and stores the new user.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateName(in.Name); err != nil {
		return User{}, err
	}
	if err := validateEmail(in.Email); err != nil {
		return User{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return User{}, err
	}

	hashed, err := credential.Hash(in.Password)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	return s.repo.Create(ctx, User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByEmail fetches a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// Update applies the provided profile changes after validation.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return User{}, err
		}
		u.Name = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validateEmail(email); err != nil {
			return User{}, err
		}
		u.Email = email
	}

	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Delete removes a user by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Search returns users whose name matches the query. Queries shorter than two
// characters yield no results rather than the whole table.
func (s *Service) Search(ctx context.Context, query string) ([]User, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []User{}, nil
	}
	return s.repo.SearchByName(ctx, query)
}

// ChangePassword verifies the current credential and replaces it with a
// freshly hashed one. This is the only credential mutation in the system
// besides the batch migration sweep.
func (s *Service) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	cred := credential.Parse(u.Password)
	if cred == nil || !cred.Verify(oldPassword) {
		return ValidationError("Current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := credential.Hash(newPassword)
	if err != nil {
		return err
	}
	u.Password = hashed
	u.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, u)
}
