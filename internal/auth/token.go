// Package auth implements credential verification and stateless session
// tokens. Tokens are HS256-signed JWTs that expire after a configured window;
// there is no server-side revocation list, so expiry is the only termination
// mechanism. Every token resolution re-fetches the user record, so deleted
// accounts lose access promptly despite the tokens being stateless.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userhub/userhub/internal/audit"
	"github.com/userhub/userhub/internal/config"
	"github.com/userhub/userhub/internal/user"
)

// Claims is the payload embedded in a session token.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and validates session tokens. The signing secret and
// expiration window are fixed at construction; the service holds no mutable
// state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	users  user.Repository
	audit  *audit.Recorder
	now    func() time.Time
}

// NewTokenService builds a token service from configuration.
func NewTokenService(cfg config.Config, users user.Repository, rec *audit.Recorder) *TokenService {
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		users:  users,
		audit:  rec,
		now:    time.Now,
	}
}

// TTL returns the configured expiration window.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token bound to the user's id and email, expiring after the
// configured window. Failure here is an internal encoding problem, never a
// user-facing validation outcome.
func (s *TokenService) Issue(u user.User) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.audit.TokenEvent(audit.TokenGenerationFailed, u.ID, err.Error())
		return "", fmt.Errorf("sign token: %w", err)
	}

	s.audit.TokenEvent(audit.TokenGenerated, u.ID, "")
	return signed, nil
}

// Validate verifies the signature and expiry and returns the claims, or nil.
// It fails closed: malformed structure, signature mismatch and expiry all
// yield nil, logged under distinct audit events. A token is expired from the
// exact instant now >= exp. Validation consumes no state; repeated calls on
// the same token return the same claims.
func (s *TokenService) Validate(token string) *Claims {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			// Signature checked out; only the clock ran down.
			s.audit.TokenEvent(audit.TokenExpired, claims.UserID, "token expired")
		case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid):
			s.audit.TokenEvent(audit.TokenInvalid, 0, err.Error())
		default:
			s.audit.TokenEvent(audit.TokenValidationFailed, 0, err.Error())
		}
		return nil
	}
	if !parsed.Valid {
		s.audit.TokenEvent(audit.TokenInvalid, 0, "token not valid")
		return nil
	}

	s.audit.TokenEvent(audit.TokenValidated, claims.UserID, "")
	return claims
}

// ResolveUser validates the token and re-fetches the current user record by
// the embedded id. The embedded email and name are never trusted as current
// truth. Returns false when validation fails or the user no longer exists.
func (s *TokenService) ResolveUser(ctx context.Context, token string) (user.User, bool) {
	claims := s.Validate(token)
	if claims == nil {
		return user.User{}, false
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		s.audit.AuthenticationFailure("user_lookup_failed", claims.Email)
		return user.User{}, false
	}
	return u, true
}
