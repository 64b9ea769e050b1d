package audit

import "log/slog"

// Token event names emitted alongside token lifecycle operations.
const (
	TokenGenerated        = "generated"
	TokenGenerationFailed = "generation_failed"
	TokenValidated        = "validated"
	TokenExpired          = "expired"
	TokenInvalid          = "invalid"
	TokenValidationFailed = "validation_failed"
)

// Recorder emits structured security-audit events. It only records; formatting
// and persistence belong to the underlying log handler.
type Recorder struct {
	logger *slog.Logger
}

// New constructs a Recorder writing to the provided logger.
func New(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// LoginAttempt records the outcome of a credential check for an email. The
// reason carries the failure cause, or an optional note on success.
func (r *Recorder) LoginAttempt(email string, success bool, reason string) {
	if r == nil || r.logger == nil {
		return
	}
	attrs := []any{
		slog.String("email", email),
		slog.Bool("success", success),
	}
	if reason != "" {
		attrs = append(attrs, slog.String("failure_reason", reason))
	}
	if success {
		r.logger.Info("login_attempt", attrs...)
		return
	}
	r.logger.Warn("login_attempt", attrs...)
}

// TokenEvent records a token lifecycle event for a user. userID may be zero
// when the token never yielded trustworthy claims.
func (r *Recorder) TokenEvent(event string, userID int64, reason string) {
	if r == nil || r.logger == nil {
		return
	}
	attrs := []any{slog.String("token_event", event)}
	if userID != 0 {
		attrs = append(attrs, slog.Int64("user_id", userID))
	}
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}
	if event == TokenGenerated || event == TokenValidated {
		r.logger.Info("token_event", attrs...)
		return
	}
	r.logger.Warn("token_event", attrs...)
}

// AuthenticationFailure records a rejected request, such as a missing or
// malformed token on a gated route.
func (r *Recorder) AuthenticationFailure(reason, email string) {
	if r == nil || r.logger == nil {
		return
	}
	attrs := []any{slog.String("reason", reason)}
	if email != "" {
		attrs = append(attrs, slog.String("email", email))
	}
	r.logger.Warn("authentication_failure", attrs...)
}
