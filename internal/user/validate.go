package user

import (
	"regexp"
	"strings"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether the address has a plausible mailbox@domain shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidationError describes rejected caller input. It maps to a 400 response.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

func validateName(name string) error {
	if len(strings.TrimSpace(name)) < 2 {
		return ValidationError("Name must be at least 2 characters long")
	}
	return nil
}

func validateEmail(email string) error {
	if !ValidEmail(email) {
		return ValidationError("Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ValidationError("Password must be at least 8 characters long")
	}
	return nil
}
