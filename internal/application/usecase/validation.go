package usecase

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError reports a malformed form input. It is raised in the form
// layer before any identity-provider call is made; it never reaches the
// session engine.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateLogin checks the login form inputs.
func ValidateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	return validatePassword(password)
}

// ValidateSignup checks the signup form inputs. displayName is optional
// (defaulted from the email local-part later).
func ValidateSignup(email, password, displayName string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if n := strings.TrimSpace(displayName); n != "" && len(n) > 80 {
		return &ValidationError{Field: "displayName", Message: "must be at most 80 characters"}
	}
	return nil
}

func validateEmail(email string) error {
	e := strings.TrimSpace(email)
	if e == "" {
		return &ValidationError{Field: "email", Message: "is required"}
	}
	if !emailRe.MatchString(e) {
		return &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Message: "is required"}
	}
	if len(password) < minPasswordLen {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLen)}
	}
	return nil
}
