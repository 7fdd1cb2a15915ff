package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// specialChars are the characters accepted as the "special character" class
// a password must contain.
const specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// ValidateUserInput is the payload for the validate_user activity.
type ValidateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateUserOutput reports per-field validation failures.
type ValidateUserOutput struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateUser validates email and password shape before a user record is
// created, ahead of the hash_password activity.
type ValidateUser struct{}

// NewValidateUser constructs the validate_user activity.
func NewValidateUser() *ValidateUser { return &ValidateUser{} }

func (a *ValidateUser) Name() string { return "validate_user" }

func (a *ValidateUser) DefaultRetryPolicy() RetryPolicy {
	// Validation failures are deterministic; retrying wastes an attempt.
	return RetryPolicy{MaxAttempts: 1}
}

func (a *ValidateUser) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in ValidateUserInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode validate_user input: %w", err)
	}

	out := ValidateUserOutput{Valid: true}
	if errs := validateEmail(in.Email); len(errs) > 0 {
		out.Errors = append(out.Errors, errs...)
	}
	if errs := validatePassword(in.Password); len(errs) > 0 {
		out.Errors = append(out.Errors, errs...)
	}
	out.Valid = len(out.Errors) == 0

	return json.Marshal(out)
}

func validateEmail(email string) []string {
	var errs []string
	if email == "" {
		errs = append(errs, "email is required")
		return errs
	}
	if len(email) > 255 {
		errs = append(errs, "email must be at most 255 characters")
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		errs = append(errs, "email must be a valid email address")
	}
	return errs
}

func validatePassword(password string) []string {
	var errs []string
	if password == "" {
		errs = append(errs, "password is required")
		return errs
	}
	if len(password) < 8 || len(password) > 128 {
		errs = append(errs, "password must be between 8 and 128 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		errs = append(errs, "password must contain an uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "password must contain a lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "password must contain a digit")
	}
	if !hasSpecial {
		errs = append(errs, "password must contain a special character")
	}
	return errs
}
