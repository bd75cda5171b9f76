package validation

import (
	"net/mail"
	"strings"
)

// RegisterRequest mirrors the fields needed for registration validation.
type RegisterRequest struct {
	Username   string
	Email      string
	Password   string
	Department string
}

// ValidateRegisterRequest validates the fields of a registration request.
// Returns a slice of field errors; empty slice means valid.
func ValidateRegisterRequest(req RegisterRequest) []FieldError {
	var errs []FieldError

	username := strings.TrimSpace(req.Username)
	if username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "username is required"})
	} else if len(username) > 255 {
		errs = append(errs, FieldError{Field: "username", Message: "username must be at most 255 characters"})
	}

	if req.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if len(req.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}

	return errs
}

// LoginRequest mirrors the fields needed for login validation.
type LoginRequest struct {
	Email    string
	Password string
}

// ValidateLoginRequest validates the fields of a login request.
func ValidateLoginRequest(req LoginRequest) []FieldError {
	var errs []FieldError

	if req.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}
