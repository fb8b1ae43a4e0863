package auth

import (
	"strings"

	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/core/common/validation"
)

const MinPasswordLength = 6

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupDTO struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d LoginDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Label("Email").Required()
	v.Field("password", d.Password).Label("Password").Required()
	return v.Validate()
}

func (d SignupDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", strings.TrimSpace(d.Email)).Label("Email").Required().Email()
	v.Field("password", d.Password).Label("Password").Required().
		MinLength(MinPasswordLength, internal.ErrCodePasswordTooShort)
	v.Field("full_name", d.FullName).Label("Full name").MaxLength(200)
	return v.Validate()
}

func (d RefreshTokenDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("refresh_token", d.RefreshToken).Required()
	return v.Validate()
}
