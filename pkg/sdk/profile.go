package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// PasswordChange is a request to change the caller's password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=256"`
	Confirm         string `json:"-"`
}

var (
	ErrPasswordMismatch = errors.New("new passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
)

// ChangePassword changes the password of the logged in user.
func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) error {
	if change.NewPassword != change.Confirm {
		return ErrPasswordMismatch
	}
	if err := c.validate.Struct(change); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "NewPassword" && fe.Tag() == "min" {
					return ErrPasswordTooShort
				}
			}
		}
		return fmt.Errorf("invalid password change: %w", err)
	}
	return c.sendJSON(ctx, http.MethodPost, "/api/auth/change-password", change, nil)
}
