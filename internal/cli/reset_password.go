package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/nightstay/backend-go/internal/database/service"
)

const minPasswordLength = 6

// ResetPasswordCmd sets a new password and signs the account out everywhere.
// Missing flags are asked for interactively.
type ResetPasswordCmd struct {
	Email    string `help:"Account email. Chosen from a list when omitted."`
	Password string `help:"New password (min 6 characters). Prompted when omitted." env:"NIGHTSTAY_NEW_PASSWORD"`
}

func (c *ResetPasswordCmd) Run(ctx *Context) error {
	auth, err := ctx.OpenAuth()
	if err != nil {
		return err
	}

	bg := context.Background()

	if c.Email == "" {
		email, err := pickEmail(bg, auth)
		if err != nil {
			return err
		}
		c.Email = email
	}

	if c.Password == "" {
		password, err := promptPassword()
		if err != nil {
			return err
		}
		c.Password = password
	}

	if err := auth.ResetPassword(bg, c.Email, c.Password); err != nil {
		return fmt.Errorf("reset password for %s: %w", c.Email, err)
	}

	fmt.Fprintln(ctx.out(), successStyle.Render("✔ Password updated for "+c.Email))
	return nil
}

func pickEmail(ctx context.Context, auth service.AuthService) (string, error) {
	users, err := auth.ListUsers(ctx)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", errors.New("no users found")
	}

	options := make([]huh.Option[string], 0, len(users))
	for _, u := range users {
		options = append(options, huh.NewOption(u.Email, u.Email))
	}

	var email string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reset password for which account?").
				Options(options...).
				Value(&email),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("interactive form error: %w", err)
	}
	return email, nil
}

func promptPassword() (string, error) {
	var password, confirm string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(validatePassword),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("interactive form error: %w", err)
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func validatePassword(s string) error {
	if len(s) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}
