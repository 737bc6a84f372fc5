package ui

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// Credentials is what the login form collects.
type Credentials struct {
	Email    string
	Password string
}

// RunLogin prompts for service credentials before the dashboard
// starts. The email can be prefilled from configuration.
func RunLogin(defaultEmail string) (Credentials, error) {
	creds := Credentials{Email: defaultEmail}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&creds.Email).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		).Title("SuiteSpace Login"),
	)

	if err := form.Run(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}
