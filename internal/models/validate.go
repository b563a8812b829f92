package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateName checks the rule shared by race, stage and team names:
// non-empty, at most 30 characters, no whitespace.
func ValidateName(name string) error {
	if err := validate.Var(name, "required,max=30"); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	}
	return nil
}
