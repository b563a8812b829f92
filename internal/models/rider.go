package models

import "fmt"

// Rider belongs to exactly one team for its lifetime.
type Rider struct {
	ID          int    `json:"id"`
	TeamID      int    `json:"team_id"`
	Name        string `json:"name" validate:"required"`
	YearOfBirth int    `json:"year_of_birth" validate:"gte=1900"`
}

// ValidateRider checks rider creation input. Rider names are free-form, so
// only emptiness and the year floor apply.
func ValidateRider(name string, yearOfBirth int) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRider)
	}
	if yearOfBirth < 1900 {
		return fmt.Errorf("%w: year of birth %d", ErrInvalidRider, yearOfBirth)
	}
	return nil
}
