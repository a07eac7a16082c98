// Package prompts manages named instruction overrides for the classify,
// verify, and chat stages of the consultation pipeline. Output specifications
// are fixed in code; only the instructions are tunable.
package prompts

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Prompt is a named instruction override for a pipeline stage.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data needed to create a prompt override.
type CreateCommand struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Stage        Stage   `json:"stage" validate:"required"`
	Instructions string  `json:"instructions" validate:"required,max=20000"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
}

// UpdateCommand carries the data needed to update a prompt override.
type UpdateCommand struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Stage        Stage   `json:"stage" validate:"required"`
	Instructions string  `json:"instructions" validate:"required,max=20000"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateCommand(cmd any) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
