package proto

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of an inbound payload.
func Validate(v any) error {
	return validate.Struct(v)
}
