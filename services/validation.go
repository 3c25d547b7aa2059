package services

import (
	"fmt"
	"time"

	"rental-chat/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
