package api

import (
	"github.com/go-playground/validator/v10"
)

// ValidationError is one field-level failure, shaped for JSON error bodies.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

var validate = validator.New()

// ValidateStruct validates a struct by its validate tags and returns
// formatted errors, nil when the struct is valid.
func ValidateStruct(s interface{}) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs []ValidationError
	for _, fieldErr := range err.(validator.ValidationErrors) {
		errs = append(errs, ValidationError{
			Field:   fieldErr.Field(),
			Tag:     fieldErr.Tag(),
			Message: errorMessage(fieldErr),
		})
	}

	return errs
}

func errorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return err.Field() + " must be a valid email address"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "gt":
		return err.Field() + " must be greater than " + err.Param()
	case "gte":
		return err.Field() + " must be greater than or equal to " + err.Param()
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}
