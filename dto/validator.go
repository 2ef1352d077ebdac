package dto

import (
	"github.com/go-playground/validator/v10"
	"github.com/lac-hong-legacy/ven_companion/shared"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("subscription_tier", validateSubscriptionTier)
}

func GetValidator() *validator.Validate {
	return validate
}

func validateSubscriptionTier(fl validator.FieldLevel) bool {
	return shared.IsValidTier(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			var message string

			switch fieldError.Tag() {
			case "required":
				message = fieldError.Field() + " is required"
			case "min":
				message = fieldError.Field() + " must have at least " + fieldError.Param() + " items"
			case "max":
				message = fieldError.Field() + " must be at most " + fieldError.Param()
			case "gt":
				message = fieldError.Field() + " must be greater than " + fieldError.Param()
			case "gte":
				message = fieldError.Field() + " must be at least " + fieldError.Param()
			case "lte":
				message = fieldError.Field() + " must be at most " + fieldError.Param()
			case "oneof":
				message = fieldError.Field() + " must be one of: " + fieldError.Param()
			case "subscription_tier":
				message = fieldError.Field() + " must be one of: free pro gold premium"
			case "dive":
				message = fieldError.Field() + " contains invalid items"
			default:
				message = fieldError.Field() + " is invalid"
			}

			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Message: message,
			})
		}
	}

	return errors
}

// Validate checks a request struct and converts failures into a 400
// AppError listing each offending field.
func Validate(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return shared.NewValidationError("Validation failed", FormatValidationErrors(err))
	}
	return nil
}
