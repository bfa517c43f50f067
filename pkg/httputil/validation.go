package httputil

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

var validate = validator.New()

// Validate validates a struct using go-playground/validator
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		fields := make([]string, 0, len(validationErrors))

		for _, e := range validationErrors {
			fields = append(fields, e.Field()+": "+formatValidationError(e))
		}

		return errors.New(errors.KindValidation,
			"validation failed: "+strings.Join(fields, "; "), http.StatusBadRequest)
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "gt":
		return "must be greater than " + e.Param()
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "nefield":
		return "must differ from " + e.Param()
	default:
		return "invalid value"
	}
}
