package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// GetErrorMsg returns a human readable message for the first failed validation in err.
func GetErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err.Error()
	}

	fe := ve[0]

	switch fe.Tag() {
	case "required":
		return fe.Field() + " field is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "email":
		return fe.Field() + " must be a valid email"
	case "alphanum":
		return fe.Field() + " must contain only letters and digits"
	case "numeric":
		return fe.Field() + " must contain only digits"
	case "len":
		return fe.Field() + " must be exactly " + fe.Param() + " characters long"
	case "account_type":
		return fe.Field() + " must be checking or savings"
	case "account_status", "customer_status":
		return fe.Field() + " is not a supported status"
	}

	return fe.Field() + " is invalid"
}
