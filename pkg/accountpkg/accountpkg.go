// Package accountpkg holds the supported account and customer enumerations
// and their request validators.
package accountpkg

import (
	"github.com/go-playground/validator/v10"
)

// Supported account types.
const (
	TypeChecking = "checking"
	TypeSavings  = "savings"
)

// Supported account statuses.
const (
	StatusActive = "active"
	StatusFrozen = "frozen"
	StatusClosed = "closed"
)

// Supported customer statuses.
const (
	CustomerActive = "active"
	CustomerFrozen = "frozen"
)

// IsSupportedType returns true if the account type is supported.
func IsSupportedType(t string) bool {
	switch t {
	case TypeChecking, TypeSavings:
		return true
	}

	return false
}

// IsSupportedStatus returns true if the account status is supported.
func IsSupportedStatus(s string) bool {
	switch s {
	case StatusActive, StatusFrozen, StatusClosed:
		return true
	}

	return false
}

// IsSupportedCustomerStatus returns true if the customer status is supported.
func IsSupportedCustomerStatus(s string) bool {
	switch s {
	case CustomerActive, CustomerFrozen:
		return true
	}

	return false
}

// ValidType validates whether the account type is supported.
var ValidType validator.Func = func(fl validator.FieldLevel) bool {
	if t, ok := fl.Field().Interface().(string); ok {
		return IsSupportedType(t)
	}

	return false
}

// ValidStatus validates whether the account status is supported.
var ValidStatus validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return IsSupportedStatus(s)
	}

	return false
}

// ValidCustomerStatus validates whether the customer status is supported.
var ValidCustomerStatus validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return IsSupportedCustomerStatus(s)
	}

	return false
}

// RegisterValidations registers the account_type, account_status and
// customer_status tags on v. Registering twice is harmless.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("account_type", ValidType); err != nil {
		return err
	}

	if err := v.RegisterValidation("account_status", ValidStatus); err != nil {
		return err
	}

	return v.RegisterValidation("customer_status", ValidCustomerStatus)
}
