// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotPast validates that a time value is not in the past.
// Zero times are skipped so optional fields can combine this with Required.
type NotPast struct {
	Now func() time.Time
}

// Validate checks the value against the current time.
func (r NotPast) Validate(value interface{}) error {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	var ts time.Time
	switch v := value.(type) {
	case time.Time:
		ts = v
	case *time.Time:
		if v == nil {
			return nil
		}
		ts = *v
	default:
		return validation.NewError("validation_not_past_type", "must be a time value")
	}

	if ts.IsZero() {
		return nil
	}

	if ts.Before(now()) {
		return validation.NewError("validation_not_past", "cannot be in the past")
	}

	return nil
}

// VerificationStatus validates that an integer is one of the known
// verification status codes.
type VerificationStatus struct {
	Allowed []int
}

// Validate checks the value against the allowed status codes.
func (r VerificationStatus) Validate(value interface{}) error {
	code, ok := value.(int)
	if !ok {
		return validation.NewError("validation_status_type", "must be an integer status code")
	}

	for _, allowed := range r.Allowed {
		if code == allowed {
			return nil
		}
	}

	return validation.NewError("validation_status_unknown", "must be a known verification status code")
}
