package orchestrators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"sgc/internal/domain/attendance"
	"sgc/internal/domain/feedback"
	"sgc/internal/domain/member"
)

// ErrInvalidInput is wrapped by every struct-tag validation failure.
var ErrInvalidInput = errors.New("invalid input")

var validate = newValidator()

// newValidator registers the roster enumerations as validation tags:
// role, year, isodate and feedbackstatus.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return member.IsValidRole(fl.Field().String())
	})
	_ = v.RegisterValidation("year", func(fl validator.FieldLevel) bool {
		return member.IsValidYear(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := attendance.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("feedbackstatus", func(fl validator.FieldLevel) bool {
		return feedback.IsValidStatus(fl.Field().String())
	})
	return v
}

// validateInput checks input's struct tags.
// POST: returns nil or an error wrapping ErrInvalidInput that names the first failing field
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describeFieldError(fieldErrs[0]))
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "role":
		return member.ErrInvalidRole.Error()
	case "year":
		return member.ErrInvalidYear.Error()
	case "isodate":
		return attendance.ErrInvalidDate.Error()
	case "feedbackstatus":
		return feedback.ErrInvalidStatus.Error()
	}
	return field + " is invalid"
}
