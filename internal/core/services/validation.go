package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// validateStruct runs the struct tags of s and returns the first failure as a
// domain validation error.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError(domain.KindMissingField, "", err.Error())
	}
	return fieldError(verrs[0])
}

func fieldError(fe validator.FieldError) *domain.Error {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return domain.NewValidationError(domain.KindMissingField, field, fmt.Sprintf("%s is required", field))
	case "min":
		if fe.Kind() == reflect.Slice {
			return domain.NewValidationError(domain.KindMissingField, field, fmt.Sprintf("%s needs at least %s entries", field, fe.Param()))
		}
		return domain.NewValidationError(domain.KindInvalidRange, field, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "gte":
		return domain.NewValidationError(domain.KindInvalidRange, field, fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param()))
	case "uuid":
		return domain.NewValidationError(domain.KindInvalidRange, field, fmt.Sprintf("%s must be a valid id", field))
	case "email":
		return domain.NewValidationError(domain.KindInvalidRange, field, fmt.Sprintf("%s must be a valid email", field))
	default:
		return domain.NewValidationError(domain.KindInvalidRange, field, fmt.Sprintf("%s failed on '%s'", field, fe.Tag()))
	}
}

// requireText reports a missing field when value is blank after trimming.
func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(domain.KindMissingField, field, field+" is required")
	}
	return nil
}

// parseDate accepts a calendar date in domain.DateLayout.
func parseDate(field, value string) (time.Time, error) {
	if err := requireText(field, value); err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, domain.NewValidationError(domain.KindInvalidRange, field, field+" must be a date (YYYY-MM-DD)")
	}
	return d, nil
}
