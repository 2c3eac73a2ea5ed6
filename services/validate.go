package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/camden-git/seeds/models"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\d{3}[-.]?\d{3}[-.]?\d{4}$`)

// Rolling windows in days.
const (
	WeekDays      = 7
	MonthDays     = 30
	QuarterDays   = 91
	YearDays      = 365
	ThreeYearDays = 3 * YearDays
)

var sinceKeywords = map[string]int{
	"week":    WeekDays,
	"month":   MonthDays,
	"quarter": QuarterDays,
	"year":    YearDays,
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		_, err := models.ParseMode(fl.Field().String())
		return err == nil
	})
	return v
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "enter a valid email address"
	case "phone":
		return "phone number must be entered in the format 999-999-9999, optionally separated by periods"
	case "date":
		return "enter a date as YYYY-MM-DD"
	case "mode":
		return fmt.Sprintf("unknown mode %q", fe.Value())
	}
	return "is invalid"
}

func validateInput(v *validator.Validate, operation string, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Type: ErrTypeInternal, Operation: operation, Message: "could not validate input", Cause: err}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; !seen {
			fields[name] = describe(fe)
		}
	}
	return newFieldsError(operation, fields)
}

// parseSince accepts week, month, quarter, year or a YYYY-MM-DD date.
// An empty value means no bound.
func parseSince(operation, field, value string, today time.Time) (*time.Time, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return nil, nil
	}
	if days, ok := sinceKeywords[value]; ok {
		since := today.AddDate(0, 0, -days)
		return &since, nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return nil, NewValidationError(operation, field, "use week, month, quarter, year or a YYYY-MM-DD date")
	}
	return &d, nil
}
