// Package validation checks struct tags with go-playground/validator and
// reports failures as domain validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/studydeck/internal/domain"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator. Field names are taken from json tags.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return strings.ToLower(f.Name)
			}
			return name
		})
	})
	return instance
}

// Check validates v and returns a *domain.Error of KindValidation listing
// every failing field, or nil.
func Check(v any) error {
	return CheckPrefixed("", v)
}

// CheckPrefixed is Check with every field name prefixed, e.g. "drafts[2].".
func CheckPrefixed(prefix string, v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := prefix + fe.Field()
		fields[name] = append(fields[name], Message(fe))
	}
	return domain.ValidationError(fields)
}

// Merge combines validation errors, returning nil when errs holds none.
func Merge(errs ...error) error {
	fields := make(map[string][]string)
	for _, err := range errs {
		var de *domain.Error
		if err == nil || !errors.As(err, &de) {
			continue
		}
		for name, msgs := range de.Fields {
			fields[name] = append(fields[name], msgs...)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return domain.ValidationError(fields)
}

// Message renders a field error for people.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "url":
		return "must be a valid URL"
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
