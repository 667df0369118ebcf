// Package validation rejects malformed signin and signup payloads before any
// identity or store call. Schemas are pure: for any input they return either
// the typed input or an *Error with one translated message per failing field.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// simpleEmail is the loose local@domain.tld check used at signin. Signup uses
// validator's full email rule instead.
var simpleEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return simpleEmail.MatchString(fl.Field().String())
	})
	return v
}

// Error lists every failing field with a single message each.
type Error struct {
	Fields map[string]string `json:"fields"`
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Schema validates values of T. messages maps field -> rule -> text.
type Schema[T any] struct {
	messages map[string]map[string]string
	fallback string
}

// Parse validates in. The first violated rule of each field decides its
// message.
func (s *Schema[T]) Parse(in T) (T, error) {
	err := validate.Struct(in)
	if err == nil {
		return in, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		var zero T
		return zero, err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = s.message(fe.Field(), fe.Tag())
	}

	var zero T
	return zero, &Error{Fields: fields}
}

func (s *Schema[T]) message(field, rule string) string {
	if msg, ok := s.messages[field][rule]; ok {
		return msg
	}
	return s.fallback
}
