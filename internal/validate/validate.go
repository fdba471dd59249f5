package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Limits checked outside struct tags.
const (
	MaxSavedIDLength  = 512
	MaxURLLength      = 2048
	MaxSessionDocSize = 256 * 1024
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct checks the validate tags of s and returns a message for the first
// failing field, or "" when s is valid.
func Struct(s any) string {
	err := validate.Struct(s)
	if err == nil {
		return ""
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldMessage(fieldErrs[0])
	}
	return "invalid request"
}

func fieldMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have %s entries or fewer", field, e.Param())
		}
		return fmt.Sprintf("%s must be %s characters or fewer", field, e.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a UUID", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func SavedID(s string) string  { return checkLen(s, MaxSavedIDLength, "id") }
func CoverURL(s string) string { return checkLen(s, MaxURLLength, "cover_image_url") }

// SessionDoc bounds the size of a JSON sub-document written to a session.
func SessionDoc(field string, raw []byte) string {
	if len(raw) > MaxSessionDocSize {
		return fmt.Sprintf("%s must be %d bytes or fewer", field, MaxSessionDocSize)
	}
	return ""
}
