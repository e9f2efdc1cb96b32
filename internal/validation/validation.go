// Package validation checks entities before they are written and cleans
// user supplied HTML.
package validation

import (
	"html"
	"reflect"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"hrcms/internal/apperror"
)

// Validator wraps a validator.Validate configured to report JSON field names.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s and converts failures into an apperror.Validation
// listing every rejected field.
func (v *Validator) Struct(s any, message string) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate")
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return apperror.Validation(message, fields...)
}

// fieldPath drops the leading struct name from a validator namespace,
// "Post.category.id" → "category.id".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color"
	default:
		return "is invalid"
	}
}

// Sanitizer strips unsafe markup from stored content.
type Sanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		rich:  bluemonday.UGCPolicy(),
		plain: bluemonday.StrictPolicy(),
	}
}

// HTML keeps formatting markup but removes scripts, handlers and the like.
func (s *Sanitizer) HTML(content string) string {
	return strings.TrimSpace(s.rich.Sanitize(content))
}

// Text removes all markup and returns plain text. The policy escapes the
// characters it keeps, so entities are decoded again before storing.
func (s *Sanitizer) Text(content string) string {
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(content)))
}

// Tags trims each tag, drops empty ones and keeps the original order.
func Tags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
