// Package validation wraps go-playground/validator for JSON request schemas
// and turns its errors into field-level violations for 422 responses.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation is one failed rule on one field, addressed by its JSON path.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrMalformedBody means the body was not valid JSON at all.
var ErrMalformedBody = errors.New("malformed JSON body")

// SchemaError carries every violation found in a request.
type SchemaError struct {
	Violations []Violation
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Messages maps validator tags to human-readable messages. A %s verb receives
// the tag parameter. Packages with custom tags add their own entries.
var Messages = map[string]string{
	"required": "field required",
	"min":      "must contain at least %s item(s)",
	"max":      "must contain at most %s item(s)",
	"gte":      "must be greater than or equal to %s",
	"email":    "must be a valid email address",
	"unique":   "must not contain duplicates",
	"oneof":    "must be one of: %s",
}

// New returns a validator that reports fields by their JSON names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSON decodes a single JSON document into dst, rejecting unknown
// fields. Syntax errors and data after the document wrap ErrMalformedBody;
// type mismatches and unknown fields come back as a *SchemaError.
func DecodeJSON(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON document", ErrMalformedBody)
		}
		return nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &SchemaError{Violations: []Violation{{
			Field:   field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type),
		}}}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return &SchemaError{Violations: []Violation{{Field: field, Message: "extra fields not permitted"}}}
	default:
		return &SchemaError{Violations: []Violation{{Field: "body", Message: err.Error()}}}
	}
}

// Struct validates s and converts any failure into a *SchemaError. Schemas
// are flat (embedded structs included), so the leaf JSON name, with its index
// for slice elements, identifies the field.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{Field: fe.Field(), Message: message(fe)})
	}
	return &SchemaError{Violations: out}
}

func message(fe validator.FieldError) string {
	tmpl, ok := Messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return tmpl
}
