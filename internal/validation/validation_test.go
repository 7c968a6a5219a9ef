package validation

import (
	"errors"
	"strings"
	"testing"
)

type pointerSample struct {
	Numbers []*float64 `json:"numbers" validate:"required,min=1,dive,required"`
}

type sample struct {
	Numbers []float64 `json:"numbers" validate:"required,min=1"`
	Delays  []float64 `json:"delays" validate:"required,min=1,dive,gte=0"`
	Email   string    `json:"email,omitempty" validate:"omitempty,email"`
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var s sample
		if err := DecodeJSON(strings.NewReader(`{"numbers":[1],"delays":[0.5]}`), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(s.Numbers) != 1 || s.Delays[0] != 0.5 {
			t.Fatalf("unexpected decode result %+v", s)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		var s sample
		err := DecodeJSON(strings.NewReader(`{"numbers":[1`), &s)
		if !errors.Is(err, ErrMalformedBody) {
			t.Fatalf("expected ErrMalformedBody, got %v", err)
		}
	})

	t.Run("trailing data", func(t *testing.T) {
		for _, body := range []string{
			`{"numbers":[3],"delays":[0]} trailing`,
			`{"numbers":[3],"delays":[0]}{}`,
			`{"numbers":[3],"delays":[0]}]`,
		} {
			var s sample
			if err := DecodeJSON(strings.NewReader(body), &s); !errors.Is(err, ErrMalformedBody) {
				t.Fatalf("%s: expected ErrMalformedBody, got %v", body, err)
			}
		}
	})

	t.Run("trailing whitespace", func(t *testing.T) {
		var s sample
		if err := DecodeJSON(strings.NewReader("{\"numbers\":[1]}\n  \n"), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		var s sample
		if err := DecodeJSON(strings.NewReader(""), &s); !errors.Is(err, ErrMalformedBody) {
			t.Fatalf("expected ErrMalformedBody, got %v", err)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		var s sample
		err := DecodeJSON(strings.NewReader(`{"numbers":"one"}`), &s)

		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("expected *SchemaError, got %v", err)
		}
		if schemaErr.Violations[0].Field != "numbers" {
			t.Fatalf("expected field numbers, got %q", schemaErr.Violations[0].Field)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		var s sample
		err := DecodeJSON(strings.NewReader(`{"numbers":[1],"extra":true}`), &s)

		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("expected *SchemaError, got %v", err)
		}
		if got := schemaErr.Violations[0]; got.Field != "extra" || got.Message != "extra fields not permitted" {
			t.Fatalf("unexpected violation %+v", got)
		}
	})
}

func TestStructReportsJSONFieldPaths(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		in      sample
		field   string
		message string
	}{
		{name: "missing numbers", in: sample{Delays: []float64{1}}, field: "numbers", message: "field required"},
		{name: "empty numbers", in: sample{Numbers: []float64{}, Delays: []float64{1}}, field: "numbers", message: "must contain at least 1 item(s)"},
		{name: "negative delay", in: sample{Numbers: []float64{1, 2}, Delays: []float64{1, -1}}, field: "delays[1]", message: "must be greater than or equal to 0"},
		{name: "bad email", in: sample{Numbers: []float64{1}, Delays: []float64{1}, Email: "nope"}, field: "email", message: "must be a valid email address"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(v, tc.in)

			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *SchemaError, got %v", err)
			}
			if len(schemaErr.Violations) != 1 {
				t.Fatalf("expected 1 violation, got %+v", schemaErr.Violations)
			}
			got := schemaErr.Violations[0]
			if got.Field != tc.field || got.Message != tc.message {
				t.Fatalf("expected %s: %s, got %+v", tc.field, tc.message, got)
			}
		})
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	if err := Struct(New(), sample{Numbers: []float64{1}, Delays: []float64{0}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructRejectsNullElements(t *testing.T) {
	var s pointerSample
	if err := DecodeJSON(strings.NewReader(`{"numbers":[1,null]}`), &s); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	err := Struct(New(), s)

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if got := schemaErr.Violations[0]; got.Field != "numbers[1]" || got.Message != "field required" {
		t.Fatalf("unexpected violation %+v", got)
	}
}
