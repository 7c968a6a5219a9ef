package appeal

import (
	"errors"
	"testing"
	"time"

	"fanout-api/internal/validation"
)

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	old := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = old })
}

func validPerson() Person {
	return Person{
		LastName:  "Иванов",
		FirstName: "Пётр",
		Birthdate: "1990-05-17",
		Phone:     "+7 (912) 345-67-89",
		Email:     "petr@example.com",
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "+7 (912) 345-67-89", want: "79123456789"},
		{in: "8 912 345 67 89", want: "79123456789"},
		{in: "79123456789", want: "79123456789"},
		{in: "12-34", want: "1234"},
	}

	for _, tc := range tests {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Fatalf("NormalizePhone(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestPersonRules(t *testing.T) {
	fixClock(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	v := newValidator()

	tests := []struct {
		name   string
		mutate func(p *Person)
		field  string
	}{
		{name: "valid", mutate: func(p *Person) {}},
		{name: "hyphenated surname", mutate: func(p *Person) { p.LastName = "Римского-Корсаков" }},
		{name: "latin surname", mutate: func(p *Person) { p.LastName = "Ivanov" }, field: "last_name"},
		{name: "lowercase first name", mutate: func(p *Person) { p.FirstName = "пётр" }, field: "first_name"},
		{name: "mixed case", mutate: func(p *Person) { p.FirstName = "ПЁтр" }, field: "first_name"},
		{name: "bad middle name", mutate: func(p *Person) { p.MiddleName = "Petrovich" }, field: "middle_name"},
		{name: "missing email", mutate: func(p *Person) { p.Email = "" }, field: "email"},
		{name: "bad email", mutate: func(p *Person) { p.Email = "petr@" }, field: "email"},
		{name: "short phone", mutate: func(p *Person) { p.Phone = "+7 912 345" }, field: "phone"},
		{name: "foreign phone", mutate: func(p *Person) { p.Phone = "+1 212 555 0100" }, field: "phone"},
		{name: "birthdate today", mutate: func(p *Person) { p.Birthdate = "2026-03-10" }, field: "birthdate"},
		{name: "birthdate future", mutate: func(p *Person) { p.Birthdate = "2030-01-01" }, field: "birthdate"},
		{name: "birthdate format", mutate: func(p *Person) { p.Birthdate = "17.05.1990" }, field: "birthdate"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := Appeal{Person: validPerson()}
			tc.mutate(&a.Person)

			err := validation.Struct(v, &a)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var schemaErr *validation.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *SchemaError, got %v", err)
			}
			if got := schemaErr.Violations[0].Field; got != tc.field {
				t.Fatalf("expected violation on %q, got %q", tc.field, got)
			}
		})
	}
}

func TestReasonRules(t *testing.T) {
	fixClock(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	v := newValidator()

	t.Run("single reason", func(t *testing.T) {
		a := ReasonAppeal{Person: validPerson(), Reason: ReasonNoNetwork, DetectedAt: "2026-03-10T11:59:00Z"}
		if err := validation.Struct(v, &a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		a.Reason = "aliens"
		assertViolation(t, validation.Struct(v, &a), "reason")
	})

	t.Run("future detection", func(t *testing.T) {
		a := ReasonAppeal{Person: validPerson(), Reason: ReasonOther, DetectedAt: "2026-03-10T12:00:01Z"}
		assertViolation(t, validation.Struct(v, &a), "detected_at")
	})

	t.Run("detection with offset", func(t *testing.T) {
		// 14:30+03:00 is 11:30 UTC
		a := ReasonAppeal{Person: validPerson(), Reason: ReasonOther, DetectedAt: "2026-03-10T14:30:00+03:00"}
		if err := validation.Struct(v, &a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("multiple reasons", func(t *testing.T) {
		a := MultiReasonAppeal{Person: validPerson(), Reasons: []string{ReasonNoEmail, ReasonPhoneNotWorking}, DetectedAt: "2026-03-01T08:00:00Z"}
		if err := validation.Struct(v, &a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty reasons", func(t *testing.T) {
		a := MultiReasonAppeal{Person: validPerson(), Reasons: []string{}, DetectedAt: "2026-03-01T08:00:00Z"}
		assertViolation(t, validation.Struct(v, &a), "reasons")
	})

	t.Run("duplicate reasons", func(t *testing.T) {
		a := MultiReasonAppeal{Person: validPerson(), Reasons: []string{ReasonNoEmail, ReasonNoEmail}, DetectedAt: "2026-03-01T08:00:00Z"}
		assertViolation(t, validation.Struct(v, &a), "reasons")
	})

	t.Run("unknown reason in list", func(t *testing.T) {
		a := MultiReasonAppeal{Person: validPerson(), Reasons: []string{ReasonNoEmail, "bored"}, DetectedAt: "2026-03-01T08:00:00Z"}
		assertViolation(t, validation.Struct(v, &a), "reasons[1]")
	})
}

func assertViolation(t *testing.T, err error, field string) {
	t.Helper()

	var schemaErr *validation.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	for _, v := range schemaErr.Violations {
		if v.Field == field {
			return
		}
	}
	t.Fatalf("expected violation on %q, got %+v", field, schemaErr.Violations)
}
