package appeal

import (
	"strings"
	"time"
)

// Reason codes accepted in task2 and task3 submissions.
const (
	ReasonNoNetwork       = "no_network"
	ReasonPhoneNotWorking = "phone_not_working"
	ReasonNoEmail         = "no_email"
	ReasonOther           = "other"
)

var reasons = map[string]struct{}{
	ReasonNoNetwork:       {},
	ReasonPhoneNotWorking: {},
	ReasonNoEmail:         {},
	ReasonOther:           {},
}

// Person holds the contact fields shared by every appeal.
type Person struct {
	LastName   string `json:"last_name" validate:"required,cyrillic_name"`
	FirstName  string `json:"first_name" validate:"required,cyrillic_name"`
	MiddleName string `json:"middle_name,omitempty" validate:"omitempty,cyrillic_name"`

	// Birthdate is YYYY-MM-DD.
	Birthdate string `json:"birthdate" validate:"required,past_date"`
	// Phone is stored as 11 digits starting with 7.
	Phone string `json:"phone" validate:"required,ru_phone"`

	Email string `json:"email" validate:"required,email"`
}

// Appeal is the task1 submission.
type Appeal struct {
	Person
}

// ReasonAppeal is the task2 submission: one reason and when the problem was noticed.
type ReasonAppeal struct {
	Person
	Reason string `json:"reason" validate:"required,reason"`
	// DetectedAt is an RFC 3339 timestamp, stored in UTC.
	DetectedAt string `json:"detected_at" validate:"required,not_future"`
}

// MultiReasonAppeal is the task3 submission.
type MultiReasonAppeal struct {
	Person
	Reasons    []string `json:"reasons" validate:"required,min=1,unique,dive,reason"`
	DetectedAt string   `json:"detected_at" validate:"required,not_future"`
}

// submission is implemented by the three appeal schemas.
type submission interface {
	// trim strips surrounding whitespace before validation.
	trim()
	// normalize rewrites validated fields into their stored form.
	normalize()
}

func (p *Person) trim() {
	p.LastName = strings.TrimSpace(p.LastName)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.MiddleName = strings.TrimSpace(p.MiddleName)
	p.Birthdate = strings.TrimSpace(p.Birthdate)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
}

func (p *Person) normalize() {
	p.Phone = NormalizePhone(p.Phone)
	p.Email = strings.ToLower(p.Email)
}

func (a *ReasonAppeal) trim() {
	a.Person.trim()
	a.Reason = strings.TrimSpace(a.Reason)
	a.DetectedAt = strings.TrimSpace(a.DetectedAt)
}

func (a *ReasonAppeal) normalize() {
	a.Person.normalize()
	a.DetectedAt = normalizeTimestamp(a.DetectedAt)
}

func (a *MultiReasonAppeal) trim() {
	a.Person.trim()
	for i := range a.Reasons {
		a.Reasons[i] = strings.TrimSpace(a.Reasons[i])
	}
	a.DetectedAt = strings.TrimSpace(a.DetectedAt)
}

func (a *MultiReasonAppeal) normalize() {
	a.Person.normalize()
	a.DetectedAt = normalizeTimestamp(a.DetectedAt)
}

// normalizeTimestamp renders a validated RFC 3339 value in UTC.
func normalizeTimestamp(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}

// SaveResponse is the JSON response for POST /appeal/task{1,2,3}.
type SaveResponse struct {
	Status string `json:"status"`
	File   string `json:"file"`
	Data   any    `json:"data"`
}

// ListResponse is the JSON response for GET /appeal/.
type ListResponse struct {
	Appeals []Record `json:"appeals"`
}
