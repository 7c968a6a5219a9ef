package appeal

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"fanout-api/internal/validation"
)

const dateLayout = "2006-01-02"

var (
	// Capitalised Cyrillic word, optionally hyphenated: "Иванов", "Римского-Корсаков".
	cyrillicNameRe = regexp.MustCompile(`^[А-ЯЁ][а-яё]+(-[А-ЯЁ][а-яё]+)?$`)
	phoneRe        = regexp.MustCompile(`^(\+7|7|8)\d{10}$`)
	phoneSeparator = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// now is the clock used by the date rules.
var now = time.Now

func init() {
	validation.Messages["cyrillic_name"] = "must be Cyrillic letters starting with a capital letter"
	validation.Messages["ru_phone"] = "must be a Russian phone number: +7 or 8 followed by 10 digits"
	validation.Messages["past_date"] = "must be a YYYY-MM-DD date in the past"
	validation.Messages["not_future"] = "must be an RFC 3339 timestamp not in the future"
	validation.Messages["reason"] = "must be one of: " + strings.Join(ReasonCodes(), ", ")
}

// newValidator returns the shared schema validator with the appeal rules registered.
func newValidator() *validator.Validate {
	v := validation.New()

	rules := map[string]validator.Func{
		"cyrillic_name": isCyrillicName,
		"ru_phone":      isRussianPhone,
		"past_date":     isPastDate,
		"not_future":    isNotFuture,
		"reason":        isReason,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// ReasonCodes lists the accepted reason codes in a stable order.
func ReasonCodes() []string {
	return []string{ReasonNoNetwork, ReasonPhoneNotWorking, ReasonNoEmail, ReasonOther}
}

// NormalizePhone strips separators and rewrites the trunk prefix so that
// "+7 (912) 345-67-89" and "8 912 345 67 89" both become "79123456789".
// Values that are not phone numbers are returned without separators.
func NormalizePhone(s string) string {
	digits := phoneSeparator.Replace(s)
	if !phoneRe.MatchString(digits) {
		return digits
	}
	return "7" + digits[len(digits)-10:]
}

func isCyrillicName(fl validator.FieldLevel) bool {
	return cyrillicNameRe.MatchString(fl.Field().String())
}

func isRussianPhone(fl validator.FieldLevel) bool {
	return phoneRe.MatchString(phoneSeparator.Replace(fl.Field().String()))
}

func isPastDate(fl validator.FieldLevel) bool {
	d, err := time.Parse(dateLayout, fl.Field().String())
	if err != nil {
		return false
	}
	today := now()
	y, m, day := today.Date()
	return d.Before(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

func isNotFuture(fl validator.FieldLevel) bool {
	t, err := time.Parse(time.RFC3339, fl.Field().String())
	if err != nil {
		return false
	}
	return !t.After(now())
}

func isReason(fl validator.FieldLevel) bool {
	_, ok := reasons[fl.Field().String()]
	return ok
}
