package booking

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validation failure reasons. The dialogue engine maps each to a specific
// patient-facing message, so callers must be able to tell them apart.
var (
	ErrEmptyName    = errors.New("booking: name is empty")
	ErrInvalidEmail = errors.New("booking: invalid email address")
	ErrInvalidPhone = errors.New("booking: invalid phone number")
	ErrInvalidDate  = errors.New("booking: date is not YYYY-MM-DD")
	ErrPastDate     = errors.New("booking: date is in the past")
	ErrInvalidTime  = errors.New("booking: time is not H:MM AM/PM")
	ErrOutsideHours = errors.New("booking: time is outside clinic hours")
)

var (
	emailPattern = regexp.MustCompile(`^[\w.\-]+@[\w.\-]+\.\w+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	timePattern  = regexp.MustCompile(`^(0?[1-9]|1[0-2]):([0-5][0-9]) ?([AaPp][Mm])$`)
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "3:04 PM"
)

// ValidateName accepts any non-empty trimmed string.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

// ValidateEmail checks the address against a word-chars/dot/hyphen pattern.
// No mailbox or domain verification is attempted.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePhone requires exactly 10 ASCII digits with no formatting.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidateDate parses a YYYY-MM-DD calendar date and requires it to be
// today or later. "Today" is the local date of the supplied clock value.
func ValidateDate(date string, now time.Time) error {
	entered, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return ErrInvalidDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if entered.Before(today) {
		return ErrPastDate
	}
	return nil
}

// Hours is the inclusive window during which appointment times are valid.
type Hours struct {
	Opens  time.Time
	Closes time.Time
}

// ParseHours builds a clinic window from "H:MM AM/PM" strings.
func ParseHours(opens, closes string) (Hours, error) {
	o, err := time.Parse(timeLayout, strings.ToUpper(strings.TrimSpace(opens)))
	if err != nil {
		return Hours{}, fmt.Errorf("booking: parse opening time: %w", err)
	}
	c, err := time.Parse(timeLayout, strings.ToUpper(strings.TrimSpace(closes)))
	if err != nil {
		return Hours{}, fmt.Errorf("booking: parse closing time: %w", err)
	}
	return Hours{Opens: o, Closes: c}, nil
}

// ValidateTime checks the 12-hour format first, then the clinic window.
// The two failure reasons are distinct: a well-formed time outside the
// window returns ErrOutsideHours, anything unparsable returns
// ErrInvalidTime. On success the returned value is the input with its
// meridiem normalized to upper case.
func ValidateTime(raw string, hours Hours) (string, error) {
	trimmed := strings.TrimSpace(raw)
	m := timePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return "", ErrInvalidTime
	}
	canonical := fmt.Sprintf("%s:%s %s", strings.TrimPrefix(m[1], "0"), m[2], strings.ToUpper(m[3]))
	t, err := time.Parse(timeLayout, canonical)
	if err != nil {
		return "", ErrInvalidTime
	}
	if t.Before(hours.Opens) || t.After(hours.Closes) {
		return "", ErrOutsideHours
	}
	return strings.ToUpper(trimmed), nil
}
