package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clinicHours(t *testing.T) Hours {
	t.Helper()
	h, err := ParseHours("9:00 AM", "5:00 PM")
	require.NoError(t, err)
	return h
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Asha Rao"))
	assert.ErrorIs(t, ValidateName(""), ErrEmptyName)
	assert.ErrorIs(t, ValidateName("   "), ErrEmptyName)
	assert.ErrorIs(t, ValidateName("\t\n"), ErrEmptyName)
}

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"asha@example.com",
		"first.last@sub.domain.org",
		"with-hyphen@host-name.co",
		"under_score@example.io",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"not-an-email",
		"missing@tld",
		"@example.com",
		"spaces in@example.com",
		"user@example.com extra",
		"",
	}
	for _, email := range invalid {
		assert.ErrorIs(t, ValidateEmail(email), ErrInvalidEmail, email)
	}
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("9876543210"))

	invalid := []string{
		"987654321",    // 9 digits
		"98765432100",  // 11 digits
		"98765 43210",  // whitespace
		"987-654-3210", // formatting
		"98765bcdef",   // letters
		"",
	}
	for _, phone := range invalid {
		assert.ErrorIs(t, ValidatePhone(phone), ErrInvalidPhone, phone)
	}
}

func TestValidateDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	t.Run("today is accepted", func(t *testing.T) {
		assert.NoError(t, ValidateDate("2026-03-15", now))
	})
	t.Run("future is accepted", func(t *testing.T) {
		assert.NoError(t, ValidateDate("2099-01-01", now))
	})
	t.Run("yesterday is rejected as past", func(t *testing.T) {
		assert.ErrorIs(t, ValidateDate("2026-03-14", now), ErrPastDate)
	})
	t.Run("unparsable is a format error", func(t *testing.T) {
		for _, date := range []string{"03/15/2026", "2026-13-01", "tomorrow", ""} {
			assert.ErrorIs(t, ValidateDate(date, now), ErrInvalidDate, date)
		}
	})
}

func TestValidateTimeFormat(t *testing.T) {
	hours := clinicHours(t)

	valid := map[string]string{
		"10:30 AM": "10:30 AM",
		"10:30 am": "10:30 AM",
		"10:30AM":  "10:30AM",
		"9:00 AM":  "9:00 AM",
		"09:00 AM": "09:00 AM",
		"05:00 PM": "05:00 PM",
		"1:05 pm":  "1:05 PM",
	}
	for input, want := range valid {
		got, err := ValidateTime(input, hours)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	invalid := []string{
		"13:00 PM", // hour out of 12h range
		"0:30 AM",
		"10:60 AM",
		"10:30",
		"10:30 XM",
		"half past ten",
		"",
	}
	for _, input := range invalid {
		_, err := ValidateTime(input, hours)
		assert.ErrorIs(t, err, ErrInvalidTime, input)
	}
}

func TestValidateTimeClinicWindow(t *testing.T) {
	hours := clinicHours(t)

	// Boundaries are inclusive.
	for _, input := range []string{"09:00 AM", "05:00 PM"} {
		_, err := ValidateTime(input, hours)
		assert.NoError(t, err, input)
	}

	// Well-formed but outside the window: the reason must be the window,
	// not the format.
	for _, input := range []string{"08:59 AM", "05:01 PM", "11:30 PM", "12:15 AM"} {
		_, err := ValidateTime(input, hours)
		assert.ErrorIs(t, err, ErrOutsideHours, input)
	}
}

func TestParseHoursRejectsGarbage(t *testing.T) {
	_, err := ParseHours("9 o'clock", "5:00 PM")
	assert.Error(t, err)
	_, err = ParseHours("9:00 AM", "seventeen")
	assert.Error(t, err)
}

func TestStageFor(t *testing.T) {
	d := Draft{}
	assert.Equal(t, StageName, StageFor(d))
	d.Name = "Asha Rao"
	assert.Equal(t, StageEmail, StageFor(d))
	d.Email = "asha@example.com"
	assert.Equal(t, StagePhone, StageFor(d))
	d.Phone = "9876543210"
	assert.Equal(t, StageDate, StageFor(d))
	d.Date = "2099-01-01"
	assert.Equal(t, StageTime, StageFor(d))
	d.Time = "10:30 AM"
	assert.Equal(t, StageConfirm, StageFor(d))
	assert.True(t, d.Complete())

	d.Reset()
	assert.Equal(t, Draft{}, d)
	assert.False(t, d.Complete())
}
