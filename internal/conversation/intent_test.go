package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsQuestion(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"What are your opening hours?", true},
		{"how much does a consultation cost", true},
		{"WHERE is the clinic", true},
		{"when should I arrive", true},
		{"who will see me", true},
		{"which documents do I bring", true},
		{"tell me about your services", true},
		{"is the doctor available on weekends", true},
		{"hello there", false},
		{"book me in please", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsQuestion(tc.text), "text=%q", tc.text)
	}
}

func TestIsBookingIntent(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"I want to book an appointment", true},
		{"can I SCHEDULE something", true},
		{"i need to see the doctor", true},
		{"planning a visit next week", true},
		{"i'd like an appointment please", true},
		{"hello", false},
		{"my email is asha@example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsBookingIntent(tc.text), "text=%q", tc.text)
	}
}
