package conversation

import "strings"

// questionKeywords marks turns worth a retrieval attempt before anything
// else is tried.
var questionKeywords = []string{
	"what", "when", "where", "who", "which", "how",
	"timing", "time", "doctor", "clinic", "services",
	"documents", "available",
}

// bookingKeywords starts the booking script when no document answer exists.
var bookingKeywords = []string{
	"book", "booking", "appointment", "doctor", "schedule", "visit",
}

// IsQuestion reports whether the utterance looks like a question about the
// clinic. Plain substring membership over the lower-cased text.
func IsQuestion(text string) bool {
	return containsAny(strings.ToLower(text), questionKeywords)
}

// IsBookingIntent reports whether the utterance asks to book an appointment.
func IsBookingIntent(text string) bool {
	return containsAny(strings.ToLower(text), bookingKeywords)
}

func containsAny(text string, keywords []string) bool {
	for _, word := range keywords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
