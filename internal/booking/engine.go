package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Engine runs the scripted booking dialogue: five fields collected one per
// turn, each validated before it is stored. The engine itself is stateless;
// the caller owns the draft and stage and passes them in every turn.
type Engine struct {
	hours Hours
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's clock, used by date validation.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a dialogue engine for the given clinic window.
func NewEngine(hours Hours, opts ...Option) *Engine {
	e := &Engine{hours: hours, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one dialogue turn.
type Result struct {
	// Reply is the next prompt, a validation error message, or the
	// confirmation summary.
	Reply string
	// Stage is the stage after this turn. Unchanged when validation failed.
	Stage Stage
	// Advanced reports whether a field was accepted this turn.
	Advanced bool
}

// StartPrompt is the first message of the booking script.
const StartPrompt = "Great! Let's book your appointment. What's your full name?"

// Advance processes one trimmed patient utterance against the current stage.
// On validation failure the draft is untouched and the stage does not move;
// the same invalid input always produces the same message. Accepting the
// time field returns the confirmation summary and StageConfirm, after which
// the engine is not re-entered until the draft is reset.
func (e *Engine) Advance(d *Draft, stage Stage, input string) Result {
	input = strings.TrimSpace(input)

	switch stage {
	case StageName:
		if err := ValidateName(input); err != nil {
			return Result{Reply: "Please enter your full name.", Stage: stage}
		}
		d.Name = input
		return Result{
			Reply:    fmt.Sprintf("Welcome, %s! Please enter your email address.", d.Name),
			Stage:    StageEmail,
			Advanced: true,
		}

	case StageEmail:
		if err := ValidateEmail(input); err != nil {
			return Result{Reply: "Invalid email address. Please enter a valid email.", Stage: stage}
		}
		d.Email = input
		return Result{
			Reply:    "Please enter your 10-digit phone number.",
			Stage:    StagePhone,
			Advanced: true,
		}

	case StagePhone:
		if err := ValidatePhone(input); err != nil {
			return Result{Reply: "Invalid phone number. Please enter a valid 10-digit number.", Stage: stage}
		}
		d.Phone = input
		return Result{
			Reply:    "Please enter the appointment date (YYYY-MM-DD).",
			Stage:    StageDate,
			Advanced: true,
		}

	case StageDate:
		if err := ValidateDate(input, e.now()); err != nil {
			if errors.Is(err, ErrPastDate) {
				return Result{Reply: "That date has already passed. Please enter today's date or a future date in YYYY-MM-DD format.", Stage: stage}
			}
			return Result{Reply: "Invalid date. Please enter a date in YYYY-MM-DD format.", Stage: stage}
		}
		d.Date = input
		return Result{
			Reply:    "Please enter the appointment time (e.g. 10:30 AM).",
			Stage:    StageTime,
			Advanced: true,
		}

	case StageTime:
		normalized, err := ValidateTime(input, e.hours)
		if err != nil {
			if errors.Is(err, ErrOutsideHours) {
				return Result{
					Reply: fmt.Sprintf("The selected time is outside clinic hours. Appointments are available between %s and %s.",
						e.hours.Opens.Format(timeLayout), e.hours.Closes.Format(timeLayout)),
					Stage: stage,
				}
			}
			return Result{Reply: "Invalid time format. Please enter the time as HH:MM AM/PM (example: 10:30 AM).", Stage: stage}
		}
		d.Time = normalized
		return Result{
			Reply:    e.Summary(*d),
			Stage:    StageConfirm,
			Advanced: true,
		}

	default:
		// StageConfirm turns belong to the confirmation bridge, not the
		// engine; reaching this is a routing bug.
		return Result{Reply: "Type yes to confirm or no to cancel your booking.", Stage: stage}
	}
}

// Summary formats the confirmation recap shown once all fields are set.
func (e *Engine) Summary(d Draft) string {
	var b strings.Builder
	b.WriteString("Please confirm your appointment details:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", d.Name)
	fmt.Fprintf(&b, "Email: %s\n", d.Email)
	fmt.Fprintf(&b, "Phone: %s\n", d.Phone)
	fmt.Fprintf(&b, "Date: %s\n", d.Date)
	fmt.Fprintf(&b, "Time: %s\n", d.Time)
	b.WriteString("\nType yes to confirm or no to cancel.")
	return b.String()
}
