package booking

// Stage identifies which field the dialogue engine asks for next. It is
// stored explicitly alongside the draft and kept in lockstep with the set
// fields at every mutation.
type Stage int

const (
	StageName Stage = iota
	StageEmail
	StagePhone
	StageDate
	StageTime
	// StageConfirm means all five fields are collected and the engine is
	// done; the session is waiting for an explicit yes/no.
	StageConfirm
)

// String returns the stage name for logs.
func (s Stage) String() string {
	switch s {
	case StageName:
		return "name"
	case StageEmail:
		return "email"
	case StagePhone:
		return "phone"
	case StageDate:
		return "date"
	case StageTime:
		return "time"
	case StageConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// Draft holds the fields collected so far for one booking attempt. Fields
// are populated strictly in order; a field is only set after its value
// passed validation.
type Draft struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Date  string `json:"date,omitempty"`
	Time  string `json:"time,omitempty"`
}

// Complete reports whether all five fields are set.
func (d Draft) Complete() bool {
	return d.Name != "" && d.Email != "" && d.Phone != "" && d.Date != "" && d.Time != ""
}

// Reset clears every field.
func (d *Draft) Reset() {
	*d = Draft{}
}

// StageFor derives the stage from the first unset field. The engine stores
// the stage explicitly; this exists so the two can be cross-checked.
func StageFor(d Draft) Stage {
	switch {
	case d.Name == "":
		return StageName
	case d.Email == "":
		return StageEmail
	case d.Phone == "":
		return StagePhone
	case d.Date == "":
		return StageDate
	case d.Time == "":
		return StageTime
	default:
		return StageConfirm
	}
}
