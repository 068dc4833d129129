package curriculum

import "strings"

// State is the completion state of a course.
type State string

const (
	// Pending means the course has not been started.
	Pending State = "pending"

	// InProgress means the course is being taken.
	InProgress State = "in_progress"

	// Completed means the course is passed.
	Completed State = "completed"
)

// String returns the stored label of the state.
func (s State) String() string {
	return string(s)
}

// Valid reports whether s is one of the three known states.
func (s State) Valid() bool {
	return s == Pending || s == InProgress || s == Completed
}

// Next returns the state that follows s in the cycle
// pending -> in_progress -> completed -> pending.
// Anything unrecognised restarts the cycle at Pending.
func (s State) Next() State {
	switch s {
	case Pending:
		return InProgress
	case InProgress:
		return Completed
	default:
		return Pending
	}
}

// Label returns a short human readable name.
func (s State) Label() string {
	switch s {
	case InProgress:
		return "In progress"
	case Completed:
		return "Completed"
	default:
		return "Pending"
	}
}

var stateAliases = map[string]State{
	"pending":     Pending,
	"pendiente":   Pending,
	"in_progress": InProgress,
	"in-progress": InProgress,
	"inprogress":  InProgress,
	"cursando":    InProgress,
	"completed":   Completed,
	"aprobada":    Completed,
	"aprobado":    Completed,
}

// ParseState maps a stored label to a State. Older snapshots written with
// Spanish labels are accepted too.
func ParseState(label string) (State, bool) {
	s, ok := stateAliases[strings.ToLower(strings.TrimSpace(label))]
	return s, ok
}
