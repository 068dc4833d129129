package curriculum

// ID identifies a course. Catalog ids may be numbers or strings; both are
// kept in their textual form.
type ID string

// Course is one unit of the curriculum. Everything except State comes from
// the catalog and never changes after load.
type Course struct {
	ID          ID
	Name        string
	Year        int
	Term        string
	Description string
	Credits     int
	Before      []ID // must be completed first
	After       []ID // courses that list this one in Before
	State       State
}

// YearGroup holds the terms of one academic year in presentation order.
type YearGroup struct {
	Year  int
	Terms []TermGroup
}

// TermGroup holds the courses of one term, sorted by name.
type TermGroup struct {
	Year    int
	Label   string
	Courses []Course
}

// Prerequisites is the display form of a course's prerequisite sets.
type Prerequisites struct {
	Before string
	After  string
}

// Summary aggregates progress over the registry.
type Summary struct {
	Total            int
	Pending          int
	InProgress       int
	Completed        int
	Eligible         int
	Credits          int
	CreditsCompleted int
}

// Percent returns the share of completed courses in the range 0-100.
func (s Summary) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}
