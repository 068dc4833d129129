package repository

import "time"

// StateChange represents one recorded course state transition. StoreKey
// names the progress entry the change belongs to, so catalogs sharing a
// database keep separate histories.
type StateChange struct {
	ID        string
	StoreKey  string
	CourseID  string
	From      string
	To        string
	ChangedAt time.Time
}
