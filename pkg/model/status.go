package model

// Status is the closed set of states a rented station can be in.
type Status string

const (
	// StatusLocked is the initial state of a newly provisioned station.
	StatusLocked Status = "LOCKED"
	// StatusActive means a paid session is running against the wall clock.
	StatusActive Status = "ACTIVE"
	// StatusPaused means the remaining time is frozen in SavedTime.
	StatusPaused Status = "PAUSED"
	// StatusUnlocking tells the client station to capture identity and
	// location evidence before granting access.
	StatusUnlocking Status = "UNLOCKING"
)

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusLocked, StatusActive, StatusPaused, StatusUnlocking:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
