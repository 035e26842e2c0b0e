package model

import "time"

// Device is a model of the persistency layer
type Device struct {
	ID               int32
	DeviceID         string
	Name             string
	Status           Status
	EndTime          int64 // ms since epoch, meaningful for ACTIVE and UNLOCKING only
	SavedTime        int64 // frozen remaining ms, meaningful for PAUSED only
	BatteryLevel     int
	CurrentSessionID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SessionFields carries the device attributes rewritten by a session
// transition. Nil pointer fields are left untouched by the store.
type SessionFields struct {
	Status           Status
	EndTime          *int64
	SavedTime        *int64
	CurrentSessionID *string
}
