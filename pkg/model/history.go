package model

import "time"

// HistoryRecord is a model of the persistency layer. One record is appended
// per add-time purchase and never deleted. The evidence flags are flipped
// later by the capture pipeline, everything else is immutable.
type HistoryRecord struct {
	ID                 string
	MobileID           string // station display name at time of purchase
	TimeDuration       string // e.g. "60 Mins"
	Amount             string // e.g. "P 20.00"
	Timestamp          string // e.g. "Jan 03, 07:00 PM"
	HasFaceData        bool
	HasLocationData    bool
	DeviceUpdateFailed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
