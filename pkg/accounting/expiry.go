package accounting

import (
	"fmt"
	"time"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
)

// ExpiryState classifies a station for display purposes.
type ExpiryState int

const (
	ExpiryLocked ExpiryState = iota
	ExpiryActiveRunning
	ExpiryActiveExpired
	ExpiryPaused
)

// Expiry is a derived view of a station's timer, computed fresh on every
// call and never stored. The state machine does not transition by itself
// when time runs out; an expired session stays ACTIVE until an explicit
// Lock, Resume or AddTime, and pollers re-render from this view.
type Expiry struct {
	State       ExpiryState
	RemainingMS int64 // running: time left; paused: frozen time
}

// ExpiryOf derives the display classification of a device at the given
// instant. UNLOCKING carries a live end time and is classified like ACTIVE.
func ExpiryOf(d *model.Device, now time.Time) Expiry {
	switch d.Status {
	case model.StatusActive, model.StatusUnlocking:
		remaining := d.EndTime - now.UnixMilli()
		if remaining > 0 {
			return Expiry{State: ExpiryActiveRunning, RemainingMS: remaining}
		}
		return Expiry{State: ExpiryActiveExpired}
	case model.StatusPaused:
		return Expiry{State: ExpiryPaused, RemainingMS: d.SavedTime}
	}

	return Expiry{State: ExpiryLocked}
}

// Clock renders the remaining or frozen time as mm:ss for list screens.
func (e Expiry) Clock() string {
	minutes := (e.RemainingMS / 1000) / 60
	seconds := (e.RemainingMS / 1000) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
