// Package accounting owns the time and state transition rules for rented
// stations: adding paid time, pausing and resuming sessions, locking, and
// the purchase history records derived from the fixed price table.
//
// The store is the sole source of truth. Every transition re-reads the
// current device state immediately before computing the next one, because
// other staff consoles and the rented client itself write the same record
// concurrently. The remaining race window between read and write is closed
// with a conditional update on the expected prior status.
package accounting

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

// ErrAlreadyExpired is reported when a pause is requested for a session
// whose time already ran out. There is nothing left to freeze.
var ErrAlreadyExpired = errors.New("session already expired")

// resumeFloorMillis is substituted when a paused record carries a corrupt
// or zero SavedTime, so a resume never yields an instantly expired session.
const resumeFloorMillis = int64(60000)

// Publisher notifies interested parties about session and history changes.
// A nil Publisher disables notifications.
type Publisher interface {
	Publish(sourceID, topic string, data interface{})
}

// Service implements the session accounting operations for all stations.
// All operations take the current wall-clock time as an explicit argument.
type Service struct {
	store storage.Interface
	pub   Publisher
}

// NewService creates a new session accounting service on top of the
// given storage. pub may be nil.
func NewService(store storage.Interface, pub Publisher) *Service {
	return &Service{
		store: store,
		pub:   pub,
	}
}

// AddTime purchases minutes for a station. The history record is written
// first so that a financial record exists even if the device update fails
// afterwards; the two writes are independent and never rolled back. The
// transition depends on the freshly read device state:
//
//	ACTIVE and not expired  extend the running session silently
//	PAUSED                  extend the frozen time bucket
//	anything else           start fresh and request evidence capture
func (s *Service) AddTime(deviceID string, minutes int, now time.Time) (*model.Device, *model.HistoryRecord, error) {
	dev, err := s.store.Devices().FindByDeviceID(deviceID)
	if err != nil {
		return nil, nil, err
	}

	if !KnownTier(minutes) {
		log.Warnf("accounting: unknown price tier %d minutes for device %s, priced at zero", minutes, deviceID)
	}

	record := &model.HistoryRecord{
		MobileID:     dev.Name,
		TimeDuration: fmt.Sprintf("%d Mins", minutes),
		Amount:       PriceFor(minutes),
		Timestamp:    now.Format(TimestampLayout),
	}
	if err := s.store.History().Create(record); err != nil {
		return nil, nil, errors.Wrap(err, "failed to append history record")
	}
	s.publish(deviceID, "history", record)

	// Re-read the device so the transition never acts on stale state.
	fresh, err := s.store.Devices().FindByDeviceID(deviceID)
	if err != nil {
		return nil, record, err
	}

	nowMillis := now.UnixMilli()
	addMillis := int64(minutes) * 60000

	var newEndTime, newSavedTime int64
	newStatus := model.StatusUnlocking

	if fresh.Status == model.StatusActive && fresh.EndTime > nowMillis {
		newEndTime = fresh.EndTime + addMillis
		newStatus = model.StatusActive // already unlocked, no capture needed
	} else if fresh.Status == model.StatusPaused {
		newSavedTime = fresh.SavedTime + addMillis
		newStatus = model.StatusPaused // clock stays stopped
	} else {
		// Locked or expired: fresh session, client must capture evidence
		newEndTime = nowMillis + addMillis
	}

	updated, err := s.store.Devices().UpdateSession(deviceID, fresh.Status, model.SessionFields{
		Status:           newStatus,
		EndTime:          &newEndTime,
		SavedTime:        &newSavedTime,
		CurrentSessionID: &record.ID,
	})
	if err != nil {
		// The purchase is recorded but the station was not updated. Mark
		// the record for a reconciliation sweep instead of rolling back.
		if markErr := s.store.History().MarkDeviceUpdateFailed(record.ID); markErr != nil {
			log.Errorf("accounting: failed to mark history record %s: %s", record.ID, markErr)
		}
		return nil, record, err
	}

	s.publish(deviceID, "session", updated)

	return updated, record, nil
}

// Pause freezes the remaining time of a running session. Pausing a session
// whose time already elapsed is refused with ErrAlreadyExpired. For any
// status other than ACTIVE the call is a no-op.
func (s *Service) Pause(deviceID string, now time.Time) (*model.Device, error) {
	dev, err := s.store.Devices().FindByDeviceID(deviceID)
	if err != nil {
		return nil, err
	}

	if dev.Status != model.StatusActive {
		return dev, nil
	}

	timeLeft := dev.EndTime - now.UnixMilli()
	if timeLeft <= 0 {
		return dev, ErrAlreadyExpired
	}

	var zero int64
	updated, err := s.store.Devices().UpdateSession(deviceID, model.StatusActive, model.SessionFields{
		Status:    model.StatusPaused,
		EndTime:   &zero,
		SavedTime: &timeLeft,
	})
	if err != nil {
		return nil, err
	}

	s.publish(deviceID, "session", updated)

	return updated, nil
}

// Resume restarts a paused session against the wall clock. A corrupt or
// zero SavedTime is repaired with a one minute floor. For any status other
// than PAUSED the call is a no-op.
func (s *Service) Resume(deviceID string, now time.Time) (*model.Device, error) {
	dev, err := s.store.Devices().FindByDeviceID(deviceID)
	if err != nil {
		return nil, err
	}

	if dev.Status != model.StatusPaused {
		return dev, nil
	}

	timeToRestore := dev.SavedTime
	if timeToRestore <= 0 {
		timeToRestore = resumeFloorMillis
	}

	newEndTime := now.UnixMilli() + timeToRestore

	var zero int64
	updated, err := s.store.Devices().UpdateSession(deviceID, model.StatusPaused, model.SessionFields{
		Status:    model.StatusActive,
		EndTime:   &newEndTime,
		SavedTime: &zero,
	})
	if err != nil {
		return nil, err
	}

	s.publish(deviceID, "session", updated)

	return updated, nil
}

// TogglePause dispatches to Pause or Resume based on the current status,
// matching the single pause/resume action on the staff console. Stations
// that are neither ACTIVE nor PAUSED are left untouched.
func (s *Service) TogglePause(deviceID string, now time.Time) (*model.Device, error) {
	dev, err := s.store.Devices().FindByDeviceID(deviceID)
	if err != nil {
		return nil, err
	}

	switch dev.Status {
	case model.StatusActive:
		return s.Pause(deviceID, now)
	case model.StatusPaused:
		return s.Resume(deviceID, now)
	}

	return dev, nil
}

// Lock forces a station back to LOCKED from any state and clears the end
// time. SavedTime is deliberately left alone: a later resume or purchase
// treats it as not applicable because the status is no longer PAUSED.
// Locking an already locked station is a no-op.
func (s *Service) Lock(deviceID string) (*model.Device, error) {
	var zero int64
	updated, err := s.store.Devices().UpdateSession(deviceID, "", model.SessionFields{
		Status:  model.StatusLocked,
		EndTime: &zero,
	})
	if err != nil {
		return nil, err
	}

	s.publish(deviceID, "session", updated)

	return updated, nil
}

func (s *Service) publish(deviceID, topic string, data interface{}) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(deviceID, topic, data)
}
