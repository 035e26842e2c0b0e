package accounting

import (
	"testing"
	"time"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
	"github.com/Aslhee/MobileCafeServer/pkg/storage/memory"
)

const testDeviceID = "mobile_01"

func ms(epochMillis int64) time.Time {
	return time.UnixMilli(epochMillis)
}

type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) Publish(sourceID, topic string, data interface{}) {
	p.topics = append(p.topics, topic)
}

func newTestService(t *testing.T) (*Service, storage.Interface, *recordingPublisher) {
	t.Helper()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	return NewService(store, pub), store, pub
}

func seedDevice(t *testing.T, store storage.Interface, status model.Status, endTime, savedTime int64) {
	t.Helper()

	err := store.Devices().Create(&model.Device{
		DeviceID: testDeviceID,
		Name:     "Station 1 (Vivo)",
	})
	if err != nil {
		t.Fatalf("failed to seed device: %v", err)
	}

	if status == model.StatusLocked && endTime == 0 && savedTime == 0 {
		return
	}
	_, err = store.Devices().UpdateSession(testDeviceID, "", model.SessionFields{
		Status:    status,
		EndTime:   &endTime,
		SavedTime: &savedTime,
	})
	if err != nil {
		t.Fatalf("failed to seed session state: %v", err)
	}
}

func getDevice(t *testing.T, store storage.Interface) *model.Device {
	t.Helper()
	m, err := store.Devices().FindByDeviceID(testDeviceID)
	if err != nil {
		t.Fatalf("failed to fetch device: %v", err)
	}
	return m
}

func TestAddTimeFromLocked(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusLocked, 0, 0)

	dev, record, err := svc.AddTime(testDeviceID, 60, ms(1000))
	if err != nil {
		t.Fatalf("AddTime() error = %v", err)
	}

	if dev.Status != model.StatusUnlocking {
		t.Errorf("status = %s, want UNLOCKING", dev.Status)
	}
	if want := int64(1000 + 3600000); dev.EndTime != want {
		t.Errorf("endTime = %d, want %d", dev.EndTime, want)
	}
	if dev.SavedTime != 0 {
		t.Errorf("savedTime = %d, want 0", dev.SavedTime)
	}
	if dev.CurrentSessionID != record.ID {
		t.Errorf("currentSessionId = %q, want %q", dev.CurrentSessionID, record.ID)
	}
	if record.TimeDuration != "60 Mins" {
		t.Errorf("timeDuration = %q, want %q", record.TimeDuration, "60 Mins")
	}
	if record.Amount != "P 20.00" {
		t.Errorf("amount = %q, want %q", record.Amount, "P 20.00")
	}
	if record.HasFaceData || record.HasLocationData {
		t.Error("evidence flags must be absent at creation")
	}
}

func TestAddTimeExtendsRunningSession(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusActive, 5000, 0)

	dev, _, err := svc.AddTime(testDeviceID, 15, ms(1000))
	if err != nil {
		t.Fatalf("AddTime() error = %v", err)
	}

	if dev.Status != model.StatusActive {
		t.Errorf("status = %s, want ACTIVE", dev.Status)
	}
	if want := int64(5000 + 900000); dev.EndTime != want {
		t.Errorf("endTime = %d, want %d", dev.EndTime, want)
	}
}

func TestAddTimeToExpiredSessionStartsFresh(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusActive, 5000, 0)

	dev, _, err := svc.AddTime(testDeviceID, 15, ms(6000))
	if err != nil {
		t.Fatalf("AddTime() error = %v", err)
	}

	if dev.Status != model.StatusUnlocking {
		t.Errorf("status = %s, want UNLOCKING", dev.Status)
	}
	if want := int64(6000 + 900000); dev.EndTime != want {
		t.Errorf("endTime = %d, want %d", dev.EndTime, want)
	}
}

func TestAddTimeExtendsFrozenBucket(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusPaused, 0, 120000)

	dev, _, err := svc.AddTime(testDeviceID, 30, ms(1000))
	if err != nil {
		t.Fatalf("AddTime() error = %v", err)
	}

	if dev.Status != model.StatusPaused {
		t.Errorf("status = %s, want PAUSED", dev.Status)
	}
	if want := int64(120000 + 1800000); dev.SavedTime != want {
		t.Errorf("savedTime = %d, want %d", dev.SavedTime, want)
	}
	if dev.EndTime != 0 {
		t.Errorf("endTime = %d, want 0 while paused", dev.EndTime)
	}
}

func TestAddTimeTreatsUnlockingAsExpired(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusUnlocking, 8000, 0)

	dev, _, err := svc.AddTime(testDeviceID, 15, ms(1000))
	if err != nil {
		t.Fatalf("AddTime() error = %v", err)
	}

	if dev.Status != model.StatusUnlocking {
		t.Errorf("status = %s, want UNLOCKING", dev.Status)
	}
	if want := int64(1000 + 900000); dev.EndTime != want {
		t.Errorf("endTime = %d, want fresh %d", dev.EndTime, want)
	}
}

func TestAddTimeUnknownTierPricesAtZero(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusLocked, 0, 0)

	dev, record, err := svc.AddTime(testDeviceID, 45, ms(1000))
	if err != nil {
		t.Fatalf("AddTime() must accept unknown tiers, got error %v", err)
	}

	if record.Amount != "P 0.00" {
		t.Errorf("amount = %q, want %q", record.Amount, "P 0.00")
	}
	if dev.Status != model.StatusUnlocking {
		t.Errorf("status = %s, want UNLOCKING", dev.Status)
	}
}

func TestAddTimeUnknownDevice(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.AddTime("mobile_99", 60, ms(1000))
	if err != storage.ErrNotFound {
		t.Errorf("AddTime() error = %v, want ErrNotFound", err)
	}
}

// conflictingDeviceStore rejects every session write as a lost update.
type conflictingDeviceStore struct {
	storage.DeviceStore
}

func (s *conflictingDeviceStore) UpdateSession(deviceID string, expect model.Status, fields model.SessionFields) (*model.Device, error) {
	return nil, storage.ErrConflict
}

type conflictingStore struct {
	storage.Interface
}

func (s *conflictingStore) Devices() storage.DeviceStore {
	return &conflictingDeviceStore{s.Interface.Devices()}
}

func TestAddTimeMarksRecordWhenDeviceUpdateFails(t *testing.T) {
	base := memory.NewStore()
	seedDevice(t, base, model.StatusLocked, 0, 0)

	svc := NewService(&conflictingStore{base}, nil)

	dev, record, err := svc.AddTime(testDeviceID, 60, ms(1000))
	if err != storage.ErrConflict {
		t.Fatalf("AddTime() error = %v, want ErrConflict", err)
	}
	if dev != nil {
		t.Error("AddTime() must not return a device when the update failed")
	}
	if record == nil {
		t.Fatal("AddTime() must return the already appended record")
	}

	got, err := base.History().FindByID(record.ID)
	if err != nil {
		t.Fatalf("failed to fetch history record: %v", err)
	}
	if !got.DeviceUpdateFailed {
		t.Error("deviceUpdateFailed = false, want record marked for reconciliation")
	}
}

func TestAddTimeAlwaysAppendsHistory(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusLocked, 0, 0)

	for i := 0; i < 3; i++ {
		if _, _, err := svc.AddTime(testDeviceID, 15, ms(1000)); err != nil {
			t.Fatalf("AddTime() error = %v", err)
		}
	}

	records, err := store.History().FetchAll()
	if err != nil {
		t.Fatalf("failed to fetch history: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("history records = %d, want 3", len(records))
	}
}

func TestAddTimePublishesEvents(t *testing.T) {
	svc, store, pub := newTestService(t)
	seedDevice(t, store, model.StatusLocked, 0, 0)

	if _, _, err := svc.AddTime(testDeviceID, 15, ms(1000)); err != nil {
		t.Fatalf("AddTime() error = %v", err)
	}

	var history, session bool
	for _, topic := range pub.topics {
		switch topic {
		case "history":
			history = true
		case "session":
			session = true
		}
	}
	if !history || !session {
		t.Errorf("published topics = %v, want history and session", pub.topics)
	}
}

func TestPauseFreezesRemainingTime(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusActive, 5000, 0)

	dev, err := svc.Pause(testDeviceID, ms(1000))
	if err != nil {
		t.Fatalf("Pause() error = %v", err)
	}

	if dev.Status != model.StatusPaused {
		t.Errorf("status = %s, want PAUSED", dev.Status)
	}
	if dev.SavedTime != 4000 {
		t.Errorf("savedTime = %d, want 4000", dev.SavedTime)
	}
	if dev.EndTime != 0 {
		t.Errorf("endTime = %d, want 0", dev.EndTime)
	}
}

func TestPauseExpiredSession(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusActive, 5000, 0)

	_, err := svc.Pause(testDeviceID, ms(6000))
	if err != ErrAlreadyExpired {
		t.Fatalf("Pause() error = %v, want ErrAlreadyExpired", err)
	}

	dev := getDevice(t, store)
	if dev.Status != model.StatusActive || dev.EndTime != 5000 {
		t.Errorf("expired pause must not mutate state, got %s endTime=%d", dev.Status, dev.EndTime)
	}
}

func TestPauseIsNoOpWhenNotActive(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusLocked, 0, 0)

	dev, err := svc.Pause(testDeviceID, ms(1000))
	if err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if dev.Status != model.StatusLocked {
		t.Errorf("status = %s, want LOCKED", dev.Status)
	}
}

func TestResumeRestoresFrozenTime(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusPaused, 0, 240000)

	dev, err := svc.Resume(testDeviceID, ms(10000))
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}

	if dev.Status != model.StatusActive {
		t.Errorf("status = %s, want ACTIVE", dev.Status)
	}
	if want := int64(10000 + 240000); dev.EndTime != want {
		t.Errorf("endTime = %d, want %d", dev.EndTime, want)
	}
	if dev.SavedTime != 0 {
		t.Errorf("savedTime = %d, want 0", dev.SavedTime)
	}
}

func TestResumeRepairsCorruptSavedTime(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusPaused, 0, 0)

	dev, err := svc.Resume(testDeviceID, ms(2000))
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}

	if want := int64(62000); dev.EndTime != want {
		t.Errorf("endTime = %d, want floor applied %d", dev.EndTime, want)
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusActive, 1000+300000, 0)

	if _, err := svc.Pause(testDeviceID, ms(1000)); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	dev, err := svc.Resume(testDeviceID, ms(50000))
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}

	if want := int64(50000 + 300000); dev.EndTime != want {
		t.Errorf("endTime = %d, want %d", dev.EndTime, want)
	}
}

func TestTogglePauseDispatchesOnStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     model.Status
		endTime    int64
		savedTime  int64
		wantStatus model.Status
	}{
		{"active pauses", model.StatusActive, 5000, 0, model.StatusPaused},
		{"paused resumes", model.StatusPaused, 0, 4000, model.StatusActive},
		{"locked untouched", model.StatusLocked, 0, 0, model.StatusLocked},
		{"unlocking untouched", model.StatusUnlocking, 5000, 0, model.StatusUnlocking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(t)
			seedDevice(t, store, tt.status, tt.endTime, tt.savedTime)

			dev, err := svc.TogglePause(testDeviceID, ms(1000))
			if err != nil {
				t.Fatalf("TogglePause() error = %v", err)
			}
			if dev.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", dev.Status, tt.wantStatus)
			}
		})
	}
}

func TestLockFromAnyState(t *testing.T) {
	tests := []struct {
		name      string
		status    model.Status
		endTime   int64
		savedTime int64
	}{
		{"from locked", model.StatusLocked, 0, 0},
		{"from active", model.StatusActive, 5000, 0},
		{"from paused", model.StatusPaused, 0, 4000},
		{"from unlocking", model.StatusUnlocking, 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(t)
			seedDevice(t, store, tt.status, tt.endTime, tt.savedTime)

			dev, err := svc.Lock(testDeviceID)
			if err != nil {
				t.Fatalf("Lock() error = %v", err)
			}
			if dev.Status != model.StatusLocked {
				t.Errorf("status = %s, want LOCKED", dev.Status)
			}
			if dev.EndTime != 0 {
				t.Errorf("endTime = %d, want 0", dev.EndTime)
			}
			// Lock leaves savedTime alone; status makes it not applicable
			if dev.SavedTime != tt.savedTime {
				t.Errorf("savedTime = %d, want untouched %d", dev.SavedTime, tt.savedTime)
			}
		})
	}
}

func TestLockIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedDevice(t, store, model.StatusActive, 5000, 0)

	first, err := svc.Lock(testDeviceID)
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	second, err := svc.Lock(testDeviceID)
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	if first.Status != second.Status || first.EndTime != second.EndTime || first.SavedTime != second.SavedTime {
		t.Error("Lock must be idempotent")
	}
}
