package accounting

import (
	"testing"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
)

func TestExpiryOf(t *testing.T) {
	tests := []struct {
		name          string
		status        model.Status
		endTime       int64
		savedTime     int64
		nowMillis     int64
		wantState     ExpiryState
		wantRemaining int64
	}{
		{"locked", model.StatusLocked, 0, 0, 1000, ExpiryLocked, 0},
		{"active running", model.StatusActive, 5000, 0, 1000, ExpiryActiveRunning, 4000},
		{"active expired", model.StatusActive, 5000, 0, 6000, ExpiryActiveExpired, 0},
		{"active at boundary", model.StatusActive, 5000, 0, 5000, ExpiryActiveExpired, 0},
		{"unlocking running", model.StatusUnlocking, 5000, 0, 1000, ExpiryActiveRunning, 4000},
		{"paused", model.StatusPaused, 0, 90000, 1000, ExpiryPaused, 90000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &model.Device{
				Status:    tt.status,
				EndTime:   tt.endTime,
				SavedTime: tt.savedTime,
			}
			got := ExpiryOf(d, ms(tt.nowMillis))
			if got.State != tt.wantState {
				t.Errorf("state = %d, want %d", got.State, tt.wantState)
			}
			if got.RemainingMS != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", got.RemainingMS, tt.wantRemaining)
			}
		})
	}
}

func TestExpiryClock(t *testing.T) {
	tests := []struct {
		millis int64
		want   string
	}{
		{0, "00:00"},
		{59000, "00:59"},
		{60000, "01:00"},
		{3599000, "59:59"},
		{3600000, "60:00"},
	}

	for _, tt := range tests {
		e := Expiry{RemainingMS: tt.millis}
		if got := e.Clock(); got != tt.want {
			t.Errorf("Clock(%d) = %q, want %q", tt.millis, got, tt.want)
		}
	}
}
