package resource

import (
	"fmt"
	"sort"
	"time"

	"github.com/Aslhee/MobileCafeServer/pkg/accounting"
	"github.com/Aslhee/MobileCafeServer/pkg/model"
)

type DeviceResource struct {
	ID               int32      `json:"id"`
	DeviceID         string     `json:"deviceId"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	EndTime          int64      `json:"endTime"`
	SavedTime        int64      `json:"savedTime"`
	BatteryLevel     int        `json:"batteryLevel"`
	CurrentSessionID string     `json:"currentSessionId,omitempty"`
	Display          string     `json:"display"`
	Expired          bool       `json:"expired"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

type DeviceListResource struct {
	Members []*DeviceResource `json:"members"`
}

func NewDevice(m *model.Device, now time.Time) (out *DeviceResource) {
	out = &DeviceResource{
		ID:               m.ID,
		DeviceID:         m.DeviceID,
		Name:             m.Name,
		Status:           string(m.Status),
		EndTime:          m.EndTime,
		SavedTime:        m.SavedTime,
		BatteryLevel:     m.BatteryLevel,
		CurrentSessionID: m.CurrentSessionID,
	}

	// Advisory display classification, recomputed on every fetch
	exp := accounting.ExpiryOf(m, now)
	switch exp.State {
	case accounting.ExpiryActiveRunning:
		out.Display = fmt.Sprintf("ACTIVE (%s left)", exp.Clock())
	case accounting.ExpiryActiveExpired:
		out.Display = "EXPIRED (Waiting for Lock)"
		out.Expired = true
	case accounting.ExpiryPaused:
		out.Display = fmt.Sprintf("PAUSED (%s frozen)", exp.Clock())
	default:
		out.Display = "LOCKED"
	}

	if !m.CreatedAt.IsZero() {
		out.CreatedAt = &time.Time{}
		*out.CreatedAt = m.CreatedAt.Round(time.Second)
	}
	if !m.UpdatedAt.IsZero() {
		out.UpdatedAt = &time.Time{}
		*out.UpdatedAt = m.UpdatedAt.Round(time.Second)
	}

	return // out
}

func NewDeviceList(m map[int32]model.Device, now time.Time) (out *DeviceListResource) {
	out = &DeviceListResource{
		Members: make([]*DeviceResource, 0),
	}

	for _, elem := range m {
		out.Members = append(out.Members, NewDevice(&elem, now))
	}

	// Default sort by ID
	sort.Slice(out.Members, func(i, j int) bool {
		return out.Members[i].ID < out.Members[j].ID
	})

	return // out
}

func ValidateDevice(r *DeviceResource) (m *model.Device, err error) {
	if r.DeviceID == "" {
		return nil, fmt.Errorf("deviceId is required")
	}
	if r.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if r.Status != "" && !model.Status(r.Status).Valid() {
		return nil, fmt.Errorf("status is not one of LOCKED, ACTIVE, PAUSED, UNLOCKING")
	}

	m = &model.Device{
		DeviceID:     r.DeviceID,
		Name:         r.Name,
		Status:       model.Status(r.Status),
		EndTime:      r.EndTime,
		SavedTime:    r.SavedTime,
		BatteryLevel: r.BatteryLevel,
	}

	return m, nil
}
