package storage

import "github.com/Aslhee/MobileCafeServer/pkg/model"

// Interface is implemented by the storage
type Interface interface {
	Devices() DeviceStore
	History() HistoryStore
	Whitelists() WhitelistStore
}

// DeviceStore is responsible for managing the Device model
type DeviceStore interface {
	FetchAll() (map[int32]model.Device, error)
	FindByID(id int32) (*model.Device, error)
	FindByDeviceID(deviceID string) (*model.Device, error)
	Create(m *model.Device) error
	Delete(id int32) error

	// UpdateSession rewrites the session fields of a device. When expect
	// is non-empty the write only succeeds if the stored status still
	// equals expect, otherwise ErrConflict is returned.
	UpdateSession(deviceID string, expect model.Status, fields model.SessionFields) (*model.Device, error)

	SetBatteryLevel(deviceID string, level int) error
}

// HistoryStore is responsible for managing the HistoryRecord model.
// Records are append-only; only the evidence and reconciliation flags
// are ever rewritten.
type HistoryStore interface {
	FetchAll() (map[string]model.HistoryRecord, error)
	FindByID(id string) (*model.HistoryRecord, error)
	Create(m *model.HistoryRecord) error
	SetEvidence(id string, hasFaceData, hasLocationData bool) error
	MarkDeviceUpdateFailed(id string) error
}

// WhitelistStore manages the per-device installed-apps report and the
// allowed-package whitelist.
type WhitelistStore interface {
	InstalledApps(deviceID string) (map[string]string, error)
	SaveInstalledApps(deviceID string, apps map[string]string) error
	Whitelist(deviceID string) ([]string, error)
	SaveWhitelist(deviceID string, packages []string) error
}
