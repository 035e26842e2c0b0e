package postgres

import (
	"github.com/jmoiron/sqlx"

	// PostgreSQL driver for sqlx
	_ "github.com/lib/pq"

	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

// store contains all PostgreSQL based sub-stores for managing the models
type store struct {
	devices    *deviceStore
	history    *historyStore
	whitelists *whitelistStore
}

// NewStore creates a new PostgreSQL based Storage interface
func NewStore(db *sqlx.DB) storage.Interface {
	return &store{
		devices:    newDeviceStore(db),
		history:    newHistoryStore(db),
		whitelists: newWhitelistStore(db),
	}
}

// Devices returns a sub-store for managing the Device model
func (s *store) Devices() storage.DeviceStore {
	return s.devices
}

// History returns a sub-store for managing the HistoryRecord model
func (s *store) History() storage.HistoryStore {
	return s.history
}

// Whitelists returns a sub-store for managing the app whitelists
func (s *store) Whitelists() storage.WhitelistStore {
	return s.whitelists
}
