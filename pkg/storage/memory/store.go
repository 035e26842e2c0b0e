package memory

import "github.com/Aslhee/MobileCafeServer/pkg/storage"

// Store contains all memory-based sub-stores for managing the persistent models
type store struct {
	devices    *deviceStore
	history    *historyStore
	whitelists *whitelistStore
}

// NewStore creates a new memory-based Storage interface
func NewStore() storage.Interface {
	return &store{
		devices:    newDeviceStore(),
		history:    newHistoryStore(),
		whitelists: newWhitelistStore(),
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
