package memory

import (
	"sync"

	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

type whitelistStore struct {
	installed  map[string]map[string]string
	whitelists map[string][]string
	sync.RWMutex
}

func newWhitelistStore() *whitelistStore {
	return &whitelistStore{
		installed:  make(map[string]map[string]string),
		whitelists: make(map[string][]string),
	}
}

func (s *whitelistStore) InstalledApps(deviceID string) (map[string]string, error) {
	s.RLock()
	defer s.RUnlock()

	apps, ok := s.installed[deviceID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	out := make(map[string]string, len(apps))
	for pkg, name := range apps {
		out[pkg] = name
	}

	return out, nil
}

func (s *whitelistStore) SaveInstalledApps(deviceID string, apps map[string]string) error {
	s.Lock()
	defer s.Unlock()

	copied := make(map[string]string, len(apps))
	for pkg, name := range apps {
		copied[pkg] = name
	}
	s.installed[deviceID] = copied

	return nil
}

func (s *whitelistStore) Whitelist(deviceID string) ([]string, error) {
	s.RLock()
	defer s.RUnlock()

	packages := s.whitelists[deviceID]
	out := make([]string, len(packages))
	copy(out, packages)

	return out, nil
}

func (s *whitelistStore) SaveWhitelist(deviceID string, packages []string) error {
	s.Lock()
	defer s.Unlock()

	copied := make([]string, len(packages))
	copy(copied, packages)
	s.whitelists[deviceID] = copied

	return nil
}
