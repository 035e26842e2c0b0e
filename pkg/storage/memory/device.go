package memory

import (
	"sync"
	"time"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

type deviceStore struct {
	store  map[int32]model.Device
	nextID int32
	sync.RWMutex
}

func newDeviceStore() *deviceStore {
	return &deviceStore{
		store:  make(map[int32]model.Device),
		nextID: 1,
	}
}

func (s *deviceStore) FetchAll() (models map[int32]model.Device, err error) {
	s.RLock()
	defer s.RUnlock()
	models = make(map[int32]model.Device, len(s.store))

	for id, m := range s.store {
		models[id] = m
	}

	return models, nil
}

func (s *deviceStore) FindByID(id int32) (*model.Device, error) {
	s.RLock()
	defer s.RUnlock()
	if m, ok := s.store[id]; ok {
		return &m, nil
	}

	return nil, storage.ErrNotFound
}

func (s *deviceStore) FindByDeviceID(deviceID string) (*model.Device, error) {
	s.RLock()
	defer s.RUnlock()

	for _, m := range s.store {
		if m.DeviceID == deviceID {
			return &m, nil
		}
	}

	return nil, storage.ErrNotFound
}

func (s *deviceStore) Create(m *model.Device) error {
	s.Lock()
	defer s.Unlock()

	m.ID = s.getNextID()

	// Set default values
	if m.Status == "" {
		m.Status = model.StatusLocked
	}

	m.CreatedAt = time.Now().Round(time.Second).UTC()
	m.UpdatedAt = time.Now().Round(time.Second).UTC()

	s.store[m.ID] = *m

	return nil
}

func (s *deviceStore) Delete(id int32) error {
	s.Lock()
	defer s.Unlock()

	_, ok := s.store[id]
	if !ok {
		return storage.ErrNotFound
	}

	delete(s.store, id)

	return nil
}

func (s *deviceStore) UpdateSession(deviceID string, expect model.Status, fields model.SessionFields) (*model.Device, error) {
	s.Lock()
	defer s.Unlock()

	for id, m := range s.store {
		if m.DeviceID != deviceID {
			continue
		}

		if expect != "" && m.Status != expect {
			return nil, storage.ErrConflict
		}

		m.Status = fields.Status
		if fields.EndTime != nil {
			m.EndTime = *fields.EndTime
		}
		if fields.SavedTime != nil {
			m.SavedTime = *fields.SavedTime
		}
		if fields.CurrentSessionID != nil {
			m.CurrentSessionID = *fields.CurrentSessionID
		}
		m.UpdatedAt = time.Now().Round(time.Second).UTC()

		s.store[id] = m
		return &m, nil
	}

	return nil, storage.ErrNotFound
}

func (s *deviceStore) SetBatteryLevel(deviceID string, level int) error {
	s.Lock()
	defer s.Unlock()

	for id, m := range s.store {
		if m.DeviceID != deviceID {
			continue
		}

		m.BatteryLevel = level
		m.UpdatedAt = time.Now().Round(time.Second).UTC()
		s.store[id] = m
		return nil
	}

	return storage.ErrNotFound
}

func (s *deviceStore) getNextID() int32 {
	id := s.nextID
	s.nextID++
	return id
}
