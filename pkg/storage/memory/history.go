package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

type historyStore struct {
	store  map[string]model.HistoryRecord
	nextID int64
	sync.RWMutex
}

func newHistoryStore() *historyStore {
	return &historyStore{
		store:  make(map[string]model.HistoryRecord),
		nextID: 1,
	}
}

func (s *historyStore) FetchAll() (models map[string]model.HistoryRecord, err error) {
	s.RLock()
	defer s.RUnlock()
	models = make(map[string]model.HistoryRecord, len(s.store))

	for id, m := range s.store {
		models[id] = m
	}

	return models, nil
}

func (s *historyStore) FindByID(id string) (*model.HistoryRecord, error) {
	s.RLock()
	defer s.RUnlock()
	if m, ok := s.store[id]; ok {
		return &m, nil
	}

	return nil, storage.ErrNotFound
}

func (s *historyStore) Create(m *model.HistoryRecord) error {
	s.Lock()
	defer s.Unlock()

	m.ID = s.getNextID()
	m.CreatedAt = time.Now().Round(time.Second).UTC()
	m.UpdatedAt = time.Now().Round(time.Second).UTC()

	s.store[m.ID] = *m

	return nil
}

func (s *historyStore) SetEvidence(id string, hasFaceData, hasLocationData bool) error {
	s.Lock()
	defer s.Unlock()

	m, ok := s.store[id]
	if !ok {
		return storage.ErrNotFound
	}

	m.HasFaceData = hasFaceData
	m.HasLocationData = hasLocationData
	m.UpdatedAt = time.Now().Round(time.Second).UTC()
	s.store[id] = m

	return nil
}

func (s *historyStore) MarkDeviceUpdateFailed(id string) error {
	s.Lock()
	defer s.Unlock()

	m, ok := s.store[id]
	if !ok {
		return storage.ErrNotFound
	}

	m.DeviceUpdateFailed = true
	m.UpdatedAt = time.Now().Round(time.Second).UTC()
	s.store[id] = m

	return nil
}

// getNextID returns a zero-padded decimal so that record IDs sort
// lexicographically in creation order.
func (s *historyStore) getNextID() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%012d", id)
}
