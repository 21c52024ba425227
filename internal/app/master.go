package app

import (
	"sync"

	"gdsa/internal/travel"
)

// MasterFile is the ordered list of saved travels, oldest first.
type MasterFile struct {
	Key string

	mu      sync.RWMutex
	travels []*travel.Travel
}

func NewMasterFile(key string, travels []*travel.Travel) *MasterFile {
	return &MasterFile{Key: key, travels: append([]*travel.Travel(nil), travels...)}
}

// AddTravel appends t, or replaces the stored travel with the same ID in place.
func (m *MasterFile) AddTravel(t *travel.Travel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.travels {
		if existing.ID == t.ID {
			m.travels[i] = t
			return
		}
	}
	m.travels = append(m.travels, t)
}

func (m *MasterFile) RemoveTravel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.travels {
		if existing.ID == id {
			m.travels = append(m.travels[:i], m.travels[i+1:]...)
			return true
		}
	}
	return false
}

func (m *MasterFile) Find(id string) (*travel.Travel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.travels {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Travels returns a copy of the list.
func (m *MasterFile) Travels() []*travel.Travel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*travel.Travel(nil), m.travels...)
}

func (m *MasterFile) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.travels)
}
