package state

import "sync"

// MemoryStore is an in-memory Store for tests and throwaway web sessions.
type MemoryStore struct {
	mu       sync.Mutex
	config   *DeviceConfig
	schedule *CachedSchedule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Config() (DeviceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return DeviceConfig{}, ErrNotFound
	}
	return *s.config, nil
}

func (s *MemoryStore) SaveConfig(cfg DeviceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = &cfg
	return nil
}

func (s *MemoryStore) CachedSchedule() (CachedSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return CachedSchedule{}, ErrNotFound
	}
	return *s.schedule, nil
}

func (s *MemoryStore) SaveSchedule(sched CachedSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = &sched
	return nil
}

func (s *MemoryStore) Close() error { return nil }
