package fakehost

import (
	"sync"

	"github.com/me/sourcewatch/pkg/host"
)

// Settings is an in-memory host.Settings for tests.
type Settings struct {
	mu    sync.Mutex
	ints  map[string]int64
	bools map[string]bool
}

var _ host.Settings = (*Settings)(nil)

// NewSettings creates an empty in-memory settings store.
func NewSettings() *Settings {
	return &Settings{ints: make(map[string]int64), bools: make(map[string]bool)}
}

func (s *Settings) GetInt(key string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ints[key]
	return v, ok
}

func (s *Settings) GetBool(key string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.bools[key]
	return v, ok
}

func (s *Settings) SetInt(key string, v int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints[key] = v
	return nil
}

func (s *Settings) SetBool(key string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bools[key] = v
	return nil
}
