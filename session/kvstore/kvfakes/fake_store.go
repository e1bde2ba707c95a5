package kvfakes

import (
	"sync"

	"github.com/docuvault/go-admin-core/session/kvstore"
)

var _ kvstore.Store = (*FakeStore)(nil)

// FakeStore is an in-memory kvstore.Store with error injection for tests.
type FakeStore struct {
	GetErr    error
	SetErr    error
	RemoveErr error

	lock sync.Mutex
	data map[string][]byte
}

func NewFakeStore() *FakeStore {
	return &FakeStore{data: make(map[string][]byte)}
}

func (s *FakeStore) Get(key string) ([]byte, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.GetErr != nil {
		return nil, false, s.GetErr
	}
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *FakeStore) Set(key string, value []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.data[key] = append([]byte{}, value...)
	return nil
}

func (s *FakeStore) Remove(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	delete(s.data, key)
	return nil
}

// Has reports whether a key currently exists.
func (s *FakeStore) Has(key string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.data[key]
	return ok
}
