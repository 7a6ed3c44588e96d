package conversation

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for development and tests. Logs are
// locked per user so traffic for different users never contends.
type MemoryStore struct {
	mu   sync.Mutex
	logs map[string]*memoryLog
}

type memoryLog struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string]*memoryLog)}
}

func (s *MemoryStore) log(userID string, create bool) *memoryLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[userID]
	if !ok && create {
		l = &memoryLog{}
		s.logs[userID] = l
	}
	return l
}

func (s *MemoryStore) Append(_ context.Context, userID string, rec Record) error {
	l := s.log(userID, true)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

func (s *MemoryStore) RecentWindow(_ context.Context, userID string, maxMessages int) ([]Record, error) {
	l := s.log(userID, false)
	if l == nil || maxMessages <= 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	start := len(l.records) - maxMessages
	if start < 0 {
		start = 0
	}
	window := make([]Record, len(l.records)-start)
	copy(window, l.records[start:])
	return window, nil
}

func (s *MemoryStore) Reset(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, userID)
	return nil
}
