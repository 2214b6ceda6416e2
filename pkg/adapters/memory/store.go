package memory

import (
	"context"
	"sync"

	"github.com/aretw0/grouplog/pkg/domain"
)

// Store implements ports.Store in memory.
// Safe for concurrent use. Intended for tests and local development only:
// state does not survive a restart and is not shared between replicas.
type Store struct {
	mu      sync.RWMutex
	groups  map[string]domain.GroupInfo
	flows   map[string]domain.EventLog
	records []domain.CalendarRecord
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		groups: make(map[string]domain.GroupInfo),
		flows:  make(map[string]domain.EventLog),
	}
}

// LoadFlow returns a copy so the caller can't mutate stored state by pointer.
func (s *Store) LoadFlow(ctx context.Context, groupID string) (*domain.EventLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, ok := s.flows[groupID]
	if !ok {
		return nil, domain.ErrFlowNotFound
	}
	return &log, nil
}

// SaveFlow stores a copy of the flow state.
func (s *Store) SaveFlow(ctx context.Context, log *domain.EventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[log.GroupID] = *log
	return nil
}

// DeleteFlow removes the flow state.
func (s *Store) DeleteFlow(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, groupID)
	return nil
}

// CreateGroup stores a copy of the group.
func (s *Store) CreateGroup(ctx context.Context, group *domain.GroupInfo) error {
	copied := *group
	copied.Members = append([]string{}, group.Members...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[group.GroupID] = copied
	return nil
}

// LoadGroup retrieves a copy of the group.
func (s *Store) LoadGroup(ctx context.Context, groupID string) (*domain.GroupInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[groupID]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	group.Members = append([]string{}, group.Members...)
	return &group, nil
}

// DeleteGroup removes the group.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, groupID)
	return nil
}

// AppendRecord stores a copy of the record.
func (s *Store) AppendRecord(ctx context.Context, record *domain.CalendarRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

// FirstRecord returns the earliest appended record of the group.
func (s *Store) FirstRecord(ctx context.Context, groupID string) (*domain.CalendarRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.GroupID == groupID {
			return &rec, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

// DeleteRecords removes every record of the group.
func (s *Store) DeleteRecords(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.GroupID != groupID {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	return nil
}

// Records returns a copy of every record of the group, in insertion order.
func (s *Store) Records(groupID string) []domain.CalendarRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.CalendarRecord
	for _, rec := range s.records {
		if rec.GroupID == groupID {
			out = append(out, rec)
		}
	}
	return out
}
