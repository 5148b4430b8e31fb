package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// MemoryStore is an in-memory RecordStore, safe for concurrent use. It backs
// tests and local development without a GCP project; data is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]domain.Record // userID -> record ID -> record
	subs    map[string]map[int]func([]domain.SavedRecord)
	nextSub int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]map[string]domain.Record),
		subs:    make(map[string]map[int]func([]domain.SavedRecord)),
	}
}

// Create implements RecordStore.
func (s *MemoryStore) Create(ctx context.Context, userID string, rec domain.Record) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}

	id := uuid.NewString()

	s.mu.Lock()
	if s.records[userID] == nil {
		s.records[userID] = make(map[string]domain.Record)
	}
	s.records[userID][id] = rec
	s.mu.Unlock()

	s.notify(userID)
	return id, nil
}

// Update implements RecordStore with full-document overwrite semantics.
func (s *MemoryStore) Update(ctx context.Context, userID, id string, rec domain.Record) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	s.mu.Lock()
	if _, ok := s.records[userID][id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.records[userID][id] = rec
	s.mu.Unlock()

	s.notify(userID)
	return nil
}

// Delete implements RecordStore.
func (s *MemoryStore) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	s.mu.Lock()
	if _, ok := s.records[userID][id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.records[userID], id)
	s.mu.Unlock()

	s.notify(userID)
	return nil
}

// List implements RecordStore.
func (s *MemoryStore) List(ctx context.Context, userID string) ([]domain.SavedRecord, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(userID), nil
}

// Subscribe implements RecordStore. The initial snapshot is delivered
// synchronously before Subscribe returns; every later mutation delivers a
// fresh complete replacement set.
func (s *MemoryStore) Subscribe(ctx context.Context, userID string, fn func([]domain.SavedRecord)) (func(), error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]func([]domain.SavedRecord))
	}
	subID := s.nextSub
	s.nextSub++
	s.subs[userID][subID] = fn
	initial := s.snapshotLocked(userID)
	s.mu.Unlock()

	fn(initial)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[userID], subID)
			s.mu.Unlock()
		})
	}
	return stop, nil
}

// snapshotLocked builds the date-descending replacement set. Callers hold at
// least the read lock.
func (s *MemoryStore) snapshotLocked(userID string) []domain.SavedRecord {
	records := make([]domain.SavedRecord, 0, len(s.records[userID]))
	for id, rec := range s.records[userID] {
		records = append(records, domain.SavedRecord{ID: id, Record: rec})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID < records[j].ID
	})
	return records
}

func (s *MemoryStore) notify(userID string) {
	s.mu.RLock()
	snapshot := s.snapshotLocked(userID)
	fns := make([]func([]domain.SavedRecord), 0, len(s.subs[userID]))
	for _, fn := range s.subs[userID] {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

var _ RecordStore = (*MemoryStore)(nil)
