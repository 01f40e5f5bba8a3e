// Package store keeps the canonical full records in memory and persists them
// with gob. The search index is a projection of this store; rebuilding the
// snapshot starts from All.
package store

import (
	"log"
	"sort"
	"sync"

	apperrors "github.com/nutrifind/go-food-search/internal/errors"
	"github.com/nutrifind/go-food-search/internal/persistence"
	"github.com/nutrifind/go-food-search/model"
)

// RecordStore is a thread-safe id-keyed store of full records.
type RecordStore struct {
	mu      sync.RWMutex
	records map[uint32]model.FullRecord
}

// New creates an empty record store.
func New() *RecordStore {
	return &RecordStore{records: make(map[uint32]model.FullRecord)}
}

// Put inserts or replaces records by id.
func (s *RecordStore) Put(records ...model.FullRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
}

// Get returns the record for id or a RecordNotFoundError.
func (s *RecordStore) Get(id uint32) (model.FullRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return model.FullRecord{}, apperrors.NewRecordNotFoundError(id)
	}
	return rec, nil
}

// Delete removes the record for id. Deleting an absent id is a no-op.
func (s *RecordStore) Delete(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns every record sorted by id, suitable for snapshot builds.
func (s *RecordStore) All() []model.FullRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FullRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Fetch resolves ids to full records, preserving the input order. Ids that
// are no longer present are skipped with a warning, so a page resolved
// against a stale snapshot may come back shorter than requested.
func (s *RecordStore) Fetch(ids []uint32) ([]model.FullRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FullRecord, 0, len(ids))
	for _, id := range ids {
		rec, ok := s.records[id]
		if !ok {
			log.Printf("Warning: record %d missing from store during fetch, skipping", id)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Save persists the store to filePath.
func (s *RecordStore) Save(filePath string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return persistence.SaveGob(filePath, s.records)
}

// Load replaces the store contents from filePath. A missing file leaves the
// store empty and returns os.ErrNotExist.
func (s *RecordStore) Load(filePath string) error {
	records := make(map[uint32]model.FullRecord)
	if err := persistence.LoadGob(filePath, &records); err != nil {
		return err
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}
