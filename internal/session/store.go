package session

import (
	"sync"

	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

// Payload is the single slot of review state living between "process CSV"
// and the subsequent create-order / sync-stock actions. The target date is
// kept as the raw submitted string so re-parsing on the order side matches
// what the operator saw.
type Payload struct {
	Matched    []models.MatchedItem   `json:"matched_items"`
	Unmatched  []models.UnmatchedItem `json:"unmatched_items"`
	TargetDate string                 `json:"target_date"`
}

// Store holds one Payload per user. A key is either Empty (no upload since
// the last interface visit) or Populated; the engine writes it once per
// upload and actions read it once.
type Store struct {
	mu   sync.RWMutex
	data map[string]Payload
}

func NewStore() *Store {
	return &Store{data: make(map[string]Payload)}
}

func (s *Store) Put(key string, payload Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = payload
}

func (s *Store) Get(key string) (Payload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[key]
	return payload, ok
}

// Clear resets the key to Empty. Called on every fresh interface visit.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}
