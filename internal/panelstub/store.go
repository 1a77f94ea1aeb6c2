// internal/panelstub/store.go
package panelstub

import (
	"sort"
	"sync"
)

// Record is one stored row of a resource.
type Record struct {
	ID     int
	Values map[string]string
}

type store struct {
	mu     sync.RWMutex
	nextID int
	rows   map[string]map[int]Record
}

func newStore() *store {
	return &store{nextID: 1, rows: make(map[string]map[int]Record)}
}

func (s *store) insert(resource string, values map[string]string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows[resource] == nil {
		s.rows[resource] = make(map[int]Record)
	}
	rec := Record{ID: s.nextID, Values: copyValues(values)}
	s.nextID++
	s.rows[resource][rec.ID] = rec
	return rec
}

func (s *store) get(resource string, id int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[resource][id]
	if !ok {
		return Record{}, false
	}
	return Record{ID: rec.ID, Values: copyValues(rec.Values)}, true
}

func (s *store) update(resource string, id int, values map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[resource][id]
	if !ok {
		return false
	}
	for k, v := range values {
		rec.Values[k] = v
	}
	return true
}

func (s *store) delete(resource string, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[resource][id]; !ok {
		return false
	}
	delete(s.rows[resource], id)
	return true
}

// list returns the rows of resource, newest first.
func (s *store) list(resource string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.rows[resource]))
	for _, rec := range s.rows[resource] {
		out = append(out, Record{ID: rec.ID, Values: copyValues(rec.Values)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
