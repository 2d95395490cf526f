package directory

import (
	"sort"
	"sync"
)

// Record is the stored login state for one loginname. Role never changes
// after the record is created; LoggedIn is the only field mutated afterwards.
type Record struct {
	Loginname string
	Role      string
	LoggedIn  bool
}

// Store is a concurrently usable loginname -> Record mapping. Reads take the
// shared lock, writes the exclusive one; a single coarse lock is enough at
// the write rates a login endpoint sees.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	// names mirrors the map keys in sorted order so List and At observe a
	// stable ordering without sorting on every read.
	names []string
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]*Record),
	}
}

// UpsertLoggedIn marks loginname as logged in and returns a snapshot of the
// effective record. A new record is created with roleIfNew; an existing
// record keeps its role untouched.
func (s *Store) UpsertLoggedIn(loginname, roleIfNew string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[loginname]; ok {
		rec.LoggedIn = true
		return *rec
	}

	rec := &Record{
		Loginname: loginname,
		Role:      roleIfNew,
		LoggedIn:  true,
	}
	s.records[loginname] = rec

	i := sort.SearchStrings(s.names, loginname)
	s.names = append(s.names, "")
	copy(s.names[i+1:], s.names[i:])
	s.names[i] = loginname

	return *rec
}

// SetLoggedOut marks loginname as logged out. No-op when the name was never
// seen; the record itself is never removed.
func (s *Store) SetLoggedOut(loginname string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[loginname]; ok {
		rec.LoggedIn = false
	}
}

// Get returns a snapshot of the record for loginname.
func (s *Store) Get(loginname string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[loginname]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// List returns snapshots of every record in loginname order.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, *s.records[name])
	}
	return out
}

// At returns the record at the given position in loginname order.
func (s *Store) At(index int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.names) {
		return Record{}, false
	}
	return *s.records[s.names[index]], true
}

// Len reports the number of loginnames seen so far.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.names)
}
