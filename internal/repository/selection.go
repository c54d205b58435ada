package repository

import "sync"

// Selection remembers the one task shown in detail, by id.
type Selection struct {
	mu sync.Mutex
	id string
}

func (s *Selection) Select(id string) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

func (s *Selection) Clear() {
	s.Select("")
}

// ClearIf clears the selection only when id is selected.
func (s *Selection) ClearIf(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" || s.id != id {
		return false
	}
	s.id = ""
	return true
}

func (s *Selection) ID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.id != ""
}
