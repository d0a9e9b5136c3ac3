package ui

import (
	"strings"
	"sync"
	"time"
)

// SearchFilter debounces live search input so the table filter does not run
// on every keystroke.
type SearchFilter struct {
	mu          sync.Mutex
	query       string
	activeQuery string
	timer       *time.Timer
	stopped     bool
	onChange    func()
}

const searchDebounce = 250 * time.Millisecond

// NewSearchFilter constructs a filter that invokes onChange from the
// debounce timer goroutine whenever the active query settles.
func NewSearchFilter(onChange func()) *SearchFilter {
	return &SearchFilter{onChange: onChange}
}

// SetQuery records the latest input, normalized for case-insensitive
// matching, and restarts the debounce timer.
func (s *SearchFilter) SetQuery(query string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.query = strings.ToLower(strings.TrimSpace(query))
	if s.timer == nil {
		s.timer = time.AfterFunc(searchDebounce, s.fire)
	} else {
		s.timer.Reset(searchDebounce)
	}
}

// ActiveQuery returns the last settled query.
func (s *SearchFilter) ActiveQuery() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeQuery
}

// Stop cancels any pending debounce; later SetQuery calls are ignored.
func (s *SearchFilter) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
}

func (s *SearchFilter) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.activeQuery = s.query
	cb := s.onChange
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}
