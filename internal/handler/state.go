package handler

import (
	"sync"

	lib "scholarvault/internal/library"
)

// BrowseState is the browse server's single expand/selection state.
// Every handler that reads or changes the view goes through it.
type BrowseState struct {
	mu   sync.Mutex
	view *lib.ViewState
}

func NewBrowseState() *BrowseState {
	return &BrowseState{view: lib.NewViewState()}
}

// With runs fn while holding the state lock
func (s *BrowseState) With(fn func(view *lib.ViewState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.view)
}
