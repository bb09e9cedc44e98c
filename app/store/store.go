package store

import (
	"sync"
	"time"

	"sweepboard/app/engine"
	"sweepboard/app/interfaces"

	"github.com/bep/debounce"
)

// SettingsKey is the fixed key under which the results browser persists its
// view state. Other panels would use their own keys against the same store.
const SettingsKey = "results_browser"

// ViewStore persists the per-user view state of the results browser.
type ViewStore interface {
	Load() (*interfaces.ViewState, error)
	Save(state *interfaces.ViewState) error
}

// DefaultViewState returns the state a new user starts from.
func DefaultViewState() *interfaces.ViewState {
	return &interfaces.ViewState{
		Filters:          []interfaces.FilterRule{},
		FilterLogic:      interfaces.LogicAll,
		CompletenessRows: []interfaces.Requirement{},
		ColumnVisibility: map[string]bool{},
		PageSize:         engine.DefaultPageSize,
	}
}

// Normalize repairs a loaded state in place so a stale or partially malformed
// record degrades field by field instead of discarding the user's work. It
// returns the state for chaining; a nil input yields a fresh default.
func Normalize(state *interfaces.ViewState) *interfaces.ViewState {
	if state == nil {
		return DefaultViewState()
	}
	if state.Filters == nil {
		state.Filters = []interfaces.FilterRule{}
	}
	if state.FilterLogic != interfaces.LogicAll && state.FilterLogic != interfaces.LogicAny {
		state.FilterLogic = interfaces.LogicAll
	}
	if state.CompletenessRows == nil {
		state.CompletenessRows = []interfaces.Requirement{}
	}
	if state.ColumnVisibility == nil {
		state.ColumnVisibility = map[string]bool{}
	}
	if state.PageSize < 1 {
		state.PageSize = engine.DefaultPageSize
	}
	return state
}

// Saver debounces writes to a ViewStore so rapid view-state churn (typing in
// a filter operand, toggling columns) collapses into one write. Flush forces
// the pending write out, for shutdown.
type Saver struct {
	store    ViewStore
	debounce func(func())
	onError  func(error)

	mu      sync.Mutex
	pending *interfaces.ViewState
}

// NewSaver creates a debounced saver around a store. onError may be nil;
// write failures are otherwise reported through it, since debounced writes
// have no caller left to return to.
func NewSaver(store ViewStore, wait time.Duration, onError func(error)) *Saver {
	return &Saver{
		store:    store,
		debounce: debounce.New(wait),
		onError:  onError,
	}
}

// Save schedules a write of the given state, superseding any pending one.
// The state is copied by reference; callers hand over ownership.
func (s *Saver) Save(state *interfaces.ViewState) {
	s.mu.Lock()
	s.pending = state
	s.mu.Unlock()
	s.debounce(s.flush)
}

// Flush writes any pending state immediately.
func (s *Saver) Flush() {
	s.flush()
}

func (s *Saver) flush() {
	s.mu.Lock()
	state := s.pending
	s.pending = nil
	s.mu.Unlock()
	if state == nil {
		return
	}
	if err := s.store.Save(state); err != nil && s.onError != nil {
		s.onError(err)
	}
}
