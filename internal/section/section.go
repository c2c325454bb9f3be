// Package section owns the per-section list state: one independently
// loaded, independently windowed list of recipes per named home-screen
// section. Sections never share state; a load or advance on one section
// cannot touch another.
package section

import "recipe-planner/internal/recipe"

// DefaultChunk is the number of items revealed per advance, and the size of
// the initial visible window.
const DefaultChunk = 6

// Names of the six home-feed sections, in display order.
var Names = []string{"new", "african", "international", "dessert", "popular", "quick"}

// State holds one section's full fetched list and its visible window.
type State struct {
	Items        []recipe.Recipe `json:"items"`
	VisibleCount int             `json:"visible_count"`
	Loading      bool            `json:"loading"`
	Err          string          `json:"error,omitempty"`
	Finished     bool            `json:"finished"`
}

// NewState creates an empty, loading section.
func NewState() *State {
	return &State{VisibleCount: DefaultChunk, Loading: true}
}

// Visible returns the leading window currently exposed to the caller.
func (s *State) Visible() []recipe.Recipe {
	n := s.VisibleCount
	if n > len(s.Items) {
		n = len(s.Items)
	}
	return s.Items[:n]
}

// Advance grows the visible window by chunk items. VisibleCount is
// monotonically non-decreasing, never exceeds len(Items), and stops moving
// once the section is finished; calling Advance on a finished section is a
// no-op.
func (s *State) Advance(chunk int) {
	if s.Finished {
		return
	}
	if chunk <= 0 {
		chunk = DefaultChunk
	}
	next := s.VisibleCount + chunk
	if next >= len(s.Items) {
		next = len(s.Items)
		s.Finished = true
	}
	if next > s.VisibleCount {
		s.VisibleCount = next
	}
}

// setItems installs the aggregated list and clamps the initial window to
// it. A section with nothing left beyond the window is already finished.
func (s *State) setItems(items []recipe.Recipe) {
	s.Items = items
	if s.VisibleCount > len(items) {
		s.VisibleCount = len(items)
	}
	s.Finished = s.VisibleCount >= len(items)
	s.Loading = false
}
