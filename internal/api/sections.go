package api

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipe-planner/internal/provider"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/section"
)

// sectionSummary is the wire shape of one home section: the visible
// window plus enough state for a client to render spinners, error rows
// and the end-of-list marker.
type sectionSummary struct {
	Name         string          `json:"name"`
	Items        []recipe.Recipe `json:"items"`
	VisibleCount int             `json:"visible_count"`
	Total        int             `json:"total"`
	Error        string          `json:"error,omitempty"`
	Finished     bool            `json:"finished"`
}

// sectionSet holds one lazily-loaded State per named section. Each
// section loads on first access and then serves from memory; advancing
// the window never refetches. Every read and write of a loaded State
// happens under its entry's mutex.
type sectionSet struct {
	loader   *section.Loader
	fetchers func(name string) []section.Fetcher

	mu      sync.Mutex
	entries map[string]*sectionEntry
}

type sectionEntry struct {
	mu     sync.Mutex
	loaded bool
	state  *section.State
}

func newSectionSet(log *zap.Logger, fetchers func(name string) []section.Fetcher) *sectionSet {
	return &sectionSet{
		loader:   section.NewLoader(log),
		fetchers: fetchers,
		entries:  make(map[string]*sectionEntry),
	}
}

func (s *sectionSet) entry(name string) (*sectionEntry, []section.Fetcher, error) {
	fetchers := s.fetchers(name)
	if fetchers == nil {
		return nil, nil, fmt.Errorf("unknown section %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		e = &sectionEntry{state: section.NewState()}
		s.entries[name] = e
	}
	return e, fetchers, nil
}

// ensureLoaded is called with e.mu held. A load whose context was
// cancelled leaves the state untouched and does not latch, so the next
// request retries instead of serving a permanently empty section.
func (e *sectionEntry) ensureLoaded(ctx context.Context, loader *section.Loader, fetchers []section.Fetcher) {
	if e.loaded {
		return
	}
	loader.Load(ctx, e.state, fetchers...)
	if ctx.Err() == nil {
		e.loaded = true
	}
}

func (s *sectionSet) summary(ctx context.Context, name string) (*sectionSummary, error) {
	e, fetchers, err := s.entry(name)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx, s.loader, fetchers)
	return summarize(name, e.state), nil
}

func (s *sectionSet) advance(ctx context.Context, name string) (*sectionSummary, error) {
	e, fetchers, err := s.entry(name)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx, s.loader, fetchers)
	e.state.Advance(section.DefaultChunk)
	return summarize(name, e.state), nil
}

// invalidate drops a section's loaded list so the next request refetches.
func (s *sectionSet) invalidate(name string) {
	s.mu.Lock()
	e := s.entries[name]
	s.mu.Unlock()
	if e == nil {
		return
	}
	e.mu.Lock()
	e.loaded = false
	e.state = section.NewState()
	e.mu.Unlock()
}

// summaries loads all sections concurrently. A section whose fetchers
// all failed still appears, carrying its error string.
func (s *sectionSet) summaries(ctx context.Context) ([]*sectionSummary, error) {
	out := make([]*sectionSummary, len(section.Names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range section.Names {
		g.Go(func() error {
			summary, err := s.summary(ctx, name)
			if err != nil {
				return err
			}
			out[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func summarize(name string, st *section.State) *sectionSummary {
	return &sectionSummary{
		Name:         name,
		Items:        st.Visible(),
		VisibleCount: st.VisibleCount,
		Total:        len(st.Items),
		Error:        st.Err,
		Finished:     st.Finished,
	}
}

// sectionFetchers maps section names to their remote or local sources.
// The quick section reuses the international pool and relies on the
// duration facet client-side, matching the home screen's layout.
func (h *Handler) sectionFetchers(name string) []section.Fetcher {
	switch name {
	case "new":
		return []section.Fetcher{{
			Tag: provider.TagLocal,
			Fetch: func(ctx context.Context) (provider.RawItems, error) {
				return h.recipes.RawNewest(ctx, 50)
			},
		}}
	case "african":
		return []section.Fetcher{{Tag: provider.TagEdamam, Fetch: h.edamam.AfricanRecipes}}
	case "international":
		return []section.Fetcher{{
			Tag: provider.TagSpoonacular,
			Fetch: func(ctx context.Context) (provider.RawItems, error) {
				return h.spoonacular.Search(ctx, "pasta")
			},
		}}
	case "dessert":
		return []section.Fetcher{{Tag: provider.TagMealDB, Fetch: h.mealdb.DessertRecipes}}
	case "popular":
		return []section.Fetcher{{Tag: provider.TagSpoonacular, Fetch: h.spoonacular.PopularRecipes}}
	case "quick":
		return []section.Fetcher{{
			Tag: provider.TagSpoonacular,
			Fetch: func(ctx context.Context) (provider.RawItems, error) {
				return h.spoonacular.Search(ctx, "quick easy")
			},
		}}
	default:
		return nil
	}
}

// searchSnapshot is the combined pool the search screen filters over:
// local recipes plus the african, dessert and popular remote sources.
// It loads once and is then filtered in memory per request; a load cut
// short by a cancelled request does not latch, so the next request
// retries.
type searchSnapshot struct {
	loader   *section.Loader
	fetchers func() []section.Fetcher

	mu     sync.Mutex
	loaded bool
	state  *section.State
}

func newSearchSnapshot(log *zap.Logger, fetchers func() []section.Fetcher) *searchSnapshot {
	return &searchSnapshot{
		loader:   section.NewLoader(log),
		fetchers: fetchers,
		state:    section.NewState(),
	}
}

func (s *searchSnapshot) get(ctx context.Context) ([]recipe.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.loader.Load(ctx, s.state, s.fetchers()...)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.loaded = true
	}

	if s.state.Err != "" && len(s.state.Items) == 0 {
		return nil, fmt.Errorf("search sources unavailable: %s", s.state.Err)
	}
	return s.state.Items, nil
}

// invalidate drops the pool so the next search rebuilds it.
func (s *searchSnapshot) invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.state = section.NewState()
	s.mu.Unlock()
}

func (h *Handler) snapshotFetchers() []section.Fetcher {
	return []section.Fetcher{
		{
			Tag: provider.TagLocal,
			Fetch: func(ctx context.Context) (provider.RawItems, error) {
				return h.recipes.RawNewest(ctx, 50)
			},
		},
		{Tag: provider.TagEdamam, Fetch: h.edamam.AfricanRecipes},
		{Tag: provider.TagMealDB, Fetch: h.mealdb.DessertRecipes},
		{Tag: provider.TagSpoonacular, Fetch: h.spoonacular.PopularRecipes},
	}
}
