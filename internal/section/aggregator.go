package section

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipe-planner/internal/provider"
	"recipe-planner/internal/recipe"
)

// Fetcher is a zero-argument fetch bound to one provider. The tag tells the
// normalizer which mapping table to apply to the returned raw items.
type Fetcher struct {
	Tag   provider.Tag
	Fetch func(ctx context.Context) (provider.RawItems, error)
}

// Loader aggregates provider results into section states.
type Loader struct {
	log *zap.Logger
}

// NewLoader creates a Loader. A nil logger is replaced with a no-op one.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log}
}

// Load runs every fetcher, normalizes the successful results and installs
// the concatenation into st. Guarantees:
//
//   - fetchers run independently; one failing contributes zero items and a
//     recorded message without aborting its siblings;
//   - results are buffered per fetcher and concatenated in registration
//     order, not completion order;
//   - if ctx is cancelled before the fetchers settle, st is left untouched,
//     so a late result after view teardown cannot mutate a stale slot.
func (l *Loader) Load(ctx context.Context, st *State, fetchers ...Fetcher) {
	st.Loading = true
	st.Err = ""

	items := make([][]recipe.Recipe, len(fetchers))
	errs := make([]error, len(fetchers))

	var g errgroup.Group
	for i, f := range fetchers {
		g.Go(func() error {
			raws, err := f.Fetch(ctx)
			if err != nil {
				l.log.Warn("provider fetch failed",
					zap.String("provider", string(f.Tag)),
					zap.Error(err))
				errs[i] = err
				return nil
			}
			normalized := make([]recipe.Recipe, 0, len(raws))
			for _, raw := range raws {
				normalized = append(normalized, recipe.Normalize(f.Tag, raw))
			}
			items[i] = normalized
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}

	var combined []recipe.Recipe
	for _, batch := range items {
		combined = append(combined, batch...)
	}

	var msgs []string
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	st.Err = strings.Join(msgs, "; ")
	st.setItems(combined)
}
