package retrieval

import (
	"context"

	"product-advisor-be/pkg/funnel"
)

// DefaultLimit is the number of hits requested per search call.
const DefaultLimit = 5

// Logger receives relaxation and search-failure diagnostics. Satisfied by
// *log.Logger and by adapters over structured loggers.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Policy executes filtered search with progressive relaxation: when the
// strict predicate yields nothing, criteria are dropped one at a time in
// reverse funnel order (least foundational first) until results appear,
// with one final unfiltered attempt as last resort.
//
// For n active criteria the searcher is called at most n+2 times.
type Policy struct {
	searcher Searcher
	order    []string // funnel order; reversed for relaxation
	limit    int
	logger   Logger
}

func NewPolicy(searcher Searcher, order []string, limit int, logger Logger) *Policy {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Policy{
		searcher: searcher,
		order:    order,
		limit:    limit,
		logger:   logger,
	}
}

// Result carries the hits together with the criteria keys that had to be
// dropped to obtain them.
type Result struct {
	Hits        []Hit
	RelaxedKeys []string
	Unfiltered  bool
}

// Retrieve runs the relaxation loop. A searcher failure is logged and
// treated as an empty result set; it never aborts the loop.
func (p *Policy) Retrieve(ctx context.Context, query string, criteria map[string]string) Result {
	predicate := funnel.BuildPredicate(criteria)

	hits := p.search(ctx, query, predicate)
	if len(hits) > 0 {
		return Result{Hits: hits}
	}

	active := make(funnel.Predicate, len(predicate))
	for k, v := range predicate {
		active[k] = v
	}

	var relaxed []string
	for i := len(p.order) - 1; i >= 0; i-- {
		key := p.order[i]
		if _, ok := active[key]; !ok {
			continue
		}
		delete(active, key)
		relaxed = append(relaxed, key)

		hits = p.search(ctx, query, active)
		if len(hits) > 0 {
			p.logger.Printf("[RELAX] dropped filter %q, %d results", key, len(hits))
			return Result{Hits: hits, RelaxedKeys: relaxed}
		}
	}

	// Last resort: no predicate at all. The caller handles an empty
	// final result as "no match".
	hits = p.search(ctx, query, nil)
	if len(hits) > 0 && len(predicate) > 0 {
		p.logger.Printf("[RELAX] all filters dropped, %d results", len(hits))
	}
	return Result{Hits: hits, RelaxedKeys: relaxed, Unfiltered: true}
}

// SearchUnfiltered runs a single predicate-free search, used for grounding
// free-form questions outside the funnel.
func (p *Policy) SearchUnfiltered(ctx context.Context, query string) []Hit {
	return p.search(ctx, query, nil)
}

func (p *Policy) search(ctx context.Context, query string, predicate funnel.Predicate) []Hit {
	hits, err := p.searcher.Search(ctx, query, p.limit, predicate)
	if err != nil {
		p.logger.Printf("[ERROR] index search failed: %v", err)
		return nil
	}
	return hits
}
