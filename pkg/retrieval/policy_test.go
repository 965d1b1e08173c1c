package retrieval

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"product-advisor-be/pkg/funnel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	// predicates records every call in order.
	predicates []funnel.Predicate
	// respond decides the result for a given call index.
	respond func(call int, predicate funnel.Predicate) ([]Hit, error)
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int, predicate funnel.Predicate) ([]Hit, error) {
	copied := make(funnel.Predicate, len(predicate))
	for k, v := range predicate {
		copied[k] = v
	}
	call := len(f.predicates)
	f.predicates = append(f.predicates, copied)
	return f.respond(call, copied)
}

var testOrder = []string{"product_type", "location", "material", "size_group"}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func fullCriteria() map[string]string {
	return map[string]string{
		"product_type": "grille",
		"location":     "outdoor",
		"material":     "metal",
		"size_group":   "small",
	}
}

func TestRetrieveStrictHit(t *testing.T) {
	searcher := &fakeSearcher{
		respond: func(int, funnel.Predicate) ([]Hit, error) {
			return []Hit{{ID: "p1", Distance: 0.2}}, nil
		},
	}
	p := NewPolicy(searcher, testOrder, DefaultLimit, quietLogger())

	result := p.Retrieve(context.Background(), "q", fullCriteria())

	require.Len(t, searcher.predicates, 1)
	assert.Len(t, searcher.predicates[0], 4)
	assert.Equal(t, "p1", result.Hits[0].ID)
	assert.Empty(t, result.RelaxedKeys)
	assert.False(t, result.Unfiltered)
}

func TestRetrieveRelaxesInReverseFunnelOrder(t *testing.T) {
	// Empty until only product_type and location remain.
	searcher := &fakeSearcher{
		respond: func(_ int, predicate funnel.Predicate) ([]Hit, error) {
			if len(predicate) <= 2 {
				return []Hit{{ID: "p2", Distance: 0.3}}, nil
			}
			return nil, nil
		},
	}
	p := NewPolicy(searcher, testOrder, DefaultLimit, quietLogger())

	result := p.Retrieve(context.Background(), "q", fullCriteria())

	assert.Equal(t, []string{"size_group", "material"}, result.RelaxedKeys)
	assert.False(t, result.Unfiltered)

	// Call sequence: strict, minus size_group, minus material.
	require.Len(t, searcher.predicates, 3)
	_, hasSize := searcher.predicates[1]["size_group"]
	assert.False(t, hasSize)
	_, hasMaterial := searcher.predicates[1]["material"]
	assert.True(t, hasMaterial)
	_, hasMaterial = searcher.predicates[2]["material"]
	assert.False(t, hasMaterial)
}

func TestRetrieveFallsBackToUnfiltered(t *testing.T) {
	searcher := &fakeSearcher{
		respond: func(_ int, predicate funnel.Predicate) ([]Hit, error) {
			if len(predicate) == 0 {
				return []Hit{{ID: "p3", Distance: 0.5}}, nil
			}
			return nil, nil
		},
	}
	p := NewPolicy(searcher, testOrder, DefaultLimit, quietLogger())

	result := p.Retrieve(context.Background(), "q", fullCriteria())

	assert.True(t, result.Unfiltered)
	assert.Equal(t, "p3", result.Hits[0].ID)
	// strict + one per criterion + final unfiltered
	assert.Len(t, searcher.predicates, 6)
}

func TestRetrieveNothingAnywhere(t *testing.T) {
	searcher := &fakeSearcher{
		respond: func(int, funnel.Predicate) ([]Hit, error) {
			return nil, nil
		},
	}
	p := NewPolicy(searcher, testOrder, DefaultLimit, quietLogger())

	result := p.Retrieve(context.Background(), "q", fullCriteria())

	assert.Empty(t, result.Hits)
	assert.True(t, result.Unfiltered)
	assert.Len(t, result.RelaxedKeys, 4)
}

func TestRetrieveSkipsUnansweredKeys(t *testing.T) {
	searcher := &fakeSearcher{
		respond: func(int, funnel.Predicate) ([]Hit, error) {
			return nil, nil
		},
	}
	p := NewPolicy(searcher, testOrder, DefaultLimit, quietLogger())

	p.Retrieve(context.Background(), "q", map[string]string{
		"product_type": "grille",
		"material":     "", // don't care: never a filter, never relaxed
	})

	// strict + relax product_type + final unfiltered
	assert.Len(t, searcher.predicates, 3)
}

func TestRetrieveTreatsSearchErrorAsEmpty(t *testing.T) {
	searcher := &fakeSearcher{
		respond: func(call int, predicate funnel.Predicate) ([]Hit, error) {
			if call == 0 {
				return nil, errors.New("index down")
			}
			return []Hit{{ID: "p4", Distance: 0.1}}, nil
		},
	}
	p := NewPolicy(searcher, testOrder, DefaultLimit, quietLogger())

	result := p.Retrieve(context.Background(), "q", fullCriteria())

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "p4", result.Hits[0].ID)
	assert.Equal(t, []string{"size_group"}, result.RelaxedKeys)
}
