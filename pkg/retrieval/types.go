package retrieval

import (
	"context"

	"product-advisor-be/pkg/funnel"
)

// Hit is one search result from the semantic index. The engine only reads
// it; ownership stays with the index collaborator.
type Hit struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes"`
	Distance   float64           `json:"distance"` // cosine distance, lower is closer
}

// Searcher is the semantic-index collaborator: vector similarity search
// restricted by an equality predicate. A nil or empty predicate means
// unfiltered search.
type Searcher interface {
	Search(ctx context.Context, query string, limit int, predicate funnel.Predicate) ([]Hit, error)
}
