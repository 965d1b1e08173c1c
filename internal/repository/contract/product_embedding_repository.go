package contract

import (
	"context"

	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/repository/specification"
	"product-advisor-be/pkg/funnel"

	"github.com/google/uuid"
)

// ScoredProductEmbedding wraps ProductEmbedding with its cosine distance
// to the query vector (0.0 = identical direction).
type ScoredProductEmbedding struct {
	Embedding *entity.ProductEmbedding
	Distance  float64
}

type ProductEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ProductEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ProductEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProductId(ctx context.Context, productId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar runs vector search restricted by funnel equality terms
	// on the joined products table. An empty predicate searches everything.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, predicate funnel.Predicate) ([]*ScoredProductEmbedding, error)
}
