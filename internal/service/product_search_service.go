package service

import (
	"context"
	"fmt"

	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/repository/specification"
	"product-advisor-be/internal/repository/unitofwork"
	"product-advisor-be/pkg/embedding"
	"product-advisor-be/pkg/funnel"
	"product-advisor-be/pkg/retrieval"

	"github.com/google/uuid"
)

// productSearchService adapts the pgvector-backed embedding repository to
// the retrieval.Searcher contract. Chunks of the same product are collapsed
// to the closest one so the relaxation policy ranks products, not chunks.
type productSearchService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
}

var _ retrieval.Searcher = (*productSearchService)(nil)

func NewProductSearchService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
) *productSearchService {
	return &productSearchService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (s *productSearchService) Search(ctx context.Context, query string, limit int, predicate funnel.Predicate) ([]retrieval.Hit, error) {
	res, err := s.embeddingProvider.Generate(query, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Over-fetch so per-product dedup still fills the limit.
	scored, err := uow.ProductEmbeddingRepository().SearchSimilar(ctx, res.Values, limit*3, predicate)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(scored) == 0 {
		return nil, nil
	}

	// Keep the best chunk per product, preserving distance order.
	type bestChunk struct {
		productId uuid.UUID
		document  string
		distance  float64
	}
	seen := make(map[uuid.UUID]bool, len(scored))
	productIds := make([]uuid.UUID, 0, limit)
	best := make([]bestChunk, 0, limit)
	for _, sc := range scored {
		if seen[sc.Embedding.ProductId] {
			continue
		}
		seen[sc.Embedding.ProductId] = true
		productIds = append(productIds, sc.Embedding.ProductId)
		best = append(best, bestChunk{sc.Embedding.ProductId, sc.Embedding.Document, sc.Distance})
		if len(best) >= limit {
			break
		}
	}

	products, err := uow.ProductRepository().FindAll(ctx, specification.ByIDs{IDs: productIds})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byId := make(map[uuid.UUID]*entity.Product, len(products))
	for _, p := range products {
		byId[p.Id] = p
	}

	hits := make([]retrieval.Hit, 0, len(best))
	for _, b := range best {
		product, ok := byId[b.productId]
		if !ok {
			continue
		}
		hits = append(hits, retrieval.Hit{
			ID:         product.Id.String(),
			Text:       b.document,
			Attributes: productFilterAttributes(product),
			Distance:   b.distance,
		})
	}
	return hits, nil
}

func productFilterAttributes(product *entity.Product) map[string]string {
	attrs := map[string]string{
		"article": product.Article,
		"name":    product.Name,
	}
	if product.ProductType != "" {
		attrs[funnel.KeyProductType] = product.ProductType
	}
	if product.Location != "" {
		attrs[funnel.KeyLocation] = product.Location
	}
	if product.Material != "" {
		attrs[funnel.KeyMaterial] = product.Material
	}
	if product.SizeGroup != "" {
		attrs[funnel.KeySizeGroup] = product.SizeGroup
	}
	return attrs
}
