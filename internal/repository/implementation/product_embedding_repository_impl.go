package implementation

import (
	"context"

	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/mapper"
	"product-advisor-be/internal/model"
	"product-advisor-be/internal/repository/contract"
	"product-advisor-be/internal/repository/specification"
	"product-advisor-be/pkg/funnel"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ProductEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductEmbeddingMapper
}

func NewProductEmbeddingRepository(db *gorm.DB) contract.ProductEmbeddingRepository {
	return &ProductEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductEmbeddingMapper(),
	}
}

func (r *ProductEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProductEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.ProductEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProductEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ProductEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ProductEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ProductEmbedding{}, id).Error
}

func (r *ProductEmbeddingRepositoryImpl) DeleteByProductId(ctx context.Context, productId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productId).Delete(&model.ProductEmbedding{}).Error
}

func (r *ProductEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductEmbedding, error) {
	var models []*model.ProductEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ProductEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ProductEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ProductEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilar runs pgvector cosine search joined with products so the
// funnel predicate filters on canonical columns in the same query.
func (r *ProductEmbeddingRepositoryImpl) SearchSimilar(
	ctx context.Context,
	embedding []float32,
	limit int,
	predicate funnel.Predicate,
) ([]*contract.ScoredProductEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ProductEmbedding
		Distance float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("product_embeddings").
		Select("product_embeddings.*, embedding_value <=> ? as distance", queryVector).
		Joins("JOIN products ON products.id = product_embeddings.product_id").
		Where("product_embeddings.deleted_at IS NULL").
		Where("products.deleted_at IS NULL")

	query = specification.ByPredicate{Predicate: predicate}.Apply(query)

	err := query.
		Order("distance ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredProductEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredProductEmbedding{
			Embedding: r.mapper.ToEntity(&res.ProductEmbedding),
			Distance:  res.Distance,
		}
	}
	return scored, nil
}
