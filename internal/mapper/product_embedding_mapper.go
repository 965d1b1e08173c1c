package mapper

import (
	"time"

	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ProductEmbeddingMapper struct{}

func NewProductEmbeddingMapper() *ProductEmbeddingMapper {
	return &ProductEmbeddingMapper{}
}

func (m *ProductEmbeddingMapper) ToEntity(e *model.ProductEmbedding) *entity.ProductEmbedding {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ProductEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		ProductId:      e.ProductId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ProductEmbeddingMapper) ToModel(e *entity.ProductEmbedding) *model.ProductEmbedding {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ProductEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		ProductId:      e.ProductId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ProductEmbeddingMapper) ToModels(embeddings []*entity.ProductEmbedding) []*model.ProductEmbedding {
	models := make([]*model.ProductEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
