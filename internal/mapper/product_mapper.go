package mapper

import (
	"fmt"
	"time"

	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/model"

	"gorm.io/datatypes"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	attrs := make(map[string]string, len(p.Attributes))
	for k, v := range p.Attributes {
		attrs[k] = fmt.Sprint(v)
	}

	return &entity.Product{
		Id:          p.Id,
		Article:     p.Article,
		Name:        p.Name,
		Url:         p.Url,
		Price:       p.Price,
		OldPrice:    p.OldPrice,
		Category:    p.Category,
		Description: p.Description,
		Attributes:  attrs,
		ProductType: p.ProductType,
		Location:    p.Location,
		Material:    p.Material,
		SizeGroup:   p.SizeGroup,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ProductMapper) ToModel(p *entity.Product) *model.Product {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	attrs := make(datatypes.JSONMap, len(p.Attributes))
	for k, v := range p.Attributes {
		attrs[k] = v
	}

	return &model.Product{
		Id:          p.Id,
		Article:     p.Article,
		Name:        p.Name,
		Url:         p.Url,
		Price:       p.Price,
		OldPrice:    p.OldPrice,
		Category:    p.Category,
		Description: p.Description,
		Attributes:  attrs,
		ProductType: p.ProductType,
		Location:    p.Location,
		Material:    p.Material,
		SizeGroup:   p.SizeGroup,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ProductMapper) ToEntities(products []*model.Product) []*entity.Product {
	entities := make([]*entity.Product, len(products))
	for i, p := range products {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
