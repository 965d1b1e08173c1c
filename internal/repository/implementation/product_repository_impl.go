package implementation

import (
	"context"
	"errors"

	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/mapper"
	"product-advisor-be/internal/model"
	"product-advisor-be/internal/repository/contract"
	"product-advisor-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductMapper
}

func NewProductRepository(db *gorm.DB) contract.ProductRepository {
	return &ProductRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductMapper(),
	}
}

func (r *ProductRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProductRepositoryImpl) Create(ctx context.Context, product *entity.Product) error {
	m := r.mapper.ToModel(product)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*product = *r.mapper.ToEntity(m)
	return nil
}

// Upsert inserts or refreshes a product keyed by its article, so repeated
// catalog loads converge instead of duplicating rows.
func (r *ProductRepositoryImpl) Upsert(ctx context.Context, product *entity.Product) error {
	m := r.mapper.ToModel(product)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "article"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "url", "price", "old_price", "category", "description",
			"attributes", "product_type", "location", "material", "size_group",
			"updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	// Re-read so the caller sees the persisted row id on conflict.
	var persisted model.Product
	if err := r.db.WithContext(ctx).Where("article = ?", m.Article).First(&persisted).Error; err != nil {
		return err
	}
	*product = *r.mapper.ToEntity(&persisted)
	return nil
}

func (r *ProductRepositoryImpl) Update(ctx context.Context, product *entity.Product) error {
	m := r.mapper.ToModel(product)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*product = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProductRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *ProductRepositoryImpl) DeleteByArticle(ctx context.Context, article string) error {
	return r.db.WithContext(ctx).Where("article = ?", article).Delete(&model.Product{}).Error
}

func (r *ProductRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	var m model.Product
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProductRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	var models []*model.Product
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProductRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Product{}).Count(&count).Error
	return count, err
}
