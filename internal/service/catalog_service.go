package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"product-advisor-be/internal/dto"
	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/repository/specification"
	"product-advisor-be/internal/repository/unitofwork"
	"product-advisor-be/pkg/funnel"

	"github.com/google/uuid"
)

type ICatalogService interface {
	UpsertProducts(ctx context.Context, request *dto.UpsertCatalogRequest) (*dto.UpsertCatalogResponse, error)
	DeleteProduct(ctx context.Context, article string) error
	Reindex(ctx context.Context) (*dto.ReindexResponse, error)
}

type catalogService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	extractor        *funnel.Extractor
}

func NewCatalogService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) ICatalogService {
	return &catalogService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		extractor:        funnel.NewDefaultExtractor(),
	}
}

// UpsertProducts writes the batch and schedules embedding for every row.
// Filter columns left empty by the feed are auto-tagged from the product
// text with the same keyword rules the chat extractor uses.
func (cs *catalogService) UpsertProducts(ctx context.Context, request *dto.UpsertCatalogRequest) (*dto.UpsertCatalogResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	upserted := make([]*entity.Product, 0, len(request.Products))

	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	for _, p := range request.Products {
		product := &entity.Product{
			Id:          uuid.New(),
			Article:     p.Article,
			Name:        p.Name,
			Url:         p.Url,
			Price:       p.Price,
			OldPrice:    p.OldPrice,
			Category:    p.Category,
			Description: p.Description,
			Attributes:  p.Attributes,
			ProductType: p.ProductType,
			Location:    p.Location,
			Material:    p.Material,
			SizeGroup:   p.SizeGroup,
			CreatedAt:   time.Now(),
		}
		cs.autoTag(product)

		if err := uow.ProductRepository().Upsert(ctx, product); err != nil {
			return nil, fmt.Errorf("upsert product %s: %w", p.Article, err)
		}
		upserted = append(upserted, product)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	for _, product := range upserted {
		if err := cs.publishEmbed(ctx, product.Id); err != nil {
			return nil, fmt.Errorf("schedule embedding for %s: %w", product.Article, err)
		}
	}

	return &dto.UpsertCatalogResponse{Upserted: len(upserted)}, nil
}

func (cs *catalogService) DeleteProduct(ctx context.Context, article string) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByArticle{Article: article})
	if err != nil {
		return fmt.Errorf("find product %s: %w", article, err)
	}
	if product == nil {
		return fmt.Errorf("product %s not found", article)
	}

	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ProductEmbeddingRepository().DeleteByProductId(ctx, product.Id); err != nil {
		return fmt.Errorf("delete embeddings for %s: %w", article, err)
	}
	if err := uow.ProductRepository().Delete(ctx, product.Id); err != nil {
		return fmt.Errorf("delete product %s: %w", article, err)
	}

	return uow.Commit()
}

// Reindex re-schedules embedding for the whole catalog, e.g. after changing
// the embedding model.
func (cs *catalogService) Reindex(ctx context.Context) (*dto.ReindexResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	products, err := uow.ProductRepository().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	for _, product := range products {
		if err := cs.publishEmbed(ctx, product.Id); err != nil {
			return nil, fmt.Errorf("schedule embedding for %s: %w", product.Article, err)
		}
	}

	return &dto.ReindexResponse{Scheduled: len(products)}, nil
}

func (cs *catalogService) publishEmbed(ctx context.Context, productId uuid.UUID) error {
	payload, err := json.Marshal(dto.EmbedProductPayload{ProductId: productId})
	if err != nil {
		return err
	}
	return cs.publisherService.Publish(ctx, payload)
}

func (cs *catalogService) autoTag(product *entity.Product) {
	extracted := cs.extractor.Extract(product.SearchText())
	if product.ProductType == "" {
		product.ProductType = extracted[funnel.KeyProductType]
	}
	if product.Location == "" {
		product.Location = extracted[funnel.KeyLocation]
	}
	if product.Material == "" {
		product.Material = extracted[funnel.KeyMaterial]
	}
	if product.SizeGroup == "" {
		product.SizeGroup = extracted[funnel.KeySizeGroup]
	}
}
