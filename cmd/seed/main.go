package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"product-advisor-be/internal/config"
	"product-advisor-be/internal/dto"
	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/repository/unitofwork"
	"product-advisor-be/internal/service"
	"product-advisor-be/pkg/database"
	"product-advisor-be/pkg/embedding"
	"product-advisor-be/pkg/funnel"
	"product-advisor-be/pkg/utils"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Offline catalog seeder: reads a JSON product feed, upserts every row and
// embeds it synchronously. Meant for initial setup and CI fixtures; the
// running server ingests through the catalog API instead.
func main() {
	filePath := flag.String("file", "catalog.json", "path to the product feed JSON")
	flag.Parse()

	cfg := config.Load()

	color.Cyan("🚀 Seeding catalog from %s\n", *filePath)

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	uowFactory := unitofwork.NewRepositoryFactory(db)

	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		color.Red("Failed to read feed: %v", err)
		os.Exit(1)
	}
	var feed []dto.UpsertProductRequest
	if err := json.Unmarshal(raw, &feed); err != nil {
		color.Red("Failed to parse feed: %v", err)
		os.Exit(1)
	}
	color.Yellow("Feed contains %d products", len(feed))

	ctx := context.Background()
	extractor := funnel.NewDefaultExtractor()
	seeded := 0

	for _, p := range feed {
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
		autoTag(extractor, product)

		uow := uowFactory.NewUnitOfWork(ctx)
		// Upsert rewrites the entity with the persisted row, so the id is
		// correct even when the article already existed.
		if err := uow.ProductRepository().Upsert(ctx, product); err != nil {
			color.Red("Upsert %s failed: %v", p.Article, err)
			continue
		}

		if err := embedProduct(ctx, uow, embeddingProvider, product); err != nil {
			color.Red("Embed %s failed: %v", p.Article, err)
			continue
		}

		seeded++
		color.Green("✔ %s (%s)", product.Name, product.Article)
	}

	color.Cyan("\nDone: %d/%d products seeded", seeded, len(feed))
}

func autoTag(extractor *funnel.Extractor, product *entity.Product) {
	extracted := extractor.Extract(product.SearchText())
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

func embedProduct(ctx context.Context, uow unitofwork.UnitOfWork, provider embedding.Provider, product *entity.Product) error {
	content := service.BuildProductDocument(product)
	chunks := utils.SplitText(content, 1500, 200)

	var embeddings []*entity.ProductEmbedding
	for i, chunk := range chunks {
		res, err := provider.Generate(chunk, embedding.TaskDocument)
		if err != nil {
			return err
		}
		embeddings = append(embeddings, &entity.ProductEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Values,
			ProductId:      product.Id,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ProductEmbeddingRepository().DeleteByProductId(ctx, product.Id); err != nil {
		return err
	}
	if err := uow.ProductEmbeddingRepository().CreateBulk(ctx, embeddings); err != nil {
		return err
	}
	return uow.Commit()
}
