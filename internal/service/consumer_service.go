package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"product-advisor-be/internal/dto"
	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/pkg/logger"
	"product-advisor-be/internal/repository/specification"
	"product-advisor-be/internal/repository/unitofwork"
	"product-advisor-be/pkg/embedding"
	"product-advisor-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	logger            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedProductPayload
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		cs.logger.Error("consumer", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("consumer", "processing embedding", map[string]interface{}{"product_id": payload.ProductId.String()})

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: payload.ProductId})
	if err != nil {
		cs.logger.Error("consumer", "failed to get product", map[string]interface{}{"product_id": payload.ProductId.String(), "error": err.Error()})
		msg.Nack() // Nack for retriable errors
		return
	}
	if product == nil {
		cs.logger.Error("consumer", "product not found", map[string]interface{}{"product_id": payload.ProductId.String()})
		msg.Ack() // Product deleted since publish? Ack.
		return
	}

	content := BuildProductDocument(product)

	// Catalog entries are short; 1500/200 keeps even long descriptions
	// within a safe context size.
	chunks := utils.SplitText(content, 1500, 200)

	var newEmbeddings []*entity.ProductEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskDocument)
		if err != nil {
			cs.logger.Error("consumer", "failed to generate embedding", map[string]interface{}{
				"product_id": payload.ProductId.String(),
				"chunk":      i,
				"error":      err.Error(),
			})
			msg.Nack()
			return
		}

		newEmbeddings = append(newEmbeddings, &entity.ProductEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Values,
			ProductId:      product.Id,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		cs.logger.Error("consumer", "failed to begin transaction", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.ProductEmbeddingRepository().DeleteByProductId(ctx, product.Id); err != nil {
		cs.logger.Error("consumer", "failed to delete old embeddings", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	if len(newEmbeddings) > 0 {
		if err := uow.ProductEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			cs.logger.Error("consumer", "failed to create bulk embeddings", map[string]interface{}{"error": err.Error()})
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		cs.logger.Error("consumer", "failed to commit transaction", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	cs.logger.Info("consumer", "product indexed", map[string]interface{}{
		"product_id": payload.ProductId.String(),
		"chunks":     len(newEmbeddings),
	})
	msg.Ack()
}

// BuildProductDocument flattens a product into the text that gets embedded.
// Attributes are sorted so re-ingesting the same product yields the same
// document. Shared with the offline seeder.
func BuildProductDocument(product *entity.Product) string {
	var b strings.Builder
	b.WriteString(product.Name)
	if product.Category != "" {
		b.WriteString("\nКатегория: " + product.Category)
	}
	if product.Article != "" {
		b.WriteString("\nАртикул: " + product.Article)
	}
	if product.Description != "" {
		b.WriteString("\n\n" + product.Description)
	}

	if len(product.Attributes) > 0 {
		keys := make([]string, 0, len(product.Attributes))
		for k := range product.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n")
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("\n%s: %s", k, product.Attributes[k]))
		}
	}

	return b.String()
}
