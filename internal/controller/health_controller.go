package controller

import (
	"context"
	"time"

	"product-advisor-be/internal/dto"
	"product-advisor-be/internal/pkg/serverutils"
	"product-advisor-be/internal/repository/unitofwork"
	"product-advisor-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Check(ctx *fiber.Ctx) error
}

type healthController struct {
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.Provider
}

func NewHealthController(uowFactory unitofwork.RepositoryFactory, llmProvider llm.Provider) IHealthController {
	return &healthController{
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/health/v1")
	h.Get("", c.Check)
}

func (c *healthController) Check(ctx *fiber.Ctx) error {
	uow := c.uowFactory.NewUnitOfWork(ctx.Context())

	products, err := uow.ProductRepository().Count(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(503, "Database unavailable"))
	}
	embeddings, _ := uow.ProductEmbeddingRepository().Count(ctx.Context())

	// A short generation probe; a slow or down model flips the flag
	// without failing the endpoint.
	probeCtx, cancel := context.WithTimeout(ctx.Context(), 3*time.Second)
	defer cancel()
	_, llmErr := c.llmProvider.Generate(probeCtx, "ping", llm.WithMaxTokens(1))

	res := dto.HealthResponse{
		Status:       "ok",
		LLMAvailable: llmErr == nil,
		Products:     products,
		Embeddings:   embeddings,
	}
	return ctx.JSON(serverutils.SuccessResponse("Health", res))
}
