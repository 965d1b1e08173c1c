package controller

import (
	"product-advisor-be/internal/dto"
	"product-advisor-be/internal/pkg/serverutils"
	"product-advisor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	Upsert(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
}

type catalogController struct {
	catalogService service.ICatalogService
}

func NewCatalogController(catalogService service.ICatalogService) ICatalogController {
	return &catalogController{
		catalogService: catalogService,
	}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Use(serverutils.JwtMiddleware) // admin only
	h.Post("products", c.Upsert)
	h.Delete("products/:article", c.Delete)
	h.Post("reindex", c.Reindex)
}

func (c *catalogController) Upsert(ctx *fiber.Ctx) error {
	var req dto.UpsertCatalogRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.catalogService.UpsertProducts(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Catalog updated", res))
}

func (c *catalogController) Delete(ctx *fiber.Ctx) error {
	article := ctx.Params("article")
	if article == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Article is required"))
	}

	if err := c.catalogService.DeleteProduct(ctx.Context(), article); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Product deleted", nil))
}

func (c *catalogController) Reindex(ctx *fiber.Ctx) error {
	res, err := c.catalogService.Reindex(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Reindex scheduled", res))
}
