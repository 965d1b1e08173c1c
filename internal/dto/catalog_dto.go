package dto

import "github.com/google/uuid"

type UpsertProductRequest struct {
	Article     string            `json:"article" validate:"required"`
	Name        string            `json:"name" validate:"required"`
	Url         string            `json:"url,omitempty" validate:"omitempty,url"`
	Price       string            `json:"price,omitempty"`
	OldPrice    string            `json:"old_price,omitempty"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	ProductType string            `json:"product_type,omitempty"`
	Location    string            `json:"location,omitempty"`
	Material    string            `json:"material,omitempty"`
	SizeGroup   string            `json:"size_group,omitempty"`
}

type UpsertCatalogRequest struct {
	Products []UpsertProductRequest `json:"products" validate:"required,min=1,dive"`
}

type UpsertCatalogResponse struct {
	Upserted int `json:"upserted"`
}

type DeleteProductRequest struct {
	Article string `json:"article" validate:"required"`
}

type ReindexResponse struct {
	Scheduled int `json:"scheduled"`
}

// EmbedProductPayload travels on the embed topic from the catalog service
// to the embedding consumer.
type EmbedProductPayload struct {
	ProductId uuid.UUID `json:"product_id"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	LLMAvailable bool   `json:"llm_available"`
	Products     int64  `json:"products"`
	Embeddings   int64  `json:"embeddings"`
}
