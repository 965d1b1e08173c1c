package unitofwork

import (
	"context"

	"product-advisor-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProductRepository() contract.ProductRepository
	ProductEmbeddingRepository() contract.ProductEmbeddingRepository
}
