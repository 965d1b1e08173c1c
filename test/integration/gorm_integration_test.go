package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"product-advisor-be/internal/repository/unitofwork"
	"product-advisor-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check Product Repository", func(t *testing.T) {
		count, err := uow.ProductRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Product count: %d", count)
	})

	t.Run("Check Product Embedding Repository", func(t *testing.T) {
		count, err := uow.ProductEmbeddingRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ProductEmbedding count: %d", count)
	})
}
