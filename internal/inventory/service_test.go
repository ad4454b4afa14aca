package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	variants := `
CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  color TEXT,
  size TEXT,
  stock INTEGER NOT NULL DEFAULT 0
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(variants).Error)
	return db
}

func createProduct(t *testing.T, db *gorm.DB, stock int, status enums.ProductStatus) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Name:     "Test Product",
		Price:    decimal.RequireFromString("25.50"),
		Stock:    stock,
		Status:   status,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createVariant(t *testing.T, db *gorm.DB, productID uuid.UUID, color, size string, stock int) *models.ProductVariant {
	t.Helper()

	variant := &models.ProductVariant{
		ID:        uuid.New(),
		ProductID: productID,
		Color:     color,
		Size:      size,
		Stock:     stock,
	}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

func TestResolvePrefersExactColorAndSize(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	product := createProduct(t, db, 10, enums.ProductStatusAvailable)
	createVariant(t, db, product.ID, "Black", "M", 4)
	exact := createVariant(t, db, product.ID, "Red", "M", 6)

	variant, err := svc.Resolve(context.Background(), db, product.ID, Selection{Color: "Red", Size: "M"})
	require.NoError(t, err)
	assert.Equal(t, exact.ID, variant.ID)
}

func TestResolveFallsBackToSizeOnly(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	product := createProduct(t, db, 10, enums.ProductStatusAvailable)
	sized := createVariant(t, db, product.ID, "Black", "L", 4)

	// Requested color does not exist, size does.
	variant, err := svc.Resolve(context.Background(), db, product.ID, Selection{Color: "Green", Size: "L"})
	require.NoError(t, err)
	assert.Equal(t, sized.ID, variant.ID)
}

func TestResolveNormalizesPlaceholderSelections(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	product := createProduct(t, db, 10, enums.ProductStatusAvailable)
	createVariant(t, db, product.ID, "Black", "M", 4)

	// "default" color and "One Size" size are storefront placeholders.
	// They normalize to an empty selection, which moves aggregate stock only.
	variant, err := svc.Resolve(context.Background(), db, product.ID, Selection{Color: "default", Size: "One Size"})
	require.NoError(t, err)
	assert.Nil(t, variant)
}

func TestDebitWithoutSelectionUsesAggregateStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	product := createProduct(t, db, 10, enums.ProductStatusAvailable)
	variant := createVariant(t, db, product.ID, "Black", "M", 4)

	require.NoError(t, svc.Debit(context.Background(), db, product.ID, Selection{}, 3))

	// Per-variant counts are untouched when the order names no variant.
	var gotVariant models.ProductVariant
	require.NoError(t, db.First(&gotVariant, "id = ?", variant.ID).Error)
	assert.Equal(t, 4, gotVariant.Stock)

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 7, gotProduct.Stock)
}

func TestResolveWithoutVariantsReturnsNil(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	product := createProduct(t, db, 10, enums.ProductStatusAvailable)

	variant, err := svc.Resolve(context.Background(), db, product.ID, Selection{})
	require.NoError(t, err)
	assert.Nil(t, variant)
}

func TestDebitReducesVariantAndAggregate(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	product := createProduct(t, db, 10, enums.ProductStatusAvailable)
	variant := createVariant(t, db, product.ID, "Black", "M", 4)

	require.NoError(t, svc.Debit(context.Background(), db, product.ID, Selection{Color: "Black", Size: "M"}, 3))

	var gotVariant models.ProductVariant
	require.NoError(t, db.First(&gotVariant, "id = ?", variant.ID).Error)
	assert.Equal(t, 1, gotVariant.Stock)

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 7, gotProduct.Stock)
	assert.Equal(t, enums.ProductStatusAvailable, gotProduct.Status)
}

func TestDebitRejectsInsufficientVariantStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	product := createProduct(t, db, 10, enums.ProductStatusAvailable)
	variant := createVariant(t, db, product.ID, "Black", "M", 2)

	err = svc.Debit(context.Background(), db, product.ID, Selection{Color: "Black", Size: "M"}, 3)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	// Nothing moved.
	var gotVariant models.ProductVariant
	require.NoError(t, db.First(&gotVariant, "id = ?", variant.ID).Error)
	assert.Equal(t, 2, gotVariant.Stock)
}

func TestDebitToZeroMarksProductOutOfStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	product := createProduct(t, db, 4, enums.ProductStatusAvailable)
	createVariant(t, db, product.ID, "Black", "M", 4)

	require.NoError(t, svc.Debit(context.Background(), db, product.ID, Selection{Color: "Black", Size: "M"}, 4))

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 0, gotProduct.Stock)
	assert.Equal(t, enums.ProductStatusOutOfStock, gotProduct.Status)
}

func TestCreditRestoresStockAndStatus(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	product := createProduct(t, db, 0, enums.ProductStatusOutOfStock)
	variant := createVariant(t, db, product.ID, "Black", "M", 0)

	require.NoError(t, svc.Credit(context.Background(), db, product.ID, Selection{Color: "Black", Size: "M"}, 2))

	var gotVariant models.ProductVariant
	require.NoError(t, db.First(&gotVariant, "id = ?", variant.ID).Error)
	assert.Equal(t, 2, gotVariant.Stock)

	var gotProduct models.Product
	require.NoError(t, db.First(&gotProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 2, gotProduct.Stock)
	assert.Equal(t, enums.ProductStatusAvailable, gotProduct.Status)
}

func TestSelectionNormalization(t *testing.T) {
	assert.False(t, Selection{Color: "default", Size: "One Size"}.HasColor())
	assert.False(t, Selection{Size: "Onesize"}.HasSize())
	assert.False(t, Selection{Size: " one size "}.HasSize())
	assert.True(t, Selection{Color: "Black"}.HasColor())
	assert.True(t, Selection{Size: "M"}.HasSize())
	assert.True(t, Selection{Color: "", Size: ""}.IsEmpty())
}
