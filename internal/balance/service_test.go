package balance

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

func setupBalanceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:balance_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  balance NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	return db
}

func createSeller(t *testing.T, db *gorm.DB, balance string) *models.User {
	t.Helper()

	seller := &models.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		FullName: "Test Seller",
		Role:     enums.UserRoleSeller,
		Balance:  decimal.RequireFromString(balance),
		IsActive: true,
	}
	require.NoError(t, db.Create(seller).Error)
	return seller
}

func sellerBalance(t *testing.T, db *gorm.DB, sellerID uuid.UUID) decimal.Decimal {
	t.Helper()

	var seller models.User
	require.NoError(t, db.First(&seller, "id = ?", sellerID).Error)
	return seller.Balance
}

func TestCreditIncreasesBalance(t *testing.T) {
	db := setupBalanceTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	seller := createSeller(t, db, "100.25")
	require.NoError(t, svc.Credit(context.Background(), db, seller.ID, decimal.RequireFromString("49.75")))

	assert.True(t, sellerBalance(t, db, seller.ID).Equal(decimal.RequireFromString("150.00")))
}

func TestRefundRestoresBalance(t *testing.T) {
	db := setupBalanceTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	seller := createSeller(t, db, "50.00")
	require.NoError(t, svc.Refund(context.Background(), db, seller.ID, decimal.RequireFromString("25.25")))

	assert.True(t, sellerBalance(t, db, seller.ID).Equal(decimal.RequireFromString("75.25")))
}

func TestDebitReducesBalance(t *testing.T) {
	db := setupBalanceTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	seller := createSeller(t, db, "100.00")
	require.NoError(t, svc.Debit(context.Background(), db, seller.ID, decimal.RequireFromString("40.50")))

	assert.True(t, sellerBalance(t, db, seller.ID).Equal(decimal.RequireFromString("59.50")))
}

func TestDebitRejectsInsufficientBalance(t *testing.T) {
	db := setupBalanceTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	seller := createSeller(t, db, "10.00")
	err = svc.Debit(context.Background(), db, seller.ID, decimal.RequireFromString("10.25"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientBalance))

	// Balance untouched after the rejected debit.
	assert.True(t, sellerBalance(t, db, seller.ID).Equal(decimal.RequireFromString("10.00")))
}

func TestDebitUnknownSellerReturnsNotFound(t *testing.T) {
	db := setupBalanceTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	err = svc.Debit(context.Background(), db, uuid.New(), decimal.RequireFromString("5.00"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestSetBalanceOverwritesStoredValue(t *testing.T) {
	db := setupBalanceTestDB(t)
	repo := NewRepository(db)

	seller := createSeller(t, db, "10.00")
	require.NoError(t, repo.SetBalance(context.Background(), seller.ID, decimal.RequireFromString("42.50")))
	assert.True(t, sellerBalance(t, db, seller.ID).Equal(decimal.RequireFromString("42.50")))
}

func TestSetBalanceUnknownSellerReturnsNotFound(t *testing.T) {
	db := setupBalanceTestDB(t)
	repo := NewRepository(db)

	err := repo.SetBalance(context.Background(), uuid.New(), decimal.RequireFromString("42.50"))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	db := setupBalanceTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	seller := createSeller(t, db, "10.00")
	err = svc.Credit(context.Background(), db, seller.ID, decimal.Zero)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestBalanceReadsCurrentValue(t *testing.T) {
	db := setupBalanceTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	seller := createSeller(t, db, "72.25")
	got, err := svc.Balance(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("72.25")))
}
