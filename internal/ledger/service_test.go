package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/phamdt203/zenmart-backend/pkg/enums"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  reference_id TEXT NOT NULL,
  created_at DATETIME
);`).Error)
	return db
}

func TestRecordAppendsEntry(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	sellerID := uuid.New()
	orderID := uuid.New()
	ctx := context.Background()

	entry, err := svc.Record(ctx, db, RecordEntryInput{
		SellerID:    sellerID,
		Kind:        enums.LedgerEntryKindOrderCredit,
		Amount:      decimal.RequireFromString("30.00"),
		ReferenceID: orderID,
	})
	require.NoError(t, err)
	assert.Equal(t, sellerID, entry.SellerID)
	assert.Equal(t, orderID, entry.ReferenceID)

	has, err := svc.HasEntry(ctx, orderID, enums.LedgerEntryKindOrderCredit)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = svc.HasEntry(ctx, orderID, enums.LedgerEntryKindPayoutDebit)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRecordValidatesInput(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	ctx := context.Background()
	cases := []RecordEntryInput{
		{Kind: enums.LedgerEntryKindOrderCredit, Amount: decimal.RequireFromString("5.00"), ReferenceID: uuid.New()},
		{SellerID: uuid.New(), Kind: enums.LedgerEntryKindOrderCredit, Amount: decimal.RequireFromString("5.00")},
		{SellerID: uuid.New(), Kind: "bogus", Amount: decimal.RequireFromString("5.00"), ReferenceID: uuid.New()},
		{SellerID: uuid.New(), Kind: enums.LedgerEntryKindOrderCredit, Amount: decimal.Zero, ReferenceID: uuid.New()},
	}
	for _, input := range cases {
		_, err := svc.Record(ctx, db, input)
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	}
}

func TestListBySellerReturnsOldestFirst(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	sellerID := uuid.New()
	ctx := context.Background()

	kinds := []enums.LedgerEntryKind{
		enums.LedgerEntryKindOrderCredit,
		enums.LedgerEntryKindPayoutDebit,
		enums.LedgerEntryKindPayoutRefund,
	}
	for _, kind := range kinds {
		_, err := svc.Record(ctx, db, RecordEntryInput{
			SellerID:    sellerID,
			Kind:        kind,
			Amount:      decimal.RequireFromString("10.00"),
			ReferenceID: uuid.New(),
		})
		require.NoError(t, err)
	}

	entries, err := svc.ListBySeller(ctx, sellerID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, kind := range kinds {
		assert.Equal(t, kind, entries[i].Kind)
	}

	other, err := svc.ListBySeller(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
