package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	internalledger "github.com/phamdt203/zenmart-backend/internal/ledger"
	"github.com/phamdt203/zenmart-backend/pkg/db/models"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
)

type testLedgerService struct {
	listFn func(ctx context.Context, sellerID uuid.UUID) ([]models.LedgerEntry, error)
}

func (s *testLedgerService) Record(ctx context.Context, tx *gorm.DB, input internalledger.RecordEntryInput) (*models.LedgerEntry, error) {
	return nil, nil
}

func (s *testLedgerService) HasEntry(ctx context.Context, referenceID uuid.UUID, kind enums.LedgerEntryKind) (bool, error) {
	return false, nil
}

func (s *testLedgerService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.LedgerEntry, error) {
	if s.listFn != nil {
		return s.listFn(ctx, sellerID)
	}
	return nil, nil
}

func TestListSellerLedgerSuccess(t *testing.T) {
	sellerID := uuid.New()
	var captured uuid.UUID
	svc := &testLedgerService{
		listFn: func(ctx context.Context, id uuid.UUID) ([]models.LedgerEntry, error) {
			captured = id
			return []models.LedgerEntry{{ID: uuid.New(), SellerID: id, Kind: enums.LedgerEntryKindOrderCredit}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sellers/"+sellerID.String()+"/ledger", nil)
	req = addRouteParam(req, "sellerID", sellerID.String())
	resp := httptest.NewRecorder()

	ListSellerLedger(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured != sellerID {
		t.Fatalf("unexpected seller %s", captured)
	}
}

func TestListSellerLedgerInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sellers/not-a-uuid/ledger", nil)
	req = addRouteParam(req, "sellerID", "not-a-uuid")
	resp := httptest.NewRecorder()

	ListSellerLedger(&testLedgerService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListSellerLedgerNotFound(t *testing.T) {
	sellerID := uuid.New()
	svc := &testLedgerService{
		listFn: func(ctx context.Context, id uuid.UUID) ([]models.LedgerEntry, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sellers/"+sellerID.String()+"/ledger", nil)
	req = addRouteParam(req, "sellerID", sellerID.String())
	resp := httptest.NewRecorder()

	ListSellerLedger(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
