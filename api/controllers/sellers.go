package controllers

import (
	"net/http"

	"github.com/phamdt203/zenmart-backend/api/responses"
	"github.com/phamdt203/zenmart-backend/internal/ledger"
	internalorders "github.com/phamdt203/zenmart-backend/internal/orders"
	internalpayouts "github.com/phamdt203/zenmart-backend/internal/payouts"
	"github.com/phamdt203/zenmart-backend/internal/reconcile"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
	"github.com/phamdt203/zenmart-backend/pkg/logger"
)

// SellerStats returns the cached financial summary for a seller dashboard.
func SellerStats(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}

		sellerID, err := parseIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Stats(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// ListSellerItems returns every order line that belongs to a seller.
func ListSellerItems(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		sellerID, err := parseIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListSellerItems(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ListSellerLedger returns the balance movement history for a seller,
// oldest first.
func ListSellerLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		sellerID, err := parseIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListBySeller(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// SyncSellerBalance recomputes one seller's balance from delivered orders
// and payouts. Meant for support tooling when a balance looks off.
func SyncSellerBalance(svc reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}

		sellerID, err := parseIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.SyncSellerBalance(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"balance": balance.StringFixed(2)})
	}
}
