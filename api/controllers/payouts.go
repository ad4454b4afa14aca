package controllers

import (
	"net/http"

	"github.com/phamdt203/zenmart-backend/api/responses"
	"github.com/phamdt203/zenmart-backend/api/validators"
	internalpayouts "github.com/phamdt203/zenmart-backend/internal/payouts"
	"github.com/phamdt203/zenmart-backend/pkg/enums"
	pkgerrors "github.com/phamdt203/zenmart-backend/pkg/errors"
	"github.com/phamdt203/zenmart-backend/pkg/logger"
	"github.com/phamdt203/zenmart-backend/pkg/money"
)

type requestPayoutRequest struct {
	Amount string `json:"amount" validate:"required"`
	Method string `json:"method" validate:"required,max=64"`
}

type updatePayoutStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// RequestPayout debits the seller balance and opens a pending payout.
func RequestPayout(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req requestPayoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := money.Parse(req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		payout, err := svc.Request(r.Context(), internalpayouts.RequestPayoutInput{
			SellerID: sellerID,
			Amount:   amount,
			Method:   req.Method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payout)
	}
}

// GetPayout returns one payout.
func GetPayout(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}

		payoutID, err := parseIDParam(r, "payoutID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payout, err := svc.Get(r.Context(), payoutID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payout)
	}
}

// UpdatePayoutStatus resolves a pending payout.
func UpdatePayoutStatus(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}

		payoutID, err := parseIDParam(r, "payoutID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updatePayoutStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePayoutStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payout status"))
			return
		}

		payout, err := svc.UpdateStatus(r.Context(), internalpayouts.UpdateStatusInput{PayoutID: payoutID, Status: status})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payout)
	}
}

// ListSellerPayouts returns a seller's payout history, newest first.
func ListSellerPayouts(svc internalpayouts.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListBySeller(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
