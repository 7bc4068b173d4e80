package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-pricing/api/responses"
	"github.com/angelmondragon/storefront-pricing/api/validators"
	"github.com/angelmondragon/storefront-pricing/internal/catalog"
	"github.com/angelmondragon/storefront-pricing/internal/pricing"
	pkgerrors "github.com/angelmondragon/storefront-pricing/pkg/errors"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
)

type pricingSession interface {
	CurrentPricingContext() pricing.Context
	SetTier(tier string) error
	SwitchCustomer(id string) (pricing.Context, error)
}

type pricingContextRequest struct {
	Tier       *string `json:"tier" validate:"required_without=CustomerID,excluded_with=CustomerID,omitempty,max=64"`
	CustomerID *string `json:"customer_id" validate:"omitempty,max=128"`
}

func PricingContextGet(session pricingSession, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing session unavailable"))
			return
		}
		responses.WriteSuccess(w, session.CurrentPricingContext())
	}
}

// PricingContextPut switches the shopper tier or signs in as a mock customer. The
// carts are not re-aggregated here; displays refresh on their next read.
func PricingContextPut(session pricingSession, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing session unavailable"))
			return
		}

		var payload pricingContextRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.CustomerID != nil {
			id := validators.SanitizeString(*payload.CustomerID, 128)
			next, err := session.SwitchCustomer(id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, catalogError(err))
				return
			}
			responses.WriteSuccess(w, next)
			return
		}

		tier := validators.SanitizeString(*payload.Tier, 64)
		if err := session.SetTier(tier); err != nil {
			responses.WriteError(r.Context(), logg, w, catalogError(err))
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithTier(ctx, tier)
			logg.Info(ctx, "pricing context switched")
		}
		responses.WriteSuccess(w, session.CurrentPricingContext())
	}
}

// CustomerList returns the mock identities a shopper can switch to.
func CustomerList(customers *catalog.Customers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := []catalog.Customer{}
		if customers != nil {
			list = append(list, customers.List()...)
		}
		responses.WriteSuccess(w, list)
	}
}
