package cart

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-pricing/api/responses"
	"github.com/angelmondragon/storefront-pricing/api/validators"
	"github.com/angelmondragon/storefront-pricing/internal/aggregator"
	cartsvc "github.com/angelmondragon/storefront-pricing/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-pricing/pkg/errors"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
)

// Mutator is the cart write surface the handlers need.
type Mutator interface {
	AddItem(ctx context.Context, sku string, qty int) (cartsvc.Cart, error)
	UpdateQuantity(ctx context.Context, sku string, qty int) (cartsvc.Cart, error)
	RemoveItem(ctx context.Context, sku string) (cartsvc.Cart, error)
	AddBundle(ctx context.Context, name string, itemCount int, total *decimal.Decimal) (cartsvc.Cart, error)
	RemoveBundle(ctx context.Context, name string) (cartsvc.Cart, error)
	Clear(ctx context.Context) (cartsvc.Cart, error)
}

// Aggregations runs an on-demand aggregation pass.
type Aggregations interface {
	Run(ctx context.Context, trigger string) aggregator.Result
}

// Published exposes the last result a runner handed to its displays.
type Published interface {
	Get() (aggregator.Result, bool)
}

// CartFetch aggregates the current cart and returns lines with totals.
func CartFetch(aggs Aggregations, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if aggs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "aggregation unavailable"))
			return
		}
		responses.WriteSuccess(w, newAggregation(aggs.Run(r.Context(), aggregator.TriggerRequest)))
	}
}

// CartLatest returns the most recently published aggregation without running a pass.
func CartLatest(latest Published, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if latest == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "aggregation unavailable"))
			return
		}
		res, ok := latest.Get()
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no aggregation published yet"))
			return
		}
		responses.WriteSuccess(w, newAggregation(res))
	}
}

func CartAddItem(svc Mutator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := withSKU(r.Context(), logg, payload.SKU)
		writeCart(ctx, logg, w, http.StatusCreated)(svc.AddItem(ctx, payload.SKU, payload.Quantity))
	}
}

func CartUpdateQuantity(svc Mutator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku, err := validators.PathSKU(r, "sku")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := withSKU(r.Context(), logg, sku)
		writeCart(ctx, logg, w, http.StatusOK)(svc.UpdateQuantity(ctx, sku, *payload.Quantity))
	}
}

func CartRemoveItem(svc Mutator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku, err := validators.PathSKU(r, "sku")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := withSKU(r.Context(), logg, sku)
		writeCart(ctx, logg, w, http.StatusOK)(svc.RemoveItem(ctx, sku))
	}
}

func CartAddBundle(svc Mutator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addBundleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(r.Context(), logg, w, http.StatusCreated)(svc.AddBundle(r.Context(), payload.BundleName, payload.ItemCount, payload.TotalPrice))
	}
}

func CartRemoveBundle(svc Mutator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := validators.PathName(r, "name")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(r.Context(), logg, w, http.StatusOK)(svc.RemoveBundle(r.Context(), name))
	}
}

func CartClear(svc Mutator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeCart(r.Context(), logg, w, http.StatusOK)(svc.Clear(r.Context()))
	}
}

func writeCart(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, status int) func(cartsvc.Cart, error) {
	return func(c cartsvc.Cart, err error) {
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, newCartContents(c))
	}
}

func withSKU(ctx context.Context, logg *logger.Logger, sku string) context.Context {
	if logg == nil {
		return ctx
	}
	return logg.WithSKU(ctx, sku)
}
