package controllers

import (
	"errors"

	"github.com/angelmondragon/storefront-pricing/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-pricing/pkg/errors"
)

// catalogError maps catalog sentinels onto API error codes.
func catalogError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrProductNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
	case errors.Is(err, catalog.ErrCustomerNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "customer not found")
	case errors.Is(err, catalog.ErrUnknownTier):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown pricing tier")
	case pkgerrors.As(err) != nil:
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unavailable")
}
