package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/storefront-pricing/pkg/errors"
)

// ParseQueryInt reads an integer query parameter, falling back to defaultVal when it
// is absent, and enforces the inclusive [low, high] bounds.
func ParseQueryInt(r *http.Request, key string, defaultVal, low, high int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < low || value > high {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": low, "max": high})
	}
	return value, nil
}

// PathSKU returns the sanitized sku route parameter.
func PathSKU(r *http.Request, key string) (string, error) {
	sku := SanitizeString(chi.URLParam(r, key), maxIdentifierLen)
	if sku == "" || !skuPattern.MatchString(sku) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid sku").WithDetails(map[string]any{"field": key})
	}
	return sku, nil
}

// PathName returns a sanitized free-form route parameter such as a bundle name.
func PathName(r *http.Request, key string) (string, error) {
	name := SanitizeString(chi.URLParam(r, key), maxIdentifierLen)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "missing path parameter").WithDetails(map[string]any{"field": key})
	}
	return name, nil
}
