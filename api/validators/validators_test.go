package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-pricing/pkg/errors"
)

type addItemBody struct {
	SKU      string `json:"sku" validate:"required,sku"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sku":"CAB-BASE-30","quantity":3}`))
	var body addItemBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, "CAB-BASE-30", body.SKU)
	assert.Equal(t, 3, body.Quantity)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sku":"A","quantity":1,"price":2}`))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDecodeJSONBodyReportsFieldMessages(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sku":"bad sku!","quantity":0}`))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid sku", details["sku"])
	assert.Equal(t, "is required", details["quantity"])
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?qty=12", nil)
	v, err := ParseQueryInt(req, "qty", 1, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	v, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "qty", 1, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?qty=0", nil), "qty", 1, 1, 1000)
	assert.Error(t, err)
	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?qty=ten", nil), "qty", 1, 1, 1000)
	assert.Error(t, err)
}

func TestPathSKU(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "sku", " HNG-SOFT-2 ")
	sku, err := PathSKU(req, "sku")
	require.NoError(t, err)
	assert.Equal(t, "HNG-SOFT-2", sku)

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "sku", "../etc")
	_, err = PathSKU(req, "sku")
	assert.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abcdef", SanitizeString("abcdef", 0))
}
