package catalogControllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		endpoint: srv.URL,
		token:    "test-token",
		http:     &http.Client{Timeout: 2 * time.Second},
	}
}

func productJSON(id, title, handle, price string) string {
	return `{
		"id": "` + id + `",
		"title": "` + title + `",
		"description": "crunchy",
		"handle": "` + handle + `",
		"tags": ["snack"],
		"availableForSale": true,
		"images": {"edges": [{"node": {"url": "https://cdn.example.com/` + handle + `.jpg"}}]},
		"variants": {"edges": [{"node": {
			"id": "` + id + `-v1",
			"title": "Default",
			"availableForSale": true,
			"quantityAvailable": 12,
			"price": {"amount": "` + price + `"},
			"compareAtPrice": {"amount": "199.00"}
		}}]},
		"priceRange": {"minVariantPrice": {"amount": "` + price + `"}}
	}`
}

func TestListProducts(t *testing.T) {
	var gotToken string
	var gotVars map[string]interface{}

	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Storefront-Access-Token")
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotVars = req.Variables

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"products": {
			"edges": [
				{"node": ` + productJSON("gid://1", "Masala Chips", "masala-chips", "149.00") + `},
				{"node": ` + productJSON("gid://2", "Peanut Chikki", "peanut-chikki", "99.00") + `}
			],
			"pageInfo": {"hasNextPage": true, "endCursor": "abc123"}
		}}}`))
	})

	page, err := cl.ListProducts(context.Background(), 2, "prev")
	require.NoError(t, err)

	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, float64(2), gotVars["first"])
	assert.Equal(t, "prev", gotVars["after"])

	require.Len(t, page.Products, 2)
	assert.Equal(t, "Masala Chips", page.Products[0].Title)
	assert.Equal(t, 149.0, page.Products[0].Price)
	assert.Equal(t, 199.0, page.Products[0].CompareAtPrice)
	require.Len(t, page.Products[0].Variants, 1)
	assert.Equal(t, 12, page.Products[0].Variants[0].QuantityAvailable)
	assert.True(t, page.PageInfo.HasNextPage)
	assert.Equal(t, "abc123", page.PageInfo.EndCursor)
}

func TestGetProductByHandleNotFound(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"productByHandle": null}}`))
	})

	product, err := cl.GetProductByHandle(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestQueryRejectsMalformedAmount(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"productByHandle": ` +
			strings.Replace(productJSON("gid://1", "Chips", "chips", "149.00"), `"149.00"`, `"not-a-number"`, -1) +
			`}}`))
	})

	_, err := cl.GetProductByHandle(context.Background(), "chips")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestQuerySurfacesGraphQLErrors(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "Field 'nope' doesn't exist"}]}`))
	})

	_, err := cl.ListProducts(context.Background(), 10, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field 'nope' doesn't exist")
}

func TestGetCollectionByHandle(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"collectionByHandle": {
			"id": "gid://col/1",
			"title": "Festive Box",
			"description": "seasonal picks",
			"handle": "festive-box",
			"image": {"url": "https://cdn.example.com/festive.jpg"},
			"products": {
				"edges": [{"node": ` + productJSON("gid://9", "Ladoo Pack", "ladoo-pack", "249.00") + `}],
				"pageInfo": {"hasNextPage": false, "endCursor": ""}
			}
		}}}`))
	})

	col, err := cl.GetCollectionByHandle(context.Background(), "festive-box", 20, "")
	require.NoError(t, err)
	require.NotNil(t, col)
	assert.Equal(t, "Festive Box", col.Title)
	assert.Equal(t, "https://cdn.example.com/festive.jpg", col.Image)
	require.Len(t, col.Products, 1)
	assert.Equal(t, 249.0, col.Products[0].Price)
	assert.False(t, col.PageInfo.HasNextPage)
}
