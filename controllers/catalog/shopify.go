package catalogControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrBadResponse flags a commerce-platform reply that does not match the
// documented schema. Callers treat it as a hard failure rather than guessing.
var ErrBadResponse = errors.New("unexpected catalog response shape")

// Client queries the commerce platform's storefront GraphQL API.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClientFromEnv builds a catalog client from SHOPIFY_* environment
// variables. The store domain may be given with or without scheme or the
// .myshopify.com suffix.
func NewClientFromEnv() (*Client, error) {
	domain := os.Getenv("SHOPIFY_STORE_DOMAIN")
	token := os.Getenv("SHOPIFY_STOREFRONT_TOKEN")
	if domain == "" || token == "" {
		return nil, fmt.Errorf("shopify configuration missing")
	}

	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")
	if !strings.HasSuffix(domain, ".myshopify.com") {
		domain += ".myshopify.com"
	}

	return &Client{
		endpoint: fmt.Sprintf("https://%s/api/2024-10/graphql.json", domain),
		token:    token,
		http:     &http.Client{Timeout: 5 * time.Second},
	}, nil
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) query(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach catalog API: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog API error (%d): %s", resp.StatusCode, string(body))
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("catalog query rejected: %s", envelope.Errors[0].Message)
	}
	if envelope.Data == nil {
		return fmt.Errorf("%w: missing data", ErrBadResponse)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

// ---- wire shapes (GraphQL connection envelopes) ----

type moneyNode struct {
	Amount string `json:"amount"`
}

type imageConn struct {
	Edges []struct {
		Node struct {
			URL string `json:"url"`
		} `json:"node"`
	} `json:"edges"`
}

type variantNode struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	AvailableForSale  bool       `json:"availableForSale"`
	QuantityAvailable int        `json:"quantityAvailable"`
	Price             moneyNode  `json:"price"`
	CompareAtPrice    *moneyNode `json:"compareAtPrice"`
}

type productNode struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Handle           string   `json:"handle"`
	Tags             []string `json:"tags"`
	AvailableForSale bool     `json:"availableForSale"`
	Images           imageConn `json:"images"`
	Variants         struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	PriceRange struct {
		MinVariantPrice moneyNode `json:"minVariantPrice"`
	} `json:"priceRange"`
}

type pageInfoNode struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// ---- view models handed to the storefront ----

type Variant struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Price             float64 `json:"price"`
	AvailableForSale  bool    `json:"availableForSale"`
	QuantityAvailable int     `json:"quantityAvailable"`
}

type Product struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Handle           string    `json:"handle"`
	Images           []string  `json:"images"`
	Price            float64   `json:"price"`
	CompareAtPrice   float64   `json:"compareAtPrice,omitempty"`
	Tags             []string  `json:"tags"`
	Variants         []Variant `json:"variants"`
	AvailableForSale bool      `json:"availableForSale"`
}

type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor,omitempty"`
}

type ProductPage struct {
	Products []Product `json:"products"`
	PageInfo PageInfo  `json:"pageInfo"`
}

type Collection struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Handle      string    `json:"handle"`
	Image       string    `json:"image,omitempty"`
	Products    []Product `json:"products"`
	PageInfo    PageInfo  `json:"pageInfo"`
}

func parseAmount(m moneyNode) (float64, error) {
	if m.Amount == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrBadResponse)
	}
	v, err := strconv.ParseFloat(m.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad amount %q", ErrBadResponse, m.Amount)
	}
	return v, nil
}

func mapProduct(n productNode) (Product, error) {
	price, err := parseAmount(n.PriceRange.MinVariantPrice)
	if err != nil {
		return Product{}, err
	}

	p := Product{
		ID:               n.ID,
		Title:            n.Title,
		Description:      n.Description,
		Handle:           n.Handle,
		Price:            price,
		Tags:             n.Tags,
		AvailableForSale: n.AvailableForSale,
	}
	for _, e := range n.Images.Edges {
		p.Images = append(p.Images, e.Node.URL)
	}
	for _, e := range n.Variants.Edges {
		vp, err := parseAmount(e.Node.Price)
		if err != nil {
			return Product{}, err
		}
		if e.Node.CompareAtPrice != nil && p.CompareAtPrice == 0 {
			cap, err := parseAmount(*e.Node.CompareAtPrice)
			if err != nil {
				return Product{}, err
			}
			p.CompareAtPrice = cap
		}
		p.Variants = append(p.Variants, Variant{
			ID:                e.Node.ID,
			Title:             e.Node.Title,
			Price:             vp,
			AvailableForSale:  e.Node.AvailableForSale,
			QuantityAvailable: e.Node.QuantityAvailable,
		})
	}
	return p, nil
}

// ---- queries ----

const productFields = `
	id
	title
	description
	handle
	tags
	availableForSale
	images(first: 10) { edges { node { url } } }
	variants(first: 10) {
		edges {
			node {
				id
				title
				availableForSale
				quantityAvailable
				price { amount }
				compareAtPrice { amount }
			}
		}
	}
	priceRange { minVariantPrice { amount } }
`

const productsQuery = `
query Products($first: Int!, $after: String) {
	products(first: $first, after: $after) {
		edges { node {` + productFields + `} }
		pageInfo { hasNextPage endCursor }
	}
}`

const productByHandleQuery = `
query ProductByHandle($handle: String!) {
	productByHandle(handle: $handle) {` + productFields + `}
}`

const collectionByHandleQuery = `
query CollectionByHandle($handle: String!, $first: Int!, $after: String) {
	collectionByHandle(handle: $handle) {
		id
		title
		description
		handle
		image { url }
		products(first: $first, after: $after) {
			edges { node {` + productFields + `} }
			pageInfo { hasNextPage endCursor }
		}
	}
}`

// ListProducts pages through the catalog by cursor.
func (c *Client) ListProducts(ctx context.Context, first int, after string) (*ProductPage, error) {
	vars := map[string]interface{}{"first": first}
	if after != "" {
		vars["after"] = after
	}

	var data struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
			PageInfo pageInfoNode `json:"pageInfo"`
		} `json:"products"`
	}
	if err := c.query(ctx, productsQuery, vars, &data); err != nil {
		return nil, err
	}

	page := &ProductPage{
		Products: []Product{},
		PageInfo: PageInfo(data.Products.PageInfo),
	}
	for _, e := range data.Products.Edges {
		p, err := mapProduct(e.Node)
		if err != nil {
			return nil, err
		}
		page.Products = append(page.Products, p)
	}
	return page, nil
}

// GetProductByHandle returns a single product or nil when absent.
func (c *Client) GetProductByHandle(ctx context.Context, handle string) (*Product, error) {
	var data struct {
		ProductByHandle *productNode `json:"productByHandle"`
	}
	if err := c.query(ctx, productByHandleQuery, map[string]interface{}{"handle": handle}, &data); err != nil {
		return nil, err
	}
	if data.ProductByHandle == nil {
		return nil, nil
	}
	p, err := mapProduct(*data.ProductByHandle)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetCollectionByHandle returns a collection with a page of its products.
func (c *Client) GetCollectionByHandle(ctx context.Context, handle string, first int, after string) (*Collection, error) {
	vars := map[string]interface{}{"handle": handle, "first": first}
	if after != "" {
		vars["after"] = after
	}

	var data struct {
		CollectionByHandle *struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Description string `json:"description"`
			Handle      string `json:"handle"`
			Image       *struct {
				URL string `json:"url"`
			} `json:"image"`
			Products struct {
				Edges []struct {
					Node productNode `json:"node"`
				} `json:"edges"`
				PageInfo pageInfoNode `json:"pageInfo"`
			} `json:"products"`
		} `json:"collectionByHandle"`
	}
	if err := c.query(ctx, collectionByHandleQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.CollectionByHandle == nil {
		return nil, nil
	}

	col := &Collection{
		ID:          data.CollectionByHandle.ID,
		Title:       data.CollectionByHandle.Title,
		Description: data.CollectionByHandle.Description,
		Handle:      data.CollectionByHandle.Handle,
		Products:    []Product{},
		PageInfo:    PageInfo(data.CollectionByHandle.Products.PageInfo),
	}
	if data.CollectionByHandle.Image != nil {
		col.Image = data.CollectionByHandle.Image.URL
	}
	for _, e := range data.CollectionByHandle.Products.Edges {
		p, err := mapProduct(e.Node)
		if err != nil {
			return nil, err
		}
		col.Products = append(col.Products, p)
	}
	return col, nil
}
