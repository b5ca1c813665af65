package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListProducts fetches one page of products.
func (c *Client) ListProducts(ctx context.Context, skip, limit int) (*ProductPage, error) {
	var page ProductPage
	err := c.do(ctx, request{
		op:      "fetchProducts",
		summary: "Failed to fetch products",
		method:  http.MethodGet,
		path:    "/products",
		query:   pageQuery(skip, limit),
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchProducts fetches one page of products matching q.
func (c *Client) SearchProducts(ctx context.Context, q string, skip, limit int) (*ProductPage, error) {
	query := pageQuery(skip, limit)
	query.Set("q", q)

	var page ProductPage
	err := c.do(ctx, request{
		op:      "searchProducts",
		summary: "Failed to search products",
		method:  http.MethodGet,
		path:    "/products/search",
		query:   query,
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	var product Product
	err := c.do(ctx, request{
		op:      "fetchProductById",
		summary: "Failed to fetch product",
		method:  http.MethodGet,
		path:    "/products/" + strconv.Itoa(id),
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// AddProduct creates a product. The remote API echoes the record with its new id.
func (c *Client) AddProduct(ctx context.Context, input ProductInput) (*Product, error) {
	var product Product
	err := c.do(ctx, request{
		op:      "addProduct",
		summary: "Failed to add product",
		method:  http.MethodPost,
		path:    "/products/add",
		body:    input,
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces the fields of product id with input.
func (c *Client) UpdateProduct(ctx context.Context, id int, input ProductInput) (*Product, error) {
	var product Product
	err := c.do(ctx, request{
		op:      "updateProduct",
		summary: "Failed to update product",
		method:  http.MethodPut,
		path:    "/products/" + strconv.Itoa(id),
		body:    input,
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct deletes product id and returns the id on success.
func (c *Client) DeleteProduct(ctx context.Context, id int) (int, error) {
	err := c.do(ctx, request{
		op:      "deleteProduct",
		summary: "Failed to delete product",
		method:  http.MethodDelete,
		path:    "/products/" + strconv.Itoa(id),
	}, nil)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func pageQuery(skip, limit int) url.Values {
	return url.Values{
		"limit": {strconv.Itoa(limit)},
		"skip":  {strconv.Itoa(skip)},
	}
}
