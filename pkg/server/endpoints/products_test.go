package endpoints

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/state"
)

func productForm(title, price, stock string) url.Values {
	return url.Values{
		"title":       {title},
		"description": {"Made of **oak**"},
		"price":       {price},
		"stock":       {stock},
		"brand":       {"Acme"},
		"category":    {"furniture"},
	}
}

func TestProducts_RequireSession(t *testing.T) {
	env := newTestEnv(t, 3)

	for _, path := range []string{"/products", "/products/new", "/products/1", "/products/1/edit"} {
		rec := env.do("GET", path, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
	}
	rec := env.do("POST", "/products", productForm("Chair", "10", "1"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t, 25)
	cookie := env.login(t)

	rec := env.do("GET", "/products", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Sample Product 10")
	assert.NotContains(t, body, "Sample Product 11<")
	assert.Contains(t, body, "Showing 1-10 of 25")
	assert.Contains(t, body, "/products?limit=10&amp;skip=10")
	assert.NotContains(t, body, "Previous")
}

func TestListProducts_Paging(t *testing.T) {
	env := newTestEnv(t, 25)
	cookie := env.login(t)

	rec := env.getJSON("/products?skip=20&limit=10", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var st state.ProductState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Len(t, st.Products, 5)
	assert.Equal(t, 25, st.Total)
	assert.Equal(t, 20, st.Skip)

	data := paginate(st)
	assert.Equal(t, 21, data.From)
	assert.Equal(t, 25, data.To)
	assert.Equal(t, "/products?limit=10&skip=10", data.PrevURL)
	assert.Empty(t, data.NextURL)
}

func TestListProducts_Search(t *testing.T) {
	env := newTestEnv(t, 25)
	cookie := env.login(t)

	rec := env.getJSON("/products?q=product+2", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var st state.ProductState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "product 2", st.Query)
	assert.Equal(t, 7, st.Total) // 2, 20-25
}

func TestListProducts_Failure(t *testing.T) {
	env := newTestEnv(t, 5)
	cookie := env.login(t)

	env.api.FailNext("/products", http.StatusServiceUnavailable)
	rec := env.getJSON("/products", cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch products"}`, rec.Body.String())
}

func TestShowProduct(t *testing.T) {
	env := newTestEnv(t, 5)
	cookie := env.login(t)

	rec := env.do("GET", "/products/3", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sample Product 3")
	assert.Contains(t, rec.Body.String(), "$30.00")

	rec = env.getJSON("/products/3", cookie)
	var p catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 3, p.ID)

	rec = env.do("GET", "/products/99", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product not found")
}

func TestNewAndEditProductForms(t *testing.T) {
	env := newTestEnv(t, 5)
	cookie := env.login(t)

	rec := env.do("GET", "/products/new", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Add New Product")
	assert.Contains(t, rec.Body.String(), `action="/products"`)
	assert.Contains(t, rec.Body.String(), "Home decoration")

	rec = env.do("GET", "/products/2/edit", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Edit Product")
	assert.Contains(t, body, `value="Sample Product 2"`)
	assert.Contains(t, body, `value="20"`)
	assert.Contains(t, body, `action="/products/2"`)
	assert.Contains(t, body, `<option value="fragrances" selected>`)
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t, 5)
	cookie := env.login(t)

	rec := env.do("POST", "/products", productForm("Oak Chair", "49.99", "7"), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get("Location"))
	assert.Contains(t, env.audit.String(), "emilys added product 6")

	flash := cookieNamed(rec, flashCookieName)
	require.NotNil(t, flash)
	rec = env.do("GET", "/products", nil, cookie, flash)
	assert.Contains(t, rec.Body.String(), "Product added successfully")
}

func TestCreateProduct_Validation(t *testing.T) {
	env := newTestEnv(t, 5)
	cookie := env.login(t)

	rec := env.do("POST", "/products", productForm("", "", "3"), cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Product title is required")
	assert.Contains(t, body, "Price is required")
	assert.Contains(t, body, `value="3"`)
	assert.NotContains(t, env.api.Requests(), "POST /products/add")
}

func TestCreateProduct_RemoteFailure(t *testing.T) {
	env := newTestEnv(t, 5)
	cookie := env.login(t)

	env.api.FailNext("/products/add", http.StatusInternalServerError)
	rec := env.do("POST", "/products", productForm("Oak Chair", "49.99", "7"), cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to add product")
	assert.Contains(t, rec.Body.String(), `value="Oak Chair"`)
	assert.Contains(t, env.audit.String(), "emilys tried to add a product")
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t, 5)
	cookie := env.login(t)

	rec := env.do("POST", "/products/2", productForm("Renamed", "12.5", "4"), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get("Location"))
	assert.Contains(t, env.audit.String(), "emilys updated product 2")

	env.api.FailNext("/products/2", http.StatusInternalServerError)
	rec = env.do("POST", "/products/2", productForm("Renamed", "12.5", "4"), cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to update product")
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t, 5)
	cookie := env.login(t)

	rec := env.do("GET", "/products", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do("POST", "/products/2/delete", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, env.audit.String(), "emilys deleted product 2")

	flash := cookieNamed(rec, flashCookieName)
	require.NotNil(t, flash)

	env.api.FailNext("/products/3", http.StatusInternalServerError)
	rec = env.do("POST", "/products/3/delete", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	failed := cookieNamed(rec, flashCookieName)
	require.NotNil(t, failed)
	assert.NotEqual(t, flash.Value, failed.Value)
}

func TestOversizedProductID(t *testing.T) {
	env := newTestEnv(t, 5)
	cookie := env.login(t)
	const huge = "/products/99999999999999999999"

	tests := []struct {
		name   string
		method string
		path   string
		form   url.Values
	}{
		{"show", "GET", huge, nil},
		{"edit", "GET", huge + "/edit", nil},
		{"update", "POST", huge, productForm("Renamed", "12.5", "4")},
		{"delete", "POST", huge + "/delete", url.Values{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.path, tt.form, cookie)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "Product not found")
		})
	}

	for _, r := range env.api.Requests() {
		assert.NotContains(t, r, "/products/0")
	}
}

func countRequests(requests []string, want string) int {
	n := 0
	for _, r := range requests {
		if r == want {
			n++
		}
	}
	return n
}

func TestHeldPageKeepsSplices(t *testing.T) {
	env := newTestEnv(t, 5)
	cookie := env.login(t)

	rec := env.do("GET", "/products", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("add", func(t *testing.T) {
		rec := env.do("POST", "/products", productForm("Desk Lamp", "24.5", "12"), cookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/products", rec.Header().Get("Location"))

		rec = env.do("GET", "/products", nil, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Desk Lamp")
	})

	t.Run("update", func(t *testing.T) {
		rec := env.do("POST", "/products/3", productForm("Walnut Shelf", "80", "2"), cookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		rec = env.do("GET", "/products", nil, cookie)
		assert.Contains(t, rec.Body.String(), "Walnut Shelf")
		assert.NotContains(t, rec.Body.String(), "Sample Product 3")
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.do("POST", "/products/2/delete", nil, cookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		rec = env.do("GET", "/products", nil, cookie)
		assert.NotContains(t, rec.Body.String(), `href="/products/2"`)
		assert.Contains(t, rec.Body.String(), `href="/products/1"`)
	})

	assert.Equal(t, 1, countRequests(env.api.Requests(), "GET /products"))

	t.Run("refresh", func(t *testing.T) {
		rec := env.do("GET", "/products?refresh=1", nil, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `href="/products/2"`)
		assert.Contains(t, body, "Sample Product 3")
		assert.NotContains(t, body, "Desk Lamp")
		assert.Equal(t, 2, countRequests(env.api.Requests(), "GET /products"))
	})
}

func TestWritesReturnToHeldPage(t *testing.T) {
	env := newTestEnv(t, 10)
	cookie := env.login(t)

	rec := env.do("GET", "/products?skip=4&limit=2", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do("POST", "/products/5/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products?limit=2&skip=4", rec.Header().Get("Location"))

	rec = env.do("GET", "/products?skip=4&limit=2", nil, cookie)
	body := rec.Body.String()
	assert.NotContains(t, body, `href="/products/5"`)
	assert.Contains(t, body, `href="/products/6"`)

	rec = env.do("GET", "/products?skip=6&limit=2", nil, cookie)
	assert.Contains(t, rec.Body.String(), `href="/products/7"`)
	assert.Equal(t, 2, countRequests(env.api.Requests(), "GET /products"))
}

func TestQueryInt(t *testing.T) {
	q := url.Values{"skip": {"20"}, "limit": {"-1"}, "bad": {"x"}}
	assert.Equal(t, 20, queryInt(q, "skip", 0))
	assert.Equal(t, 10, queryInt(q, "limit", 10))
	assert.Equal(t, 5, queryInt(q, "bad", 5))
	assert.Equal(t, 7, queryInt(q, "missing", 7))
}
