// Package catalogtest provides an in-process fake of the remote catalog API.
package catalogtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
)

// Demo credentials accepted by the fake, matching the public demo API.
const (
	DemoUsername = "emilys"
	DemoPassword = "emilyspass"
)

// API is a fake catalog backed by a slice. Like the public demo API,
// add/update/delete are answered but do not change what later reads return.
type API struct {
	*httptest.Server

	mu       sync.Mutex
	products []catalog.Product
	nextID   int
	user     catalog.User
	tokens   map[string]bool
	failing  map[string]int
	requests []string
}

// NewAPI starts a fake seeded with products.
func NewAPI(products []catalog.Product) *API {
	a := &API{
		products: products,
		nextID:   len(products) + 1,
		user: catalog.User{
			ID:        1,
			Username:  DemoUsername,
			Email:     "emily.johnson@x.dummyjson.com",
			FirstName: "Emily",
			LastName:  "Johnson",
			Gender:    "female",
		},
		tokens:  map[string]bool{},
		failing: map[string]int{},
	}

	router := mux.NewRouter()
	router.HandleFunc("/products", a.listProducts).Methods("GET")
	router.HandleFunc("/products/search", a.searchProducts).Methods("GET")
	router.HandleFunc("/products/add", a.addProduct).Methods("POST")
	router.HandleFunc("/products/{id:[0-9]+}", a.getProduct).Methods("GET")
	router.HandleFunc("/products/{id:[0-9]+}", a.updateProduct).Methods("PUT")
	router.HandleFunc("/products/{id:[0-9]+}", a.deleteProduct).Methods("DELETE")
	router.HandleFunc("/auth/login", a.login).Methods("POST")
	router.HandleFunc("/auth/me", a.me).Methods("GET")
	router.HandleFunc("/auth/refresh", a.refresh).Methods("POST")

	a.Server = httptest.NewServer(a.record(router))
	return a
}

// SampleProducts returns n products spread over a few categories.
func SampleProducts(n int) []catalog.Product {
	categories := []string{"beauty", "fragrances", "furniture", "groceries"}
	products := make([]catalog.Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, catalog.Product{
			ID:          i,
			Title:       fmt.Sprintf("Sample Product %d", i),
			Description: fmt.Sprintf("Description of product %d", i),
			Price:       float64(i) * 10,
			Rating:      4.5,
			Stock:       i,
			Brand:       "Acme",
			Category:    categories[(i-1)%len(categories)],
		})
	}
	return products
}

// FailNext makes the next call to path answer with status.
func (a *API) FailNext(path string, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failing[path] = status
}

// Requests returns "METHOD /path" for every request seen so far.
func (a *API) Requests() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.requests))
	copy(out, a.requests)
	return out
}

func (a *API) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.requests = append(a.requests, r.Method+" "+r.URL.Path)
		status, fail := a.failing[r.URL.Path]
		if fail {
			delete(a.failing, r.URL.Path)
		}
		a.mu.Unlock()

		if fail {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	writeJSON(w, http.StatusOK, page(a.products, r))
}

func (a *API) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))

	a.mu.Lock()
	defer a.mu.Unlock()

	var matches []catalog.Product
	for _, p := range a.products {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Description), q) {
			matches = append(matches, p)
		}
	}
	writeJSON(w, http.StatusOK, page(matches, r))
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.find(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("Product with id '%d' not found", id)})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) addProduct(w http.ResponseWriter, r *http.Request) {
	var input catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.mu.Unlock()

	writeJSON(w, http.StatusCreated, apply(catalog.Product{ID: id}, input))
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var input catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	a.mu.Lock()
	p, ok := a.find(id)
	a.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("Product with id '%d' not found", id)})
		return
	}
	writeJSON(w, http.StatusOK, apply(p, input))
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	a.mu.Lock()
	p, ok := a.find(id)
	a.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("Product with id '%d' not found", id)})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		catalog.Product
		IsDeleted bool `json:"isDeleted"`
	}{p, true})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var creds catalog.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if creds.Username != DemoUsername || creds.Password != DemoPassword {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
		return
	}

	a.mu.Lock()
	access := fmt.Sprintf("access-%d", len(a.tokens)+1)
	a.tokens[access] = true
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, catalog.LoginResult{
		User:         a.user,
		AccessToken:  access,
		RefreshToken: "refresh-" + access,
	})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	a.mu.Lock()
	ok := a.tokens[token]
	a.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid/expired Token!"})
		return
	}
	writeJSON(w, http.StatusOK, a.user)
}

func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	access := strings.TrimPrefix(body.RefreshToken, "refresh-")

	a.mu.Lock()
	ok := a.tokens[access]
	if ok {
		delete(a.tokens, access)
		access = access + "r"
		a.tokens[access] = true
	}
	a.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Invalid refresh token"})
		return
	}
	writeJSON(w, http.StatusOK, catalog.Tokens{AccessToken: access, RefreshToken: "refresh-" + access})
}

func (a *API) find(id int) (catalog.Product, bool) {
	for _, p := range a.products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func page(products []catalog.Product, r *http.Request) catalog.ProductPage {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 30
	}
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	start := skip
	if start > len(products) {
		start = len(products)
	}
	end := len(products)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	out := make([]catalog.Product, end-start)
	copy(out, products[start:end])
	return catalog.ProductPage{Products: out, Total: len(products), Skip: skip, Limit: limit}
}

func apply(p catalog.Product, in catalog.ProductInput) catalog.Product {
	p.Title = in.Title
	p.Description = in.Description
	p.Brand = in.Brand
	p.Category = in.Category
	p.Thumbnail = in.Thumbnail
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.DiscountPercentage != nil {
		p.DiscountPercentage = *in.DiscountPercentage
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	return p
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
