package state

import (
	"context"
	"sync"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
)

// DefaultPageSize is the limit a fresh ProductStore reports before its first fetch.
const DefaultPageSize = 10

// ProductAPI is the part of the catalog client the product mirror needs.
type ProductAPI interface {
	ListProducts(ctx context.Context, skip, limit int) (*catalog.ProductPage, error)
	SearchProducts(ctx context.Context, q string, skip, limit int) (*catalog.ProductPage, error)
	GetProduct(ctx context.Context, id int) (*catalog.Product, error)
	AddProduct(ctx context.Context, input catalog.ProductInput) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, id int, input catalog.ProductInput) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, id int) (int, error)
}

// ProductState is a snapshot of the catalog mirror.
type ProductState struct {
	Products       []catalog.Product    `json:"products"`
	CurrentProduct *catalog.Product     `json:"currentProduct"`
	IsLoading      bool                 `json:"isLoading"`
	Error          string               `json:"error,omitempty"`
	Total          int                  `json:"total"`
	Skip           int                  `json:"skip"`
	Limit          int                  `json:"limit"`
	Query          string               `json:"query,omitempty"`
	Requests       map[Action]Lifecycle `json:"requests"`
}

// ProductStore is the catalog mirror of one session.
type ProductStore struct {
	api ProductAPI

	mu       sync.RWMutex
	state    ProductState
	requests requests
	// held is the request that produced the held page; nil before the
	// first successful fetch and after a failed one.
	held *PageRequest
}

// PageRequest names one page of the listing or of a search.
type PageRequest struct {
	Query string
	Skip  int
	Limit int
}

// NewProductStore creates an empty mirror in front of api.
func NewProductStore(api ProductAPI) *ProductStore {
	return &ProductStore{
		api: api,
		state: ProductState{
			Products: []catalog.Product{},
			Limit:    DefaultPageSize,
		},
		requests: requests{},
	}
}

// Snapshot returns a copy of the current state.
func (s *ProductStore) Snapshot() ProductState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.state
	out.Products = make([]catalog.Product, len(s.state.Products))
	copy(out.Products, s.state.Products)
	if s.state.CurrentProduct != nil {
		current := *s.state.CurrentProduct
		out.CurrentProduct = &current
	}
	out.Requests = s.requests.clone()
	return out
}

// Empty reports whether the mirror holds no products.
func (s *ProductStore) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Products) == 0
}

// FetchProducts replaces the held page with page [skip, skip+limit).
func (s *ProductStore) FetchProducts(ctx context.Context, skip, limit int) error {
	s.fetchPending(ActionFetchProducts)

	page, err := s.api.ListProducts(ctx, skip, limit)
	s.fetchSettled(ActionFetchProducts, PageRequest{Skip: skip, Limit: limit}, page, err)
	return err
}

// SearchProducts replaces the held page with a page of search results.
func (s *ProductStore) SearchProducts(ctx context.Context, q string, skip, limit int) error {
	s.fetchPending(ActionSearchProducts)

	page, err := s.api.SearchProducts(ctx, q, skip, limit)
	s.fetchSettled(ActionSearchProducts, PageRequest{Query: q, Skip: skip, Limit: limit}, page, err)
	return err
}

func (s *ProductStore) fetchPending(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests.begin(action)
	s.state.IsLoading = true
	s.state.Error = ""
}

func (s *ProductStore) fetchSettled(action Action, req PageRequest, page *catalog.ProductPage, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests.settle(action, err)
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = err.Error()
		s.held = nil
		return
	}

	s.state.Products = page.Products
	if s.state.Products == nil {
		s.state.Products = []catalog.Product{}
	}
	s.state.Total = page.Total
	s.state.Skip = page.Skip
	s.state.Limit = page.Limit
	s.state.Query = req.Query
	s.held = &req
}

// Holds reports whether the mirror still has products from a fetch of
// exactly req. Add, update and delete splice into that page without
// changing what it holds.
func (s *ProductStore) Holds(req PageRequest) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.held != nil && *s.held == req && len(s.state.Products) > 0
}

// HeldPage returns the request behind the held page.
func (s *ProductStore) HeldPage() (PageRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.held == nil {
		return PageRequest{}, false
	}
	return *s.held, true
}

// FetchProductByID loads the product being viewed.
func (s *ProductStore) FetchProductByID(ctx context.Context, id int) (*catalog.Product, error) {
	s.begin(ActionFetchProductByID)

	product, err := s.api.GetProduct(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests.settle(ActionFetchProductByID, err)
	if err != nil {
		return nil, err
	}
	s.state.CurrentProduct = product
	return product, nil
}

// AddProduct submits input and prepends the created record to the mirror.
func (s *ProductStore) AddProduct(ctx context.Context, input catalog.ProductInput) (*catalog.Product, error) {
	s.begin(ActionAddProduct)

	product, err := s.api.AddProduct(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests.settle(ActionAddProduct, err)
	if err != nil {
		return nil, err
	}
	s.state.Products = append([]catalog.Product{*product}, s.state.Products...)
	return product, nil
}

// UpdateProduct submits input and replaces the held record with the response.
// A record that is not on the held page is left out of the mirror.
func (s *ProductStore) UpdateProduct(ctx context.Context, id int, input catalog.ProductInput) (*catalog.Product, error) {
	s.begin(ActionUpdateProduct)

	product, err := s.api.UpdateProduct(ctx, id, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests.settle(ActionUpdateProduct, err)
	if err != nil {
		return nil, err
	}
	for i := range s.state.Products {
		if s.state.Products[i].ID == product.ID {
			s.state.Products[i] = *product
			break
		}
	}
	return product, nil
}

// DeleteProduct deletes a record and drops it from the mirror.
func (s *ProductStore) DeleteProduct(ctx context.Context, id int) error {
	s.begin(ActionDeleteProduct)

	deleted, err := s.api.DeleteProduct(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests.settle(ActionDeleteProduct, err)
	if err != nil {
		return err
	}
	kept := s.state.Products[:0:0]
	for _, p := range s.state.Products {
		if p.ID != deleted {
			kept = append(kept, p)
		}
	}
	s.state.Products = kept
	return nil
}

// ClearCurrentProduct forgets the product being viewed.
func (s *ProductStore) ClearCurrentProduct() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentProduct = nil
}

// ClearError drops the listing error.
func (s *ProductStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

func (s *ProductStore) begin(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests.begin(action)
}
