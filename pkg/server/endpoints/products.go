package endpoints

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/storefront-admin/pkg/audit"
	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/forms"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/middleware"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/views"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
	"github.com/doodlesbykumbi/storefront-admin/pkg/state"
)

const maxPageSize = 100

type productListData struct {
	State      state.ProductState
	From       int
	To         int
	PrevURL    string
	NextURL    string
	RefreshURL string
}

type productFormData struct {
	Form    forms.ProductForm
	Errors  forms.FieldErrors
	Options []forms.Option
	Action  string
	Editing bool
}

// RegisterProductsEndpoints registers the catalog pages, behind the session gate.
func RegisterProductsEndpoints(s *server.Server) {
	productsRouter := s.Router.PathPrefix("/products").Subrouter()
	productsRouter.Use(sessionGate(s).Middleware)

	productsRouter.HandleFunc("", handleListProducts(s)).Methods("GET")
	productsRouter.HandleFunc("", handleCreateProduct(s)).Methods("POST")
	productsRouter.HandleFunc("/new", handleNewProduct(s)).Methods("GET")
	productsRouter.HandleFunc("/{id:[0-9]+}", handleShowProduct(s)).Methods("GET")
	productsRouter.HandleFunc("/{id:[0-9]+}", handleUpdateProduct(s)).Methods("POST")
	productsRouter.HandleFunc("/{id:[0-9]+}/edit", handleEditProduct(s)).Methods("GET")
	productsRouter.HandleFunc("/{id:[0-9]+}/delete", handleDeleteProduct(s)).Methods("POST")
}

func handleListProducts(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspace(r)
		query := r.URL.Query()
		q := query.Get("q")
		skip := queryInt(query, "skip", 0)
		limit := queryInt(query, "limit", s.Config().PageSize)
		if limit == 0 {
			limit = s.Config().PageSize
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}

		ws.Products.ClearCurrentProduct()

		// The held page keeps the splices of add, update and delete; only a
		// different page or an explicit refresh goes back to the network.
		req := state.PageRequest{Query: q, Skip: skip, Limit: limit}
		var err error
		if query.Get("refresh") != "" || !ws.Products.Holds(req) {
			if q != "" {
				err = ws.Products.SearchProducts(r.Context(), q, skip, limit)
			} else {
				err = ws.Products.FetchProducts(r.Context(), skip, limit)
			}
			if err != nil {
				s.Logger.Warn("failed to fetch products", zap.Error(err))
			}
		}

		snapshot := ws.Products.Snapshot()
		if middleware.WantsJSON(r) {
			if err != nil {
				respondWithError(w, http.StatusBadGateway, snapshot.Error)
				return
			}
			respondWithJSON(w, http.StatusOK, snapshot)
			return
		}

		render(s, w, r, http.StatusOK, views.PageProducts, views.Page{
			Title: "Products",
			Nav:   "products",
			Data:  paginate(snapshot),
		})
	}
}

// paginate works out the visible range and the neighbour page links.
func paginate(st state.ProductState) productListData {
	data := productListData{State: st}
	if len(st.Products) > 0 {
		data.From = st.Skip + 1
		data.To = st.Skip + len(st.Products)
	}

	limit := st.Limit
	if limit <= 0 {
		limit = state.DefaultPageSize
	}
	link := func(skip int) string {
		return pageURL(state.PageRequest{Query: st.Query, Skip: skip, Limit: limit})
	}

	data.RefreshURL = link(st.Skip) + "&refresh=1"

	if st.Skip > 0 {
		prev := st.Skip - limit
		if prev < 0 {
			prev = 0
		}
		data.PrevURL = link(prev)
	}
	if st.Skip+limit < st.Total {
		data.NextURL = link(st.Skip + limit)
	}
	return data
}

func pageURL(req state.PageRequest) string {
	v := url.Values{}
	v.Set("skip", strconv.Itoa(req.Skip))
	v.Set("limit", strconv.Itoa(req.Limit))
	if req.Query != "" {
		v.Set("q", req.Query)
	}
	return "/products?" + v.Encode()
}

// heldPageURL is where a write returns to: the page the mirror holds, so
// the splice is what the operator sees.
func heldPageURL(s *server.Server, ws *session.Workspace) string {
	req, ok := ws.Products.HeldPage()
	if !ok || (req == state.PageRequest{Limit: s.Config().PageSize}) {
		return "/products"
	}
	return pageURL(req)
}

func handleNewProduct(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderProductForm(s, w, r, http.StatusOK, productFormData{
			Options: forms.CategoryOptions(""),
			Action:  "/products",
		}, "")
	}
}

func handleCreateProduct(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspace(r)
		form := forms.ParseProductForm(r)
		data := productFormData{
			Form:    form,
			Options: forms.CategoryOptions(form.Category),
			Action:  "/products",
		}

		if err := form.Validate(); err != nil {
			errors.As(err, &data.Errors)
			renderProductForm(s, w, r, http.StatusUnprocessableEntity, data, "")
			return
		}

		product, err := ws.Products.AddProduct(r.Context(), form.Input())
		event := audit.ProductEvent{
			Username:  username(ws),
			ClientIP:  clientIP(s, r),
			Operation: audit.ProductAdd,
			Title:     form.Title,
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = err.Error()
			audit.LogContext(r.Context(), event)
			s.Logger.Warn("failed to add product", zap.Error(err))

			renderProductForm(s, w, r, http.StatusBadGateway, data, "Failed to add product")
			return
		}
		event.ProductID = product.ID
		audit.LogContext(r.Context(), event)

		setFlash(w, views.FlashSuccess, "Product added successfully")
		redirect(w, r, heldPageURL(s, ws))
	}
}

func handleShowProduct(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, ok := fetchProduct(s, w, r)
		if !ok {
			return
		}
		if middleware.WantsJSON(r) {
			respondWithJSON(w, http.StatusOK, product)
			return
		}
		render(s, w, r, http.StatusOK, views.PageProduct, views.Page{
			Title: product.Title,
			Nav:   "products",
			Data:  struct{ Product *catalog.Product }{product},
		})
	}
}

func handleEditProduct(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, ok := fetchProduct(s, w, r)
		if !ok {
			return
		}
		renderProductForm(s, w, r, http.StatusOK, productFormData{
			Form:    forms.FromProduct(product),
			Options: forms.CategoryOptions(product.Category),
			Action:  "/products/" + strconv.Itoa(product.ID),
			Editing: true,
		}, "")
	}
}

func handleUpdateProduct(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspace(r)
		id, ok := productID(r)
		if !ok {
			renderError(s, w, r, http.StatusNotFound, "Product not found")
			return
		}
		form := forms.ParseProductForm(r)
		data := productFormData{
			Form:    form,
			Options: forms.CategoryOptions(form.Category),
			Action:  "/products/" + strconv.Itoa(id),
			Editing: true,
		}

		if err := form.Validate(); err != nil {
			errors.As(err, &data.Errors)
			renderProductForm(s, w, r, http.StatusUnprocessableEntity, data, "")
			return
		}

		_, err := ws.Products.UpdateProduct(r.Context(), id, form.Input())
		event := audit.ProductEvent{
			Username:  username(ws),
			ClientIP:  clientIP(s, r),
			Operation: audit.ProductUpdate,
			ProductID: id,
			Title:     form.Title,
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = err.Error()
			audit.LogContext(r.Context(), event)
			s.Logger.Warn("failed to update product", zap.Int("id", id), zap.Error(err))

			renderProductForm(s, w, r, http.StatusBadGateway, data, "Failed to update product")
			return
		}
		audit.LogContext(r.Context(), event)

		setFlash(w, views.FlashSuccess, "Product updated successfully")
		redirect(w, r, heldPageURL(s, ws))
	}
}

func handleDeleteProduct(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspace(r)
		id, ok := productID(r)
		if !ok {
			renderError(s, w, r, http.StatusNotFound, "Product not found")
			return
		}

		err := ws.Products.DeleteProduct(r.Context(), id)
		event := audit.ProductEvent{
			Username:  username(ws),
			ClientIP:  clientIP(s, r),
			Operation: audit.ProductDelete,
			ProductID: id,
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = err.Error()
			s.Logger.Warn("failed to delete product", zap.Int("id", id), zap.Error(err))
			setFlash(w, views.FlashError, "Failed to delete product")
		} else {
			setFlash(w, views.FlashSuccess, "Product deleted successfully")
		}
		audit.LogContext(r.Context(), event)

		redirect(w, r, heldPageURL(s, ws))
	}
}

// fetchProduct loads the product named by the route, writing the error
// page itself when that fails.
func fetchProduct(s *server.Server, w http.ResponseWriter, r *http.Request) (*catalog.Product, bool) {
	id, ok := productID(r)
	if !ok {
		renderError(s, w, r, http.StatusNotFound, "Product not found")
		return nil, false
	}
	product, err := workspace(r).Products.FetchProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderError(s, w, r, http.StatusNotFound, "Product not found")
			return nil, false
		}
		s.Logger.Warn("failed to fetch product", zap.Error(err))
		renderError(s, w, r, http.StatusBadGateway, "Failed to fetch product")
		return nil, false
	}
	return product, true
}

// renderProductForm shows the add/edit form, with an error notice when
// failure is set.
func renderProductForm(s *server.Server, w http.ResponseWriter, r *http.Request, status int, data productFormData, failure string) {
	page := views.Page{Title: "Add Product", Nav: "products", Data: data}
	if data.Editing {
		page.Title = "Edit Product"
	}
	if failure != "" {
		page.Flash = &views.Flash{Kind: views.FlashError, Message: failure}
	}
	render(s, w, r, status, views.PageProductForm, page)
}

// productID reads the route id. Ids too large for an int name no product.
func productID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, false
	}
	return id, true
}

// queryInt reads a non-negative integer parameter, falling back to def.
func queryInt(q url.Values, name string, def int) int {
	v, err := strconv.Atoi(q.Get(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}
