// Package catalog provides a client for the remote catalog API.
//
// The storefront never owns product data. Every product and every operator
// account lives in a third-party HTTP service (by default the public
// dummyjson.com demo API); this package wraps its endpoints.
//
// # Endpoints
//
//   - GET    /products?limit={limit}&skip={skip}
//   - GET    /products/search?q={q}
//   - GET    /products/{id}
//   - POST   /products/add
//   - PUT    /products/{id}
//   - DELETE /products/{id}
//   - POST   /auth/login
//   - GET    /auth/me
//   - POST   /auth/refresh
//
// # Usage
//
//	client := catalog.NewClient(catalog.Config{BaseURL: "https://dummyjson.com"})
//	page, err := client.ListProducts(ctx, 0, 10)
//	if err != nil {
//	    var apiErr *catalog.APIError
//	    if errors.As(err, &apiErr) {
//	        // apiErr.Message is the message sent by the remote service
//	    }
//	}
package catalog
