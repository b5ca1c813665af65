// Package server provides the HTTP server of the storefront admin.
//
// The server renders the admin pages and keeps one session workspace per
// logged-in operator. Routes are registered by the endpoints subpackage:
//
//	srv, err := server.NewServer(cfg, sessions, client, logger, "0.0.0.0", "8080")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoints.RegisterAll(srv)
//	log.Fatal(srv.Start())
//
// Public routes:
//
//   - GET/POST /login, POST /logout
//   - GET /status (HTML, or JSON with Accept: application/json or ?format=json)
//   - GET /metrics
//   - /css/* static assets
//
// Routes behind the session gate:
//
//   - GET / dashboard
//   - /products listing, detail and add/edit/delete forms
//   - GET /whoami
package server
