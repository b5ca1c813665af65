// Command storefrontctl runs the storefront admin console, a server-rendered
// back office for a remote product catalog.
//
// Operators sign in with their catalog credentials, browse and search the
// product list, add, edit and delete products, and view a dashboard that
// summarises the catalog.
//
// # Quick Start
//
//	# Generate a data key for session encryption
//	export STOREFRONT_DATA_KEY="$(storefrontctl data-key generate)"
//
//	# Start the server with in-memory sessions
//	storefrontctl server
//
//	# Or keep sessions in Postgres
//	export DATABASE_URL=postgres://localhost/storefront?sslmode=disable
//	export STOREFRONT_SESSION_STORE=postgres
//	storefrontctl db migrate
//	storefrontctl server --no-migrate
//
// # Environment Variables
//
//   - STOREFRONT_DATA_KEY: Base64-encoded 256-bit key for session encryption
//   - DATABASE_URL: PostgreSQL connection string for the postgres session store
//   - AUDIT_DATABASE_URL: optional database for persisted audit events
//   - STOREFRONT_CONFIG_PATH: directory holding storefront.yml
//   - STOREFRONT_LOG_LEVEL: debug enables verbose logging
//   - PORT, BIND_ADDRESS: listen address (default 0.0.0.0:8000)
package main
