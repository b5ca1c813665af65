package endpoints

import (
	"github.com/doodlesbykumbi/storefront-admin/pkg/server"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/middleware"
)

// RegisterAll registers all endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStaticFiles(srv)
	RegisterStatusEndpoints(srv)
	RegisterMetricsEndpoint(srv)
	RegisterAuthEndpoints(srv)
	RegisterDashboardEndpoint(srv)
	RegisterProductsEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
}

func sessionGate(s *server.Server) *middleware.SessionGate {
	return middleware.NewSessionGate(s.Sessions, s.Logger)
}
