package endpoints

import (
	"github.com/doodlesbykumbi/storefront-admin/pkg/metrics"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server"
)

// RegisterMetricsEndpoint exposes Prometheus metrics unless disabled.
func RegisterMetricsEndpoint(s *server.Server) {
	if !s.Config().MetricsEnabled {
		return
	}
	s.Router.Handle("/metrics", metrics.Handler()).Methods("GET")
}
