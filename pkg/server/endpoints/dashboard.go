package endpoints

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/storefront-admin/pkg/audit"
	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/dashboard"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/middleware"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/views"
)

type dashboardData struct {
	Greeting string
	Today    string
	Summary  dashboard.Summary
	Error    string
}

// RegisterDashboardEndpoint registers GET /, behind the session gate.
func RegisterDashboardEndpoint(s *server.Server) {
	s.Router.Handle("/", sessionGate(s).Middleware(handleDashboard(s))).Methods("GET")
}

func handleDashboard(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspace(r)
		ctx := r.Context()

		if _, err := ws.Auth.CurrentUser(ctx); err != nil {
			if errors.Is(err, catalog.ErrUnauthorized) {
				user := username(ws)
				_ = s.Sessions.Logout(ctx, ws.ID)
				audit.LogContext(ctx, audit.LogoutEvent{
					Username:  user,
					ClientIP:  clientIP(s, r),
					SessionID: ws.ID,
					Reason:    "token rejected",
				})
				http.SetCookie(w, s.Sessions.ClearCookie())
				setFlash(w, views.FlashError, "Your session has expired, please sign in again")
				redirect(w, r, middleware.LoginPath)
				return
			}
			s.Logger.Warn("failed to refresh profile", zap.String("session", ws.ID), zap.Error(err))
		}

		if ws.Products.Empty() {
			if err := ws.Products.FetchProducts(ctx, 0, s.Config().DashboardPageSize); err != nil {
				s.Logger.Warn("failed to load dashboard products", zap.Error(err))
			}
		}

		products := ws.Products.Snapshot()
		summary := dashboard.Summarize(products.Products)
		if middleware.WantsJSON(r) {
			respondWithJSON(w, http.StatusOK, summary)
			return
		}

		greeting := "User"
		if user := ws.Auth.Snapshot().User; user != nil && user.FirstName != "" {
			greeting = user.FirstName
		}

		render(s, w, r, http.StatusOK, views.PageDashboard, views.Page{
			Title: "Dashboard",
			Nav:   "dashboard",
			Data: dashboardData{
				Greeting: greeting,
				Today:    time.Now().Format("Monday, January 2, 2006"),
				Summary:  summary,
				Error:    products.Error,
			},
		})
	}
}
