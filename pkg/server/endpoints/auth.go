package endpoints

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/storefront-admin/pkg/audit"
	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/forms"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/views"
)

type loginData struct {
	Username string
	Error    string
}

// RegisterAuthEndpoints registers login, logout and session refresh.
func RegisterAuthEndpoints(s *server.Server) {
	s.Router.HandleFunc("/login", handleLoginPage(s)).Methods("GET")
	s.Router.HandleFunc("/login", handleLogin(s)).Methods("POST")
	s.Router.HandleFunc("/logout", handleLogout(s)).Methods("POST")

	s.Router.Handle("/session/refresh", sessionGate(s).Middleware(handleRefresh(s))).Methods("POST")
}

func handleLoginPage(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ws, err := s.Sessions.Resolve(r); err == nil && ws.Auth.Snapshot().IsAuthenticated {
			redirect(w, r, "/")
			return
		}
		render(s, w, r, http.StatusOK, views.PageLogin, views.Page{Title: "Sign in", Data: loginData{}})
	}
}

func handleLogin(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := forms.ParseLoginForm(r)
		if err := form.Validate(); err != nil {
			render(s, w, r, http.StatusBadRequest, views.PageLogin, views.Page{
				Title: "Sign in",
				Flash: &views.Flash{Kind: views.FlashError, Message: err.Error()},
				Data:  loginData{Username: form.Username},
			})
			return
		}

		ip := clientIP(s, r)
		ws, cookie, err := s.Sessions.Login(r.Context(), form.Credentials())
		if err != nil {
			message := "Login failed"
			status := http.StatusBadGateway
			var apiErr *catalog.APIError
			if errors.As(err, &apiErr) {
				message = apiErr.Detail()
				status = http.StatusUnauthorized
			}

			audit.LogContext(r.Context(), audit.LoginEvent{
				Username:     form.Username,
				ClientIP:     ip,
				Success:      false,
				ErrorMessage: message,
			})
			s.Logger.Info("login rejected", zap.String("user", form.Username), zap.Error(err))

			render(s, w, r, status, views.PageLogin, views.Page{
				Title: "Sign in",
				Flash: &views.Flash{Kind: views.FlashError, Message: "Invalid credentials"},
				Data:  loginData{Username: form.Username, Error: message},
			})
			return
		}

		audit.LogContext(r.Context(), audit.LoginEvent{
			Username:  form.Username,
			ClientIP:  ip,
			SessionID: ws.ID,
			Success:   true,
		})

		http.SetCookie(w, cookie)
		setFlash(w, views.FlashSuccess, "Login successful!")
		redirect(w, r, "/")
	}
}

func handleLogout(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ws, err := s.Sessions.Resolve(r); err == nil {
			user := username(ws)
			if err := s.Sessions.Logout(r.Context(), ws.ID); err != nil {
				s.Logger.Error("failed to close session", zap.String("session", ws.ID), zap.Error(err))
			}
			audit.LogContext(r.Context(), audit.LogoutEvent{
				Username:  user,
				ClientIP:  clientIP(s, r),
				SessionID: ws.ID,
			})
		}

		http.SetCookie(w, s.Sessions.ClearCookie())
		setFlash(w, views.FlashSuccess, "You have been logged out")
		redirect(w, r, "/login")
	}
}

// handleRefresh swaps the remote tokens of the session for fresh ones.
func handleRefresh(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Sessions.Refresh(r.Context(), workspace(r)); err != nil {
			s.Logger.Warn("failed to refresh session", zap.Error(err))
			respondWithError(w, http.StatusBadGateway, "Failed to refresh session")
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
	}
}
