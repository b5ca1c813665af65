package endpoints

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/storefront-admin/pkg/server"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/middleware"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/views"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
)

const flashCookieName = "storefront_flash"

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// setFlash leaves a notice for the next rendered page.
func setFlash(w http.ResponseWriter, kind, message string) {
	data, _ := json.Marshal(views.Flash{Kind: kind, Message: message})
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns and clears the pending notice, if any.
func popFlash(w http.ResponseWriter, r *http.Request) *views.Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flash views.Flash
	if err := json.Unmarshal(data, &flash); err != nil || flash.Message == "" {
		return nil
	}
	if flash.Kind != views.FlashSuccess {
		flash.Kind = views.FlashError
	}
	return &flash
}

// render fills in the flash and the signed-in user, then writes the page.
func render(s *server.Server, w http.ResponseWriter, r *http.Request, status int, name string, page views.Page) {
	if flash := popFlash(w, r); page.Flash == nil {
		page.Flash = flash
	}
	if ws, ok := middleware.WorkspaceFrom(r.Context()); ok && page.User == nil {
		page.User = ws.Auth.Snapshot().User
	}

	if err := s.Views.Render(w, status, name, page); err != nil {
		s.Logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func renderError(s *server.Server, w http.ResponseWriter, r *http.Request, status int, message string) {
	if middleware.WantsJSON(r) {
		respondWithError(w, status, message)
		return
	}
	render(s, w, r, status, views.PageError, views.Page{
		Title: http.StatusText(status),
		Data: struct {
			Status  int
			Message string
		}{status, message},
	})
}

// workspace returns the session workspace placed by the gate.
func workspace(r *http.Request) *session.Workspace {
	ws, _ := middleware.WorkspaceFrom(r.Context())
	return ws
}

func username(ws *session.Workspace) string {
	if ws == nil {
		return ""
	}
	if user := ws.Auth.Snapshot().User; user != nil {
		return user.Username
	}
	return ""
}

func clientIP(s *server.Server, r *http.Request) string {
	return middleware.ClientIP(r, s.Config().IsTrustedProxy)
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
