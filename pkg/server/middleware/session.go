package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
)

type contextKey string

const workspaceKey contextKey = "workspace"

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

// SessionGate admits requests that carry a live session cookie.
type SessionGate struct {
	Sessions *session.Manager
	Logger   *zap.Logger
}

// NewSessionGate creates the gate middleware.
func NewSessionGate(sessions *session.Manager, logger *zap.Logger) *SessionGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionGate{Sessions: sessions, Logger: logger}
}

// Middleware resolves the session cookie to a workspace and stores it in
// the request context. Browsers without a session are redirected to the
// login page; JSON clients get a 401.
func (g *SessionGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := g.Sessions.Resolve(r)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) {
				g.Logger.Error("failed to resolve session", zap.Error(err))
			}
			g.deny(w, r)
			return
		}

		// The remote side may have revoked the token since the last request.
		if !ws.Auth.Snapshot().IsAuthenticated {
			if err := g.Sessions.Logout(r.Context(), ws.ID); err != nil {
				g.Logger.Warn("failed to close revoked session", zap.String("session", ws.ID), zap.Error(err))
			}
			g.deny(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithWorkspace(r.Context(), ws)))
	})
}

func (g *SessionGate) deny(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, g.Sessions.ClearCookie())

	if WantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"})
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// WithWorkspace returns ctx carrying ws.
func WithWorkspace(ctx context.Context, ws *session.Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey, ws)
}

// WorkspaceFrom returns the workspace stored by the gate.
func WorkspaceFrom(ctx context.Context) (*session.Workspace, bool) {
	ws, ok := ctx.Value(workspaceKey).(*session.Workspace)
	return ws, ok && ws != nil
}

// WantsJSON reports whether the client asked for JSON.
func WantsJSON(r *http.Request) bool {
	return r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json")
}
