package state

import (
	"context"
	"errors"
	"sync"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
)

// ErrNotAuthenticated is returned by actions that need a token when none is held.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthAPI is the part of the catalog client the auth container needs.
type AuthAPI interface {
	Login(ctx context.Context, creds catalog.Credentials) (*catalog.LoginResult, error)
	CurrentUser(ctx context.Context, token string) (*catalog.User, error)
	Refresh(ctx context.Context, refreshToken string, expiresInMins int) (*catalog.Tokens, error)
}

// AuthState is a snapshot of the operator identity.
type AuthState struct {
	User            *catalog.User        `json:"user"`
	Token           string               `json:"-"`
	RefreshToken    string               `json:"-"`
	IsAuthenticated bool                 `json:"isAuthenticated"`
	IsLoading       bool                 `json:"isLoading"`
	Error           string               `json:"error,omitempty"`
	Requests        map[Action]Lifecycle `json:"requests"`
}

// AuthStore holds the identity of one session.
type AuthStore struct {
	api AuthAPI

	mu       sync.RWMutex
	state    AuthState
	requests requests
}

// NewAuthStore creates a logged-out container.
func NewAuthStore(api AuthAPI) *AuthStore {
	return &AuthStore{api: api, requests: requests{}}
}

// Snapshot returns a copy of the current state.
func (s *AuthStore) Snapshot() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.state
	if s.state.User != nil {
		user := *s.state.User
		out.User = &user
	}
	out.Requests = s.requests.clone()
	return out
}

// Token returns the held access token, if any.
func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Login exchanges credentials for a token and profile.
func (s *AuthStore) Login(ctx context.Context, creds catalog.Credentials) (*catalog.LoginResult, error) {
	s.mu.Lock()
	s.requests.begin(ActionLogin)
	s.state.IsLoading = true
	s.state.Error = ""
	s.mu.Unlock()

	result, err := s.api.Login(ctx, creds)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests.settle(ActionLogin, err)
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = errorMessage(err)
		return nil, err
	}

	user := result.User
	s.state.User = &user
	s.state.Token = result.AccessToken
	s.state.RefreshToken = result.RefreshToken
	s.state.IsAuthenticated = true
	return result, nil
}

// CurrentUser reloads the profile behind the held token. A token the remote
// side no longer accepts logs the container out.
func (s *AuthStore) CurrentUser(ctx context.Context) (*catalog.User, error) {
	s.mu.Lock()
	token := s.state.Token
	if token == "" {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	s.requests.begin(ActionCurrentUser)
	s.mu.Unlock()

	user, err := s.api.CurrentUser(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests.settle(ActionCurrentUser, err)
	if err != nil {
		if errors.Is(err, catalog.ErrUnauthorized) && s.state.Token == token {
			s.logout()
		}
		return nil, err
	}
	if s.state.Token == token {
		s.state.User = user
	}
	return user, nil
}

// RefreshSession swaps the held token pair for a fresh one.
func (s *AuthStore) RefreshSession(ctx context.Context, expiresInMins int) (*catalog.Tokens, error) {
	s.mu.Lock()
	refresh := s.state.RefreshToken
	if refresh == "" {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	s.requests.begin(ActionRefreshSession)
	s.mu.Unlock()

	tokens, err := s.api.Refresh(ctx, refresh, expiresInMins)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests.settle(ActionRefreshSession, err)
	if err != nil {
		return nil, err
	}
	s.state.Token = tokens.AccessToken
	s.state.RefreshToken = tokens.RefreshToken
	return tokens, nil
}

// Restore rehydrates the container from persisted session data.
func (s *AuthStore) Restore(token, refreshToken string, user *catalog.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Token = token
	s.state.RefreshToken = refreshToken
	s.state.IsAuthenticated = token != ""
	if user != nil {
		u := *user
		s.state.User = &u
	}
}

// Logout forgets the token and profile.
func (s *AuthStore) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logout()
}

func (s *AuthStore) logout() {
	s.state = AuthState{}
	s.requests = requests{}
}

// ClearError drops the login error.
func (s *AuthStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

// errorMessage prefers the text sent by the remote API.
func errorMessage(err error) string {
	var apiErr *catalog.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail()
	}
	return err.Error()
}
