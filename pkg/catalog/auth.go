package catalog

import (
	"context"
	"net/http"
)

// Login posts credentials to the auth endpoint.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, request{
		op:      "loginUser",
		summary: "Invalid credentials",
		method:  http.MethodPost,
		path:    "/auth/login",
		body:    creds,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentUser returns the profile that token belongs to.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var user User
	err := c.do(ctx, request{
		op:      "getCurrentUser",
		summary: "Failed to get current user",
		method:  http.MethodGet,
		path:    "/auth/me",
		token:   token,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string, expiresInMins int) (*Tokens, error) {
	body := struct {
		RefreshToken  string `json:"refreshToken"`
		ExpiresInMins int    `json:"expiresInMins,omitempty"`
	}{refreshToken, expiresInMins}

	var tokens Tokens
	err := c.do(ctx, request{
		op:      "refreshToken",
		summary: "Failed to refresh session",
		method:  http.MethodPost,
		path:    "/auth/refresh",
		body:    body,
	}, &tokens)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}
