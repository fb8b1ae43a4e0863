package apiclient

import (
	"context"
	"net/http"
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// AuthResponse is what login, signup and refresh return. Session may be
// missing on signup when the service defers it.
type AuthResponse struct {
	User    User     `json:"user"`
	Session *Session `json:"session"`
}

// AuthAPI is the part of the client the session store needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (AuthResponse, error)
	Signup(ctx context.Context, fullName, email, password string) (AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (AuthResponse, error)
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.Do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) Signup(ctx context.Context, fullName, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.Do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"full_name": fullName,
		"email":     email,
		"password":  password,
	}, &out)
	return out, err
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (AuthResponse, error) {
	var out AuthResponse
	err := c.Do(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}, &out)
	return out, err
}
