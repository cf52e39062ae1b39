package api

import (
	"context"
	"net/http"
)

// User is the authenticated account as reported by the backend.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login starts a session; the backend sets the session cookie on success.
func (c *Client) Login(ctx context.Context, creds Credentials) (User, error) {
	var resp struct {
		Msg  string `json:"msg"`
		User User   `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", nil, creds, &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

// Register creates an account. The backend does not log the new user in.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, http.MethodPost, "/register", nil, reg, nil)
}

// Logout ends the session and clears the cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil, nil)
}

// CheckAuth reports whether the current session cookie is still valid.
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	var resp struct {
		LoggedIn bool `json:"logged_in"`
	}
	if err := c.do(ctx, http.MethodGet, "/check-auth", nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.LoggedIn, nil
}

// Profile fetches the authenticated user's account details.
func (c *Client) Profile(ctx context.Context) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/profile", nil, nil, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// PasswordChange is the payload for UpdatePassword.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdatePassword changes the account password after backend-side
// verification of the current one.
func (c *Client) UpdatePassword(ctx context.Context, change PasswordChange) error {
	return c.do(ctx, http.MethodPut, "/profile/password", nil, change, nil)
}
