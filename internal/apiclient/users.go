package apiclient

import (
	"context"
	"net/http"

	"scholarvault/internal/domain/models/library"
)

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Username *string `json:"username,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. An empty username is omitted.
func (c *Client) Register(ctx context.Context, email, password, username string) (*library.User, error) {
	req := registerRequest{Email: email, Password: password}
	if username != "" {
		req.Username = &username
	}
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	var user library.User
	err = c.do(ctx, call{
		method:      http.MethodPost,
		path:        "/api/auth/register",
		body:        body,
		contentType: "application/json",
		public:      true,
		fallback:    "Registration failed",
		out:         &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, email, password string) (*library.LoginResponse, error) {
	body, err := jsonBody(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var resp library.LoginResponse
	err = c.do(ctx, call{
		method:      http.MethodPost,
		path:        "/api/auth/login",
		body:        body,
		contentType: "application/json",
		public:      true,
		fallback:    "Login failed",
		out:         &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user owning the context's token
func (c *Client) Me(ctx context.Context) (*library.User, error) {
	return c.user(ctx, call{
		method:   http.MethodGet,
		path:     "/api/user/me",
		fallback: "Failed to get current user",
	})
}

// UpdateProfile sets the username
func (c *Client) UpdateProfile(ctx context.Context, username string) (*library.User, error) {
	body, err := jsonBody(map[string]string{"username": username})
	if err != nil {
		return nil, err
	}
	return c.user(ctx, call{
		method:      http.MethodPut,
		path:        "/api/user/profile",
		body:        body,
		contentType: "application/json",
		fallback:    "Failed to update profile",
	})
}

// DeleteProfileImage removes the profile image
func (c *Client) DeleteProfileImage(ctx context.Context) (*library.User, error) {
	return c.user(ctx, call{
		method:   http.MethodDelete,
		path:     "/api/user/profile-image",
		fallback: "Failed to delete profile image",
	})
}

func (c *Client) user(ctx context.Context, cl call) (*library.User, error) {
	var user library.User
	cl.out = &user
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return &user, nil
}
