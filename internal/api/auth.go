package api

import "context"

// LoginResponse carries the bearer token and the authenticated user.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login exchanges credentials for a bearer token. The token is set on
// the client for subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	response := &LoginResponse{}
	if err := c.post(ctx, "/api/auth/login", body, response); err != nil {
		return nil, err
	}
	c.token = response.Token
	return response, nil
}

// Me returns the authenticated user with resolved permissions.
func (c *Client) Me(ctx context.Context) (*User, error) {
	user := &User{}
	if err := c.get(ctx, "/api/auth/me", nil, user); err != nil {
		return nil, err
	}
	return user, nil
}
