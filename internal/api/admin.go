package api

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"
)

// Admin endpoints. The server enforces permissions; on missing ones
// these return ErrForbidden.

// CreateUserRequest creates a workspace account.
type CreateUserRequest struct {
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Password    string   `json:"password"`
	Groups      []string `json:"groups,omitempty"`
}

// UpdateUserRequest updates an account. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Email       *string  `json:"email,omitempty"`
	DisplayName *string  `json:"display_name,omitempty"`
	Password    *string  `json:"password,omitempty"`
	Active      *bool    `json:"active,omitempty"`
	Groups      []string `json:"groups,omitempty"`
}

// ListUsers returns a page of workspace accounts.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) (*UserList, error) {
	list := &UserList{}
	if err := c.get(ctx, "/api/admin/users", pageQuery(page, perPage), list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetUser fetches an account.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	user := &User{}
	if err := c.get(ctx, "/api/admin/users/"+url.PathEscape(id), nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser creates an account.
func (c *Client) CreateUser(ctx context.Context, request *CreateUserRequest) (*User, error) {
	user := &User{}
	if err := c.post(ctx, "/api/admin/users", request, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser updates an account.
func (c *Client) UpdateUser(ctx context.Context, id string, request *UpdateUserRequest) (*User, error) {
	user := &User{}
	if err := c.put(ctx, "/api/admin/users/"+url.PathEscape(id), request, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/admin/users/"+url.PathEscape(id))
}

// GroupRequest creates or updates a user group.
type GroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// ListGroups returns all user groups.
func (c *Client) ListGroups(ctx context.Context) ([]UserGroup, error) {
	var groups []UserGroup
	if err := c.get(ctx, "/api/admin/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup creates a user group.
func (c *Client) CreateGroup(ctx context.Context, request *GroupRequest) (*UserGroup, error) {
	group := &UserGroup{}
	if err := c.post(ctx, "/api/admin/groups", request, group); err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateGroup updates a user group.
func (c *Client) UpdateGroup(ctx context.Context, id string, request *GroupRequest) (*UserGroup, error) {
	group := &UserGroup{}
	if err := c.put(ctx, "/api/admin/groups/"+url.PathEscape(id), request, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes a user group.
func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/admin/groups/"+url.PathEscape(id))
}

// AssignGroupProviders replaces the set of providers a group may use.
func (c *Client) AssignGroupProviders(ctx context.Context, id string, providerIDs []string) (*UserGroup, error) {
	request := struct {
		ProviderIDs []string `json:"provider_ids"`
	}{ProviderIDs: providerIDs}
	group := &UserGroup{}
	if err := c.put(ctx, "/api/admin/groups/"+url.PathEscape(id)+"/providers", request, group); err != nil {
		return nil, err
	}
	return group, nil
}

// ProviderRequest creates or updates a provider.
type ProviderRequest struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
	Enabled bool   `json:"enabled"`
}

// CreateProvider registers an upstream provider.
func (c *Client) CreateProvider(ctx context.Context, request *ProviderRequest) (*Provider, error) {
	provider := &Provider{}
	if err := c.post(ctx, "/api/admin/providers", request, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

// UpdateProvider updates an upstream provider.
func (c *Client) UpdateProvider(ctx context.Context, id string, request *ProviderRequest) (*Provider, error) {
	provider := &Provider{}
	if err := c.put(ctx, "/api/admin/providers/"+url.PathEscape(id), request, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

// DeleteProvider removes an upstream provider and its models.
func (c *Client) DeleteProvider(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/admin/providers/"+url.PathEscape(id))
}

// ModelRequest creates or updates a model entry.
type ModelRequest struct {
	Name              string          `json:"name"`
	DisplayName       string          `json:"display_name,omitempty"`
	ContextLength     int             `json:"context_length,omitempty"`
	InputPricePerM    decimal.Decimal `json:"input_price_per_m"`
	OutputPricePerM   decimal.Decimal `json:"output_price_per_m"`
	SupportsStreaming bool            `json:"supports_streaming"`
	Enabled           bool            `json:"enabled"`
}

// CreateModel registers a model under a provider.
func (c *Client) CreateModel(ctx context.Context, providerID string, request *ModelRequest) (*Model, error) {
	model := &Model{}
	if err := c.post(ctx, "/api/admin/providers/"+url.PathEscape(providerID)+"/models", request, model); err != nil {
		return nil, err
	}
	return model, nil
}

// UpdateModel updates a model entry.
func (c *Client) UpdateModel(ctx context.Context, providerID, modelID string, request *ModelRequest) (*Model, error) {
	model := &Model{}
	path := "/api/admin/providers/" + url.PathEscape(providerID) + "/models/" + url.PathEscape(modelID)
	if err := c.put(ctx, path, request, model); err != nil {
		return nil, err
	}
	return model, nil
}

// DeleteModel removes a model entry.
func (c *Client) DeleteModel(ctx context.Context, providerID, modelID string) error {
	return c.delete(ctx, "/api/admin/providers/"+url.PathEscape(providerID)+"/models/"+url.PathEscape(modelID))
}
