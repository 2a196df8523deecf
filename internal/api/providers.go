package api

import (
	"context"
	"net/url"
)

// ListProviders returns the providers visible to the caller.
func (c *Client) ListProviders(ctx context.Context) ([]Provider, error) {
	var providers []Provider
	if err := c.get(ctx, "/api/providers", nil, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// ListModels returns the models of a provider.
func (c *Client) ListModels(ctx context.Context, providerID string) ([]Model, error) {
	var models []Model
	if err := c.get(ctx, "/api/providers/"+url.PathEscape(providerID)+"/models", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}
