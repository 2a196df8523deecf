package chat

import (
	"context"
	"time"

	"github.com/strataai/strata/internal/api"
)

// modelNames lists model ids for shell completion. When no provider is
// selected yet it fans out over every visible provider.
func modelNames(ctx context.Context, client *api.Client, providerID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	providerIDs := []string{providerID}
	if providerID == "" {
		providers, err := client.ListProviders(ctx)
		if err != nil {
			return nil, err
		}
		providerIDs = providerIDs[:0]
		for _, provider := range providers {
			providerIDs = append(providerIDs, provider.ID)
		}
	}

	var names []string
	for _, id := range providerIDs {
		models, err := client.ListModels(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, model := range models {
			names = append(names, model.ID)
		}
	}
	return names, nil
}
