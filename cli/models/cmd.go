package models

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/cli"
)

// NewCmd instantiates and returns the models command, the user-facing
// catalog of providers and their models.
func NewCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models [provider-id]",
		Short: "Browse available providers and models",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var providers []api.Provider
			if len(args) == 1 {
				providers = []api.Provider{{ID: args[0]}}
			} else {
				var err error
				providers, err = client.ListProviders(ctx)
				if err != nil {
					return errors.Wrap(err, "listing providers")
				}
			}

			cli.Title("STRATA MODEL CATALOG")
			for _, provider := range providers {
				if provider.Name != "" {
					cli.Info("%s (%s)\n", provider.Name, provider.ID)
				} else {
					cli.Info("%s\n", provider.ID)
				}
				models, err := client.ListModels(ctx, provider.ID)
				if err != nil {
					return errors.Wrapf(err, "listing models of %s", provider.ID)
				}
				for _, model := range models {
					if !model.Enabled {
						continue
					}
					cli.Muted("  %s - $%s in / $%s out per 1M tokens\n",
						model.ID, model.InputPricePerM.String(), model.OutputPricePerM.String())
				}
			}
			return nil
		},
	}
	return cmd
}
