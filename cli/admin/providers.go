package admin

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/cli"
	"github.com/strataai/strata/internal/permission"
)

// newProvidersCmd instantiates and returns the admin providers command.
func newProvidersCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Manage model providers",
	}
	cmd.AddCommand(newProvidersListCmd(client))
	cmd.AddCommand(newProvidersCreateCmd(client))
	cmd.AddCommand(newProvidersUpdateCmd(client))
	cmd.AddCommand(newProvidersDeleteCmd(client))
	return cmd
}

func newProvidersListCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List model providers",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.ProvidersRead); err != nil {
				return err
			}

			cli.Title("STRATA PROVIDERS")

			providers, err := client.ListProviders(ctx)
			if err != nil {
				return errors.Wrap(err, "listing providers")
			}
			for _, provider := range providers {
				state := "enabled"
				if !provider.Enabled {
					state = "disabled"
				}
				cli.Info("%s - %s [%s, %s]\n", provider.ID, provider.Name, provider.Kind, state)
				if provider.BaseURL != "" {
					cli.Muted("  %s\n", provider.BaseURL)
				}
			}
			return nil
		},
	}
	return cmd
}

func newProvidersCreateCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Kind    string
		BaseURL string
		Enabled bool
	}

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a model provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.ProvidersEdit); err != nil {
				return err
			}

			apiKey, err := cli.PromptSecret("Provider API key:")
			if err != nil {
				return errors.Wrap(err, "reading api key")
			}

			provider, err := client.CreateProvider(ctx, &api.ProviderRequest{
				Name:    args[0],
				Kind:    opts.Kind,
				BaseURL: opts.BaseURL,
				APIKey:  apiKey,
				Enabled: opts.Enabled,
			})
			if err != nil {
				return errors.Wrap(err, "creating provider")
			}
			cli.Success("Created provider %s (%s)\n", provider.Name, provider.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "openai", "Provider kind (openai, anthropic, ...)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "Override base URL")
	cmd.Flags().BoolVar(&opts.Enabled, "enabled", true, "Enable the provider")
	return cmd
}

func newProvidersUpdateCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Name    string
		Kind    string
		BaseURL string
		Enabled bool
		APIKey  bool
	}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a model provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.ProvidersEdit); err != nil {
				return err
			}

			request := &api.ProviderRequest{
				Name:    opts.Name,
				Kind:    opts.Kind,
				BaseURL: opts.BaseURL,
				Enabled: opts.Enabled,
			}
			if opts.APIKey {
				apiKey, err := cli.PromptSecret("New provider API key:")
				if err != nil {
					return errors.Wrap(err, "reading api key")
				}
				request.APIKey = apiKey
			}

			provider, err := client.UpdateProvider(ctx, args[0], request)
			if err != nil {
				return errors.Wrap(err, "updating provider")
			}
			cli.Success("Updated provider %s\n", provider.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "New name")
	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Provider kind")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "Override base URL")
	cmd.Flags().BoolVar(&opts.Enabled, "enabled", true, "Enable the provider")
	cmd.Flags().BoolVar(&opts.APIKey, "api-key", false, "Prompt for a new API key")
	return cmd
}

func newProvidersDeleteCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Force bool
	}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a model provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.ProvidersEdit); err != nil {
				return err
			}

			if !opts.Force && !cli.QueryUser(fmt.Sprintf("Delete provider %s and its models?", args[0])) {
				return nil
			}
			if err := client.DeleteProvider(ctx, args[0]); err != nil {
				return errors.Wrap(err, "deleting provider")
			}
			cli.Success("Deleted provider %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Skip confirmation")
	return cmd
}
