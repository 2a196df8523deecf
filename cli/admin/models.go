package admin

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/cli"
	"github.com/strataai/strata/internal/permission"
)

// newModelsCmd instantiates and returns the admin models command.
func newModelsCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage provider models",
	}
	cmd.AddCommand(newModelsListCmd(client))
	cmd.AddCommand(newModelsCreateCmd(client))
	cmd.AddCommand(newModelsUpdateCmd(client))
	cmd.AddCommand(newModelsDeleteCmd(client))
	return cmd
}

func newModelsListCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <provider-id>",
		Short: "List the models of a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.ModelsRead); err != nil {
				return err
			}

			cli.Title("STRATA MODELS %s", args[0])

			models, err := client.ListModels(ctx, args[0])
			if err != nil {
				return errors.Wrap(err, "listing models")
			}
			for _, model := range models {
				state := "enabled"
				if !model.Enabled {
					state = "disabled"
				}
				cli.Info("%s - %s [%s]\n", model.ID, model.Name, state)
				cli.Muted("  $%s in / $%s out per 1M tokens, context %d\n",
					model.InputPricePerM.String(), model.OutputPricePerM.String(), model.ContextLength)
			}
			return nil
		},
	}
	return cmd
}

// modelRequestFlags binds the shared create/update model flags.
type modelRequestFlags struct {
	DisplayName     string
	ContextLength   int
	InputPricePerM  string
	OutputPricePerM string
	NoStreaming     bool
	Enabled         bool
}

func (f *modelRequestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.DisplayName, "display-name", "", "Display name")
	cmd.Flags().IntVar(&f.ContextLength, "context-length", 0, "Context length in tokens")
	cmd.Flags().StringVar(&f.InputPricePerM, "input-price", "0", "Input price per 1M tokens")
	cmd.Flags().StringVar(&f.OutputPricePerM, "output-price", "0", "Output price per 1M tokens")
	cmd.Flags().BoolVar(&f.NoStreaming, "no-streaming", false, "Mark the model as non-streaming")
	cmd.Flags().BoolVar(&f.Enabled, "enabled", true, "Enable the model")
}

func (f *modelRequestFlags) request(name string) (*api.ModelRequest, error) {
	inputPrice, err := decimal.NewFromString(f.InputPricePerM)
	if err != nil {
		return nil, errors.Wrap(err, "parsing input price")
	}
	outputPrice, err := decimal.NewFromString(f.OutputPricePerM)
	if err != nil {
		return nil, errors.Wrap(err, "parsing output price")
	}
	return &api.ModelRequest{
		Name:              name,
		DisplayName:       f.DisplayName,
		ContextLength:     f.ContextLength,
		InputPricePerM:    inputPrice,
		OutputPricePerM:   outputPrice,
		SupportsStreaming: !f.NoStreaming,
		Enabled:           f.Enabled,
	}, nil
}

func newModelsCreateCmd(client *api.Client) *cobra.Command {
	flags := &modelRequestFlags{}

	cmd := &cobra.Command{
		Use:   "create <provider-id> <name>",
		Short: "Register a model under a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.ModelsEdit); err != nil {
				return err
			}

			request, err := flags.request(args[1])
			if err != nil {
				return err
			}
			model, err := client.CreateModel(ctx, args[0], request)
			if err != nil {
				return errors.Wrap(err, "creating model")
			}
			cli.Success("Created model %s (%s)\n", model.Name, model.ID)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newModelsUpdateCmd(client *api.Client) *cobra.Command {
	flags := &modelRequestFlags{}
	var name string

	cmd := &cobra.Command{
		Use:   "update <provider-id> <model-id>",
		Short: "Update a provider model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.ModelsEdit); err != nil {
				return err
			}

			request, err := flags.request(name)
			if err != nil {
				return err
			}
			model, err := client.UpdateModel(ctx, args[0], args[1], request)
			if err != nil {
				return errors.Wrap(err, "updating model")
			}
			cli.Success("Updated model %s\n", model.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	flags.register(cmd)
	return cmd
}

func newModelsDeleteCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Force bool
	}

	cmd := &cobra.Command{
		Use:   "delete <provider-id> <model-id>",
		Short: "Delete a provider model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.ModelsEdit); err != nil {
				return err
			}

			if !opts.Force && !cli.QueryUser(fmt.Sprintf("Delete model %s?", args[1])) {
				return nil
			}
			if err := client.DeleteModel(ctx, args[0], args[1]); err != nil {
				return errors.Wrap(err, "deleting model")
			}
			cli.Success("Deleted model %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Skip confirmation")
	return cmd
}
