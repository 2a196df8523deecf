package rag

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/cli"
)

// newListCmd instantiates and returns the rag list command.
func newListCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Page     int
		PageSize int
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List retrieval indexes",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			cli.Title("STRATA RAG INSTANCES")

			list, err := client.ListRAGInstances(ctx, opts.Page, opts.PageSize)
			cobra.CheckErr(err)
			for _, instance := range list.Instances {
				state := "enabled"
				if !instance.Enabled {
					state = "disabled"
				}
				cli.Info("%s - %s [%s, %s]\n", instance.ID, instance.Name, instance.EngineType, state)
				if instance.Description != "" {
					cli.Muted("  %s\n", instance.Description)
				}
			}
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page")
	cmd.Flags().IntVarP(&opts.PageSize, "page-size", "p", 50, "Page size")
	return cmd
}

// newCreateCmd instantiates and returns the rag create command.
func newCreateCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Description      string
		EngineType       string
		EmbeddingModelID string
		LLMModelID       string
	}

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a retrieval index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			switch opts.EngineType {
			case api.EngineSimpleVector, api.EngineSimpleGraph:
			default:
				return fmt.Errorf("unknown engine type %s", opts.EngineType)
			}

			instance, err := client.CreateRAGInstance(ctx, &api.CreateRAGInstanceRequest{
				Name:             args[0],
				Description:      opts.Description,
				EngineType:       opts.EngineType,
				EmbeddingModelID: opts.EmbeddingModelID,
				LLMModelID:       opts.LLMModelID,
			})
			if err != nil {
				return errors.Wrap(err, "creating rag instance")
			}
			cli.Success("Created instance %s (%s)\n", instance.ID, instance.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Description")
	cmd.Flags().StringVarP(&opts.EngineType, "engine", "e", api.EngineSimpleVector, "Engine type (simple_vector, simple_graph)")
	cmd.Flags().StringVar(&opts.EmbeddingModelID, "embedding-model", "", "Embedding model id")
	cmd.Flags().StringVar(&opts.LLMModelID, "llm-model", "", "LLM model id")
	return cmd
}

// newUpdateCmd instantiates and returns the rag update command.
func newUpdateCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Name        string
		Description string
		Enabled     bool
		Disabled    bool
	}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a retrieval index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			request := &api.UpdateRAGInstanceRequest{}
			if cmd.Flags().Changed("name") {
				request.Name = &opts.Name
			}
			if cmd.Flags().Changed("description") {
				request.Description = &opts.Description
			}
			if opts.Enabled && opts.Disabled {
				return fmt.Errorf("cannot set both --enable and --disable")
			}
			if opts.Enabled {
				enabled := true
				request.Enabled = &enabled
			}
			if opts.Disabled {
				enabled := false
				request.Enabled = &enabled
			}

			instance, err := client.UpdateRAGInstance(ctx, args[0], request)
			if err != nil {
				return errors.Wrap(err, "updating rag instance")
			}
			cli.Success("Updated instance %s\n", instance.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "New name")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "New description")
	cmd.Flags().BoolVar(&opts.Enabled, "enable", false, "Enable the instance")
	cmd.Flags().BoolVar(&opts.Disabled, "disable", false, "Disable the instance")
	return cmd
}

// newDeleteCmd instantiates and returns the rag delete command.
func newDeleteCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Force bool
	}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a retrieval index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !opts.Force && !cli.QueryUser(fmt.Sprintf("Delete instance %s and all its files?", args[0])) {
				return nil
			}
			if err := client.DeleteRAGInstance(ctx, args[0]); err != nil {
				return errors.Wrap(err, "deleting rag instance")
			}
			cli.Success("Deleted instance %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Skip confirmation")
	return cmd
}
