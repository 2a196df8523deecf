package rag

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/cli"
)

// newStatusCmd instantiates and returns the rag status command.
func newStatusCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <instance-id>",
		Short: "Show the ingestion status of a retrieval index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			instance, err := client.GetRAGInstance(ctx, args[0])
			if err != nil {
				return errors.Wrap(err, "fetching instance")
			}
			status, err := client.GetRAGStatus(ctx, instance.ID)
			if err != nil {
				return errors.Wrap(err, "fetching status")
			}

			cli.Title("INGESTION STATUS %s", instance.Name)
			cli.Info("%d/%d processed", status.ProcessedFiles, status.TotalFiles)
			if status.ProcessingFiles > 0 {
				cli.Info(", %d processing", status.ProcessingFiles)
			}
			if status.FailedFiles > 0 {
				cli.Error(", %d failed", status.FailedFiles)
			}
			cli.Info("\n")
			for _, file := range status.Files {
				printFile(file)
			}
			return nil
		},
	}
	return cmd
}
