package rag

import (
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
)

// NewCmd instantiates and returns the rag command.
func NewCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rag",
		Short: "Manage retrieval indexes",
	}
	cmd.AddCommand(newListCmd(client))
	cmd.AddCommand(newCreateCmd(client))
	cmd.AddCommand(newUpdateCmd(client))
	cmd.AddCommand(newDeleteCmd(client))
	cmd.AddCommand(newFilesCmd(client))
	cmd.AddCommand(newUploadCmd(client))
	cmd.AddCommand(newStatusCmd(client))
	cmd.AddCommand(newWatchCmd(client))
	return cmd
}
