package conversations

import (
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/store"
)

// NewCmd instantiates and returns the conversations command.
func NewCmd(client *api.Client, s *store.Store) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Browse and manage conversations",
	}
	cmd.AddCommand(newListCmd(client))
	cmd.AddCommand(newSearchCmd(client))
	cmd.AddCommand(newRenameCmd(client, s))
	cmd.AddCommand(newDeleteCmd(client, s))
	cmd.AddCommand(newSyncCmd(client, s))
	cmd.AddCommand(newPinCmd(s))
	cmd.AddCommand(newTagCmd(s))
	return cmd
}
