package conversations

import (
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/cli"
)

// newListCmd instantiates and returns the conversations list command.
func newListCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Page     int
		PageSize int
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your conversations",
		Long:  "List your conversations",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			// Headers.
			cli.Title("STRATA CONVERSATIONS")

			list, err := client.ListConversations(ctx, opts.Page, opts.PageSize)
			cobra.CheckErr(err)
			printSummaries(list)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page")
	cmd.Flags().IntVarP(&opts.PageSize, "page-size", "p", 50, "Page size")
	return cmd
}

// newSearchCmd instantiates and returns the conversations search command.
func newSearchCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Page     int
		PageSize int
	}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search your conversations",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			cli.Title("STRATA CONVERSATION SEARCH")

			list, err := client.SearchConversations(ctx, args[0], opts.Page, opts.PageSize)
			cobra.CheckErr(err)
			printSummaries(list)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page")
	cmd.Flags().IntVarP(&opts.PageSize, "page-size", "p", 50, "Page size")
	return cmd
}

func printSummaries(list *api.ConversationList) {
	for _, conversation := range list.Conversations {
		title := conversation.Title
		if title == "" {
			title = "(untitled)"
		}
		cli.Info("%s - %s\n", conversation.ID, title)
		if conversation.LastMessage != "" {
			cli.Muted("  > %s\n", conversation.LastMessage)
		}
		cli.Muted("  %d messages, updated %s\n", conversation.MessageCount, conversation.UpdatedAt.Format("Jan 2, 2006 3:04 PM"))
	}
	if list.Total > len(list.Conversations) {
		cli.Separator()
		cli.Muted("%d of %d conversations\n", len(list.Conversations), list.Total)
	}
}
