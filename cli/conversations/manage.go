package conversations

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/cli"
	"github.com/strataai/strata/store"
)

// newDeleteCmd instantiates and returns the conversations delete command.
func newDeleteCmd(client *api.Client, s *store.Store) *cobra.Command {
	var opts struct {
		Force bool
	}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conversationID := args[0]

			if !opts.Force && !cli.QueryUser(fmt.Sprintf("Delete conversation %s?", conversationID)) {
				return nil
			}

			if err := client.DeleteConversation(ctx, conversationID); err != nil {
				return errors.Wrap(err, "deleting conversation")
			}

			// Drop the cached copy too. A missing cache entry is fine.
			if err := s.Delete(conversationID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return errors.Wrap(err, "deleting cached conversation")
			}

			cli.Success("Deleted conversation %s\n", conversationID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Skip confirmation")
	return cmd
}

// newRenameCmd instantiates and returns the conversations rename command.
func newRenameCmd(client *api.Client, s *store.Store) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			conversation, err := client.UpdateConversationTitle(ctx, args[0], args[1])
			if err != nil {
				return errors.Wrap(err, "renaming conversation")
			}

			// Refresh the cached copy so the viewer picks up the new title.
			messages, err := client.GetMessages(ctx, conversation.ID)
			if err != nil {
				return errors.Wrap(err, "fetching messages")
			}
			if err := s.Save(store.FromServer(conversation, messages)); err != nil {
				return errors.Wrap(err, "caching conversation")
			}

			cli.Success("Renamed conversation %s to %q\n", conversation.ID, args[1])
			return nil
		},
	}
	return cmd
}

// newSyncCmd instantiates and returns the conversations sync command.
func newSyncCmd(client *api.Client, s *store.Store) *cobra.Command {
	var opts struct {
		PageSize int
	}

	cmd := &cobra.Command{
		Use:   "sync [id]",
		Short: "Sync conversations into the local cache",
		Long:  "Sync a conversation, or the most recent page of conversations, into the local cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ids := args
			if len(ids) == 0 {
				list, err := client.ListConversations(ctx, 1, opts.PageSize)
				if err != nil {
					return errors.Wrap(err, "listing conversations")
				}
				for _, summary := range list.Conversations {
					ids = append(ids, summary.ID)
				}
			}

			for _, id := range ids {
				conversation, err := client.GetConversation(ctx, id)
				if err != nil {
					return errors.Wrapf(err, "fetching conversation %s", id)
				}
				messages, err := client.GetMessages(ctx, id)
				if err != nil {
					return errors.Wrapf(err, "fetching messages of %s", id)
				}
				if err := s.Save(store.FromServer(conversation, messages)); err != nil {
					return errors.Wrapf(err, "caching conversation %s", id)
				}
				cli.Info("synced %s (%d messages)\n", id, len(messages))
			}
			cli.Success("Synced %d conversations\n", len(ids))
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.PageSize, "page-size", "p", 50, "Number of conversations to sync")
	return cmd
}

// newPinCmd instantiates and returns the conversations pin command.
func newPinCmd(s *store.Store) *cobra.Command {
	var opts struct {
		Unpin bool
	}

	cmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin a cached conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.SetPinned(args[0], !opts.Unpin); err != nil {
				return errors.Wrap(err, "pinning conversation")
			}
			if opts.Unpin {
				cli.Success("Unpinned %s\n", args[0])
			} else {
				cli.Success("Pinned %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Unpin, "unpin", "u", false, "Remove the pin instead")
	return cmd
}

// newTagCmd instantiates and returns the conversations tag command.
func newTagCmd(s *store.Store) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag <id> [tags...]",
		Short: "Set the tags of a cached conversation",
		Long:  "Set the tags of a cached conversation. With no tags, clears them.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.SetTags(args[0], args[1:]); err != nil {
				return errors.Wrap(err, "tagging conversation")
			}
			cli.Success("Tagged %s\n", args[0])
			return nil
		},
	}
	return cmd
}
