package chat

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/cli/chat/session"
	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/configuration"
	state "github.com/strataai/strata/internal/session"
	"github.com/strataai/strata/store"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config, s *store.Store, client *api.Client) *cobra.Command {
	var opts struct {
		ConversationID string
		Continue       bool
		Title          string
		ProviderID     string
		ModelID        string
	}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Set defaults.
			if opts.ProviderID == "" && config.Chat != nil {
				opts.ProviderID = config.Chat.DefaultProviderID
			}
			if opts.ModelID == "" && config.Chat != nil {
				opts.ModelID = config.Chat.DefaultModelID
			}

			// Parse or create the conversation.
			var conversation *api.Conversation
			var err error
			switch {
			case opts.ConversationID != "":
				conversation, err = client.GetConversation(ctx, opts.ConversationID)
				cobra.CheckErr(err)

			case opts.Continue:
				listResponse, err := s.List(&store.ListRequest{PageSize: 1})
				cobra.CheckErr(err)
				if len(listResponse.Conversations) == 0 {
					cobra.CheckErr(fmt.Errorf("no conversation to continue"))
				}
				conversation, err = client.GetConversation(ctx, listResponse.Conversations[0].ID)
				cobra.CheckErr(err)

			default:
				request := &api.CreateConversationRequest{
					Title:           opts.Title,
					ModelProviderID: opts.ProviderID,
					ModelID:         opts.ModelID,
				}
				conversation, err = client.CreateConversation(ctx, request)
				cobra.CheckErr(err)
			}

			// Load the active thread.
			container := state.New(client, conversation)
			if err := container.Load(ctx); err != nil {
				return errors.Wrap(err, "loading conversation")
			}

			// Create the model.
			m, err := session.New(ctx, config, client, s, container)
			if err != nil {
				return err
			}

			// Create the Bubble Tea program
			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithFilter(m.Filter()),
				tea.WithMouseCellMotion(),
				tea.WithReportFocus(),
			)

			// Set the program reference for async message sending
			m.SetProgram(p)

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running chat: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ConversationID, "id", "", "specify a conversation id")
	cmd.Flags().BoolVarP(&opts.Continue, "continue", "c", false, "Continue the most recent conversation")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Title for a new conversation")
	cmd.Flags().StringVarP(&opts.ProviderID, "provider", "p", "", "Model provider for a new conversation")
	cmd.Flags().StringVarP(&opts.ModelID, "model", "m", "", "Model for a new conversation")

	cmd.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names, err := modelNames(cmd.Context(), client, opts.ProviderID)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
