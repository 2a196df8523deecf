package auth

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/cli"
	"github.com/strataai/strata/internal/configuration"
	"github.com/strataai/strata/internal/permission"
)

// NewLoginCmd instantiates and returns the login command.
func NewLoginCmd(config *configuration.Config, configPath string, client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate against the workspace server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			password, err := cli.PromptSecret("Password:")
			if err != nil {
				return errors.Wrap(err, "reading password")
			}

			response, err := client.Login(ctx, args[0], password)
			if err != nil {
				return errors.Wrap(err, "logging in")
			}

			config.Token = response.Token
			client.SetToken(response.Token)
			if err := config.Save(configPath); err != nil {
				return errors.Wrap(err, "saving token")
			}

			cli.Success("Logged in as %s\n", response.User.Username)
			return nil
		},
	}
	return cmd
}

// NewLogoutCmd instantiates and returns the logout command.
func NewLogoutCmd(config *configuration.Config, configPath string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Discard the saved session token",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Token = ""
			if err := config.Save(configPath); err != nil {
				return errors.Wrap(err, "clearing token")
			}
			cli.Success("Logged out\n")
			return nil
		},
	}
	return cmd
}

// NewWhoamiCmd instantiates and returns the whoami command.
func NewWhoamiCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user and their permissions",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			me, err := client.Me(ctx)
			if err != nil {
				return errors.Wrap(err, "fetching user")
			}

			cli.Info("%s (%s)\n", me.Username, me.ID)
			cli.Muted("server: %s\n", client.BaseURL())
			if len(me.Groups) > 0 {
				cli.Muted("groups: %s\n", strings.Join(me.Groups, ", "))
			}
			set := permission.NewSet(me.Permissions)
			if grants := set.List(); len(grants) > 0 {
				cli.Muted("permissions: %s\n", strings.Join(grants, ", "))
			}
			return nil
		},
	}
	return cmd
}
