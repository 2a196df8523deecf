package admin

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/cli"
	"github.com/strataai/strata/internal/permission"
)

// newUsersCmd instantiates and returns the admin users command.
func newUsersCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage workspace accounts",
	}
	cmd.AddCommand(newUsersListCmd(client))
	cmd.AddCommand(newUsersGetCmd(client))
	cmd.AddCommand(newUsersCreateCmd(client))
	cmd.AddCommand(newUsersUpdateCmd(client))
	cmd.AddCommand(newUsersDeleteCmd(client))
	return cmd
}

func newUsersListCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Page     int
		PageSize int
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workspace accounts",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.UsersRead); err != nil {
				return err
			}

			cli.Title("STRATA USERS")

			list, err := client.ListUsers(ctx, opts.Page, opts.PageSize)
			if err != nil {
				return errors.Wrap(err, "listing users")
			}
			for _, user := range list.Users {
				state := ""
				if !user.Active {
					state = " [inactive]"
				}
				cli.Info("%s - %s%s\n", user.ID, user.Username, state)
				if len(user.Groups) > 0 {
					cli.Muted("  groups: %s\n", strings.Join(user.Groups, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page")
	cmd.Flags().IntVarP(&opts.PageSize, "page-size", "p", 50, "Page size")
	return cmd
}

func newUsersGetCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a workspace account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.UsersRead); err != nil {
				return err
			}

			user, err := client.GetUser(ctx, args[0])
			if err != nil {
				return errors.Wrap(err, "fetching user")
			}

			state := ""
			if !user.Active {
				state = " [inactive]"
			}
			cli.Info("%s - %s%s\n", user.ID, user.Username, state)
			if user.Email != "" {
				cli.Muted("  email: %s\n", user.Email)
			}
			if user.DisplayName != "" {
				cli.Muted("  display name: %s\n", user.DisplayName)
			}
			if len(user.Groups) > 0 {
				cli.Muted("  groups: %s\n", strings.Join(user.Groups, ", "))
			}
			return nil
		},
	}
	return cmd
}

func newUsersCreateCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Email       string
		DisplayName string
		Groups      []string
	}

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a workspace account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.UsersEdit); err != nil {
				return err
			}

			password, err := cli.PromptSecret("Initial password:")
			if err != nil {
				return errors.Wrap(err, "reading password")
			}

			user, err := client.CreateUser(ctx, &api.CreateUserRequest{
				Username:    args[0],
				Email:       opts.Email,
				DisplayName: opts.DisplayName,
				Password:    password,
				Groups:      opts.Groups,
			})
			if err != nil {
				return errors.Wrap(err, "creating user")
			}
			cli.Success("Created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVar(&opts.DisplayName, "display-name", "", "Display name")
	cmd.Flags().StringSliceVarP(&opts.Groups, "group", "g", nil, "Groups to assign (repeatable)")
	return cmd
}

func newUsersUpdateCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Email       string
		DisplayName string
		Groups      []string
		Activate    bool
		Deactivate  bool
		Password    bool
	}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a workspace account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.UsersEdit); err != nil {
				return err
			}

			request := &api.UpdateUserRequest{}
			if cmd.Flags().Changed("email") {
				request.Email = &opts.Email
			}
			if cmd.Flags().Changed("display-name") {
				request.DisplayName = &opts.DisplayName
			}
			if cmd.Flags().Changed("group") {
				request.Groups = opts.Groups
			}
			if opts.Activate && opts.Deactivate {
				return fmt.Errorf("cannot set both --activate and --deactivate")
			}
			if opts.Activate {
				active := true
				request.Active = &active
			}
			if opts.Deactivate {
				active := false
				request.Active = &active
			}
			if opts.Password {
				password, err := cli.PromptSecret("New password:")
				if err != nil {
					return errors.Wrap(err, "reading password")
				}
				request.Password = &password
			}

			user, err := client.UpdateUser(ctx, args[0], request)
			if err != nil {
				return errors.Wrap(err, "updating user")
			}
			cli.Success("Updated user %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVar(&opts.DisplayName, "display-name", "", "Display name")
	cmd.Flags().StringSliceVarP(&opts.Groups, "group", "g", nil, "Replacement group list (repeatable)")
	cmd.Flags().BoolVar(&opts.Activate, "activate", false, "Activate the account")
	cmd.Flags().BoolVar(&opts.Deactivate, "deactivate", false, "Deactivate the account")
	cmd.Flags().BoolVar(&opts.Password, "password", false, "Prompt for a new password")
	return cmd
}

func newUsersDeleteCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Force bool
	}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a workspace account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.UsersEdit); err != nil {
				return err
			}

			if !opts.Force && !cli.QueryUser(fmt.Sprintf("Delete user %s?", args[0])) {
				return nil
			}
			if err := client.DeleteUser(ctx, args[0]); err != nil {
				return errors.Wrap(err, "deleting user")
			}
			cli.Success("Deleted user %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Skip confirmation")
	return cmd
}
