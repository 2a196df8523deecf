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

// newGroupsCmd instantiates and returns the admin groups command.
func newGroupsCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage permission groups",
	}
	cmd.AddCommand(newGroupsListCmd(client))
	cmd.AddCommand(newGroupsCreateCmd(client))
	cmd.AddCommand(newGroupsUpdateCmd(client))
	cmd.AddCommand(newGroupsDeleteCmd(client))
	cmd.AddCommand(newGroupsProvidersCmd(client))
	return cmd
}

func newGroupsListCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List permission groups",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.GroupsRead); err != nil {
				return err
			}

			cli.Title("STRATA GROUPS")

			groups, err := client.ListGroups(ctx)
			if err != nil {
				return errors.Wrap(err, "listing groups")
			}
			for _, group := range groups {
				cli.Info("%s - %s\n", group.ID, group.Name)
				if group.Description != "" {
					cli.Muted("  %s\n", group.Description)
				}
				cli.Muted("  permissions: %s\n", strings.Join(group.Permissions, ", "))
				if len(group.ProviderIDs) > 0 {
					cli.Muted("  providers: %s\n", strings.Join(group.ProviderIDs, ", "))
				}
			}
			return nil
		},
	}
	return cmd
}

func newGroupsCreateCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Description string
		Permissions []string
	}

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a permission group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.GroupsEdit); err != nil {
				return err
			}

			group, err := client.CreateGroup(ctx, &api.GroupRequest{
				Name:        args[0],
				Description: opts.Description,
				Permissions: opts.Permissions,
			})
			if err != nil {
				return errors.Wrap(err, "creating group")
			}
			cli.Success("Created group %s (%s)\n", group.Name, group.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Description")
	cmd.Flags().StringSliceVarP(&opts.Permissions, "permission", "P", nil, "Permissions to grant (repeatable; supports wildcards like conversations::*)")
	return cmd
}

func newGroupsUpdateCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Name        string
		Description string
		Permissions []string
	}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a permission group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.GroupsEdit); err != nil {
				return err
			}

			group, err := client.UpdateGroup(ctx, args[0], &api.GroupRequest{
				Name:        opts.Name,
				Description: opts.Description,
				Permissions: opts.Permissions,
			})
			if err != nil {
				return errors.Wrap(err, "updating group")
			}
			cli.Success("Updated group %s\n", group.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "New name")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "New description")
	cmd.Flags().StringSliceVarP(&opts.Permissions, "permission", "P", nil, "Replacement permission list (repeatable)")
	return cmd
}

func newGroupsDeleteCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Force bool
	}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a permission group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.GroupsEdit); err != nil {
				return err
			}

			if !opts.Force && !cli.QueryUser(fmt.Sprintf("Delete group %s?", args[0])) {
				return nil
			}
			if err := client.DeleteGroup(ctx, args[0]); err != nil {
				return errors.Wrap(err, "deleting group")
			}
			cli.Success("Deleted group %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Skip confirmation")
	return cmd
}

func newGroupsProvidersCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers <group-id> [provider-id...]",
		Short: "Replace the providers a group may use",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requirePermission(ctx, client, permission.GroupsEdit); err != nil {
				return err
			}

			group, err := client.AssignGroupProviders(ctx, args[0], args[1:])
			if err != nil {
				return errors.Wrap(err, "assigning group providers")
			}
			if len(group.ProviderIDs) == 0 {
				cli.Success("Cleared providers for group %s\n", group.Name)
				return nil
			}
			cli.Success("Group %s may now use: %s\n", group.Name, strings.Join(group.ProviderIDs, ", "))
			return nil
		},
	}
	return cmd
}
