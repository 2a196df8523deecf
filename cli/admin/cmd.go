package admin

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/permission"
)

// NewCmd instantiates and returns the admin command.
func NewCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer workspace users, groups, providers and models",
	}
	cmd.AddCommand(newUsersCmd(client))
	cmd.AddCommand(newGroupsCmd(client))
	cmd.AddCommand(newProvidersCmd(client))
	cmd.AddCommand(newModelsCmd(client))
	return cmd
}

// permissions resolves the caller's permission set. The server is
// still the authority; this only produces friendlier errors than a
// raw 403.
func permissions(ctx context.Context, client *api.Client) (*permission.Set, error) {
	me, err := client.Me(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "resolving permissions")
	}
	return permission.NewSet(me.Permissions), nil
}

func requirePermission(ctx context.Context, client *api.Client, required string) error {
	set, err := permissions(ctx, client)
	if err != nil {
		return err
	}
	if !set.Has(required) {
		return errors.Wrapf(api.ErrForbidden, "missing permission %s", required)
	}
	return nil
}
