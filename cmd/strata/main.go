package main

import (
	"github.com/spf13/cobra"

	"github.com/strataai/strata/cli/admin"
	"github.com/strataai/strata/cli/auth"
	"github.com/strataai/strata/cli/chat"
	"github.com/strataai/strata/cli/conversations"
	"github.com/strataai/strata/cli/models"
	"github.com/strataai/strata/cli/rag"
	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/configuration"
	"github.com/strataai/strata/server"
	"github.com/strataai/strata/store"
)

const configFilepath = "~/.config/strata/config.json"

var rootCmd = &cobra.Command{
	Use:     "strata",
	Short:   "A CLI for the Strata AI workspace",
	Version: "1.0",
}

func main() {
	config, err := configuration.Parse(configFilepath)
	if err != nil {
		panic(err)
	}

	// Create store
	store, err := store.New(config.Database.Path)
	if err != nil {
		panic(err)
	}
	// Ensure store is closed when the program exits normally
	defer store.Close()

	client := api.NewClient(config)

	rootCmd.AddCommand(auth.NewLoginCmd(config, configFilepath, client))
	rootCmd.AddCommand(auth.NewLogoutCmd(config, configFilepath))
	rootCmd.AddCommand(auth.NewWhoamiCmd(client))
	rootCmd.AddCommand(chat.NewCmd(config, store, client))
	rootCmd.AddCommand(conversations.NewCmd(client, store))
	rootCmd.AddCommand(rag.NewCmd(client))
	rootCmd.AddCommand(models.NewCmd(client))
	rootCmd.AddCommand(admin.NewCmd(client))
	rootCmd.AddCommand(server.NewServeCmd(config, store))
	rootCmd.Execute()
}
