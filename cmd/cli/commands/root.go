// Package commands implements the CLI commands for the MediaForge API
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mediaforge/mediaforge/pkg/api/v1/client"
	"github.com/mediaforge/mediaforge/pkg/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
)

// environment variable names
const (
	envServerAddress = "MEDIAFORGE_SERVER_ADDRESS"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
)

// initClient initializes the API client
func initClient() error {
	var err error
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress

	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	// Set a basic default for the flag. PersistentPreRunE will handle env var override.
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL, "Address of the MediaForge API server (env: MEDIAFORGE_SERVER_ADDRESS)")

	RootCmd.AddCommand(GetJobsCmd())
	RootCmd.AddCommand(GetAssetsCmd())
	RootCmd.AddCommand(GetGenerateCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "mediaforge",
	Short: "MediaForge CLI - A command line interface for the MediaForge API",
	Long:  `MediaForge CLI is a command line tool for submitting generation jobs and managing assets through the MediaForge API.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Check if the server address flag was explicitly set by the user.
		if !cmd.Flags().Changed(flagServerAddress) {
			envAddr := os.Getenv(envServerAddress)
			if envAddr != "" {
				serverAddress = envAddr
			}
		}

		// Now serverAddress has the correct precedence: Flag > Env Var > Default
		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		return initClient()
	},
}
