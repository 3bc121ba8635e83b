// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portal-access",
	Short: "Portal Access resolves role based permissions of the internal portal",
	Long: `Portal Access answers which dashboards, pages, features, CRUD actions and
policy documents a user may use, based on roles, per-user overrides and document grants.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Directory holding main.toml (default ./etc/)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
