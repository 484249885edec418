// Package cmd provides the CLI commands for searchsync.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchsync/internal/config"
	"github.com/kailas-cloud/searchsync/internal/version"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	env        string
	configPath string
}

// NewRootCmd creates the root command for the searchsync CLI.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "searchsync",
		Short: "Keep a document store and a search index in sync",
		Long: `searchsync stores documents in a primary record store, mirrors their
searchable projection into a search index after every save and removal,
and serves type-scoped search with optional hydration from the store.`,
		Version:      version.Version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("searchsync version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flags.env, "env", config.GetEnv(), "Environment name (selects config/<env>.yaml and log format)")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Explicit config file path (overrides --env lookup)")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newMappingCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (f *globalFlags) load() (config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	return config.Load(f.env)
}
