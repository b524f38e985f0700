package main

import (
	"os"

	"clipfilter/internal/logging"
	"clipfilter/internal/startup"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// config loads settings the same way the server does, with --config taking
// the place of CONFIG_FILE.
func (o *rootOptions) config() (*startup.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	return startup.ReadConfigFrom(path)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "clipctl",
		Short:         "Apply the clipfilter filter chain from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logging.SetLevel(logging.LevelDebug)
			} else {
				logging.SetLevel(logging.LevelWarn)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine activity")

	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newCheckCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
