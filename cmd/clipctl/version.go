package main

import (
	"fmt"

	"clipfilter/internal/startup"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := startup.GetBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "clipctl %s (commit %s, built %s, %s %s/%s)\n",
				info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
			return nil
		},
	}
}
