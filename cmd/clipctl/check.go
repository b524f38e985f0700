package main

import (
	"fmt"
	"io"

	"clipfilter/internal/engine"
	"clipfilter/internal/startup"

	"github.com/spf13/cobra"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether ffmpeg and ffprobe can be found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			return runCheck(cmd, cfg, cmd.OutOrStdout())
		},
	}
}

func runCheck(cmd *cobra.Command, cfg *startup.Config, out io.Writer) error {
	res := cfg.Resources()
	statuses := []engine.Status{
		engine.Probe(cmd.Context(), "ffmpeg", res.FFmpeg, res.ProbeTimeout),
		engine.Probe(cmd.Context(), "ffprobe", res.FFprobe, res.ProbeTimeout),
	}

	rows := make([][]string, 0, len(statuses))
	missing := 0
	for _, s := range statuses {
		if s.Available {
			rows = append(rows, []string{s.Name, "ok", s.Command, s.Version})
			continue
		}
		missing++
		rows = append(rows, []string{s.Name, "missing", "-", s.Detail})
	}

	fmt.Fprintln(out, renderTable([]string{"Binary", "Status", "Command", "Version"}, rows))
	fmt.Fprintf(out, "Work directory: %s\n", cfg.WorkDir)
	fmt.Fprintf(out, "Upload limit:   %d MB\n", cfg.MaxUploadMB)

	if missing > 0 {
		return fmt.Errorf("%d of %d engine binaries unavailable", missing, len(statuses))
	}
	return nil
}
