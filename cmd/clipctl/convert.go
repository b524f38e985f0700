package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clipfilter/internal/engine"
	"clipfilter/internal/mediatypes"
	"clipfilter/internal/pipeline"
	"clipfilter/internal/preview"
	"clipfilter/internal/session"
	"clipfilter/internal/startup"

	"github.com/spf13/cobra"
)

type convertOptions struct {
	output  string
	workDir string
	poster  bool
}

func newConvertCommand(root *rootOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Run the filter chain over a local clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			return runConvert(cmd, cfg, args[0], opts, session.Factory(func() engine.Engine {
				return engine.NewFFmpeg()
			}))
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path (default: <name>-filtered.mp4 next to the input)")
	cmd.Flags().StringVar(&opts.workDir, "work-dir", "", "Scratch directory (default: a fresh temporary directory)")
	cmd.Flags().BoolVar(&opts.poster, "poster", false, "Also write a JPEG poster frame next to the output")

	return cmd
}

func runConvert(cmd *cobra.Command, cfg *startup.Config, input string, opts *convertOptions, newEngine session.Factory) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	container, ok := mediatypes.Detect(input, "")
	if !ok {
		return fmt.Errorf("%s: unsupported container (expected mp4, m4v, mov or webm)", input)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if limit := cfg.MaxUploadBytes(); int64(len(data)) > limit {
		return fmt.Errorf("%s is larger than the %d MB limit", input, cfg.MaxUploadMB)
	}

	res := cfg.Resources()
	if opts.workDir != "" {
		res.WorkDir = opts.workDir
	} else {
		dir, err := os.MkdirTemp("", "clipctl-")
		if err != nil {
			return fmt.Errorf("create work directory: %w", err)
		}
		defer os.RemoveAll(dir)
		res.WorkDir = dir
	}

	previews := preview.NewRegistry(nil)
	sess := session.New(newEngine, res, session.WithTimeout(cfg.EngineTimeout))
	defer sess.Close()
	ctrl := pipeline.New(sess, previews, pipeline.WithPosters(opts.poster))

	name := filepath.Base(input)
	if err := ctrl.SelectFile(name, container.MimeType, data); err != nil {
		return errors.New(pipeline.Message(err))
	}

	states, cancel := ctrl.Subscribe()
	renderer := newProgressRenderer(cmd.ErrOrStderr(), isTerminal(cmd.ErrOrStderr()))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for state := range states {
			renderer.update(state)
		}
	}()

	_, convErr := ctrl.Convert(ctx)
	cancel()
	<-done
	renderer.finish()

	if convErr != nil {
		return errors.New(pipeline.Message(convErr))
	}

	result := previews.Get(preview.Result)
	if result == nil {
		return errors.New("conversion finished without a result")
	}
	clip, ok := result.Data()
	if !ok {
		return errors.New("conversion result was released before it could be saved")
	}

	dest := opts.output
	if dest == "" {
		dest = filepath.Join(filepath.Dir(input), result.Name())
	}
	if err := os.WriteFile(dest, clip, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s (%d bytes)\n", dest, len(clip))

	if opts.poster {
		if frame, ok := result.Poster(); ok {
			posterPath := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".jpg"
			if err := os.WriteFile(posterPath, frame, 0o644); err != nil {
				return fmt.Errorf("write poster: %w", err)
			}
			fmt.Fprintf(out, "Wrote %s (%d bytes)\n", posterPath, len(frame))
		} else {
			fmt.Fprintln(out, "No poster frame could be extracted")
		}
	}

	previews.ReleaseAll()
	return nil
}
