package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/pkg/pipeline"
	"github.com/matzehuels/fishbone/pkg/trigger"
)

// watchCommand creates the watch command, which re-renders on every save.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags    layoutFlags
		output   string
		noCache  bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [diagram]",
		Short: "Re-render a diagram whenever the file changes",
		Long: `Re-render a diagram whenever the file changes.

Watch renders once on start and again after each save. Saves that arrive
while a render is running are folded into a single follow-up pass, so the
outputs always reflect the latest file. Invalid intermediate saves are
reported and the previous outputs are left in place.

Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolve(&flags)
			if err != nil {
				return err
			}
			if output == "-" {
				return fmt.Errorf("watch cannot write to stdout")
			}
			opts.Source = args[0]
			return c.runWatch(cmd.Context(), opts, output, noCache, debounce)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&debounce, "debounce", trigger.DefaultDebounce, "quiet period after a change before re-rendering")
	flags.register(cmd, true)

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, opts pipeline.Options, output string, noCache bool, debounce time.Duration) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	watcher, err := trigger.NewFileWatcher(opts.Source, debounce)
	if err != nil {
		return err
	}
	defer watcher.Close()

	loop := trigger.NewLoop(func(ctx context.Context, ev trigger.Event) error {
		return c.watchPass(ctx, runner, opts, output, ev)
	}, c.Logger)
	loop.OnError = func(ev trigger.Event, err error) {
		printError("%s: %v", opts.Source, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watcher.Run(ctx, loop.Trigger)
		cancel()
	}()

	printInfo("Watching %s (Ctrl+C to stop)", opts.Source)
	err = loop.Run(ctx)
	cancel()
	if werr := <-watchErr; werr != nil && !errors.Is(werr, context.Canceled) {
		return fmt.Errorf("watch %s: %w", opts.Source, werr)
	}
	if errors.Is(err, context.Canceled) {
		printNewline()
		printInfo("Stopped watching")
		return nil
	}
	return err
}

// watchPass renders once and writes the artifacts.
func (c *CLI) watchPass(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string, ev trigger.Event) error {
	prog := newProgress(c.Logger)
	c.Logger.Debug("render triggered", "trigger", ev.Kind, "path", ev.Path)

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     opts.Source,
		output:    output,
		cacheHit:  result.CacheInfo.RenderHit,
	})
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Rendered %s (%s)", opts.Source, ev.Kind))
	printArtifacts(paths)
	printLayoutWarnings(result.Layout.Warnings)
	return nil
}
