package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/pkg/pipeline"
)

// renderCommand creates the render command: diagram → artifacts in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "render [diagram]",
		Short: "Render a diagram to SVG, PNG, PDF or JSON",
		Long: `Render a diagram to SVG, PNG, PDF or JSON.

The diagram may be a JSON, YAML or TOML file, "-" for stdin, or an http(s)
URL. Render computes the layout and draws it in one step; use 'layout' and
'visualize' to run the two halves separately.

Layouts and artifacts are cached locally for faster subsequent runs.`,
		Example: `  fishbone render incident.yaml
  fishbone render incident.yaml -f svg,png -o out/incident
  fishbone render incident.yaml -t tree --full
  cat incident.json | fishbone render - --input-format json -o - > incident.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolve(&flags)
			if err != nil {
				return err
			}
			opts.Source = args[0]
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd, true)

	return cmd
}

// runRender executes the whole pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	toStdout := output == "-"
	var spinner *Spinner
	if !toStdout {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.VizType))
		spinner.Start()
	}

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Render failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Stop()
	}

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     opts.Source,
		output:    output,
		cacheHit:  result.CacheInfo.RenderHit,
	})
	if err != nil || toStdout {
		return err
	}

	printSuccess("Rendered %s", result.Diagram.Title)
	printArtifacts(paths)
	printStats(result.Stats.CauseCount, result.Stats.Warnings, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	printLayoutWarnings(result.Layout.Warnings)
	return nil
}
