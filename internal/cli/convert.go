package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/pipeline"
)

// convertCommand creates the convert command for normalizing diagram files.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		inputFormat string
		to          string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "convert [diagram]",
		Short: "Convert a diagram between JSON, YAML and TOML",
		Long: `Convert a diagram between JSON, YAML and TOML.

The diagram is decoded and validated first, so convert also works as a
linter. JSON output is the canonical form used for cache keys.`,
		Example: `  fishbone convert incident.yaml
  fishbone convert incident.json --to toml -o incident.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := diagram.ParseFormat(to)
			if err != nil {
				return err
			}
			return c.runConvert(cmd.Context(), args[0], inputFormat, f, output)
		},
	}

	cmd.Flags().StringVar(&inputFormat, "input-format", "", "input format: json, yaml, toml (default: from extension)")
	cmd.Flags().StringVar(&to, "to", string(diagram.FormatJSON), "output format: json, yaml, toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, input, inputFormat string, to diagram.Format, output string) error {
	d, err := pipeline.Load(ctx, nil, pipeline.Options{
		Source:      input,
		InputFormat: inputFormat,
		Logger:      c.Logger,
	})
	if err != nil {
		return err
	}

	data, err := diagram.Marshal(d, to)
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}

	if output != "" {
		fmt.Fprintln(os.Stderr, styleIconSuccess.Render(iconSuccess)+" Converted "+input+" "+iconArrow+" "+output)
	}
	return nil
}
