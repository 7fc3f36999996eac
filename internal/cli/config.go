package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/pkg/config"
	"github.com/matzehuels/fishbone/pkg/pipeline"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/theme"
)

// configCommand creates the config command for inspecting and creating
// fishbone.toml files.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())

	return cmd
}

// configShowCommand prints the effective configuration.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			source := cfg.Path
			if source == "" {
				source = "(defaults)"
			}
			printKeyValue("file", source)
			printKeyValue("type", orDefault(cfg.Render.Type, pipeline.DefaultVizType))
			printKeyValue("width", orDefault(formatFloat(cfg.Render.Width), formatFloat(pipeline.DefaultWidth)))
			printKeyValue("color", orDefault(cfg.Render.Color, theme.Default().Name))
			printKeyValue("formats", orDefault(strings.Join(cfg.Render.Formats, ","), pipeline.FormatSVG))
			printKeyValue("cache", cfg.Cache.Backend)
			if cfg.Cache.TTL.Duration > 0 {
				printKeyValue("cache ttl", cfg.Cache.TTL.String())
			}
			printKeyValue("listen", cfg.Server.Addr)
			return nil
		},
	}
}

// configInitCommand writes a config file holding the defaults.
func (c *CLI) configInitCommand() *cobra.Command {
	var (
		user  bool
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a fishbone.toml with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if user {
				p, err := config.UserPath()
				if err != nil {
					return fmt.Errorf("get user config path: %w", err)
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Write(config.Default(), path); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printSuccess("Wrote config")
			printFile(path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "write the per-user config instead of ./"+config.FileName)
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%g", v)
}
