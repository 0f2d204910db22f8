package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/orgblog/internal"
	pkgconfig "github.com/starford/orgblog/pkg/config"
)

func action(command internal.Command) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := internal.NewDefaultConfig()
		if err := pkgconfig.LoadOrDefault(cmd.String("config"), cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		if cmd.Bool("verbose") {
			cfg.App.LogLevel = slog.LevelDebug
		}
		if cmd.IsSet("rotate") {
			cfg.Blog.Rotate = cmd.Bool("rotate")
		}
		if inputs := cmd.Args().Slice(); len(inputs) > 0 {
			cfg.Blog.Inputs = inputs
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithCommand(command),
			internal.WithShowDiff(cmd.Bool("show-diff")),
		}

		if err := internal.Run(ctx, opts...); err != nil {
			return fmt.Errorf("%s: %w", command, err)
		}

		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "orgblog",
		Usage: "Compile a blog kept in outline-markup files and track what changed between runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "orgblog.yaml",
				Value:       "orgblog.yaml",
				Sources:     cli.EnvVars("ORGBLOG_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log at debug level, including skipped entries",
				Sources: cli.EnvVars("ORGBLOG_VERBOSE"),
			},
			&cli.BoolFlag{
				Name:  "show-diff",
				Usage: "Log a source diff of every updated entry",
			},
			&cli.BoolFlag{
				Name:  "rotate",
				Usage: "Copy the new metadata over the previous one after a successful run",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Parse the inputs once and report what to generate",
				ArgsUsage: "[input.org ...]",
				Action:    action(internal.CommandBuild),
			},
			{
				Name:      "watch",
				Usage:     "Build, then rebuild whenever an input changes",
				ArgsUsage: "[input.org ...]",
				Action:    action(internal.CommandWatch),
			},
			{
				Name:      "serve",
				Usage:     "Watch and serve the inspection API with build events",
				ArgsUsage: "[input.org ...]",
				Action:    action(internal.CommandServe),
			},
			{
				Name:   "mcp",
				Usage:  "Expose the catalog of the last build over MCP on stdin/stdout",
				Action: action(internal.CommandMCP),
			},
		},
		DefaultCommand: "build",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
