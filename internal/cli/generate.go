package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/syssam/dynrepo/compiler/gen"
	"github.com/syssam/dynrepo/compiler/load"
	"github.com/syssam/dynrepo/internal/cli/config"
	"github.com/syssam/dynrepo/internal/watch"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen", "g"},
		Short:   "Generate typed query builders",
		Long: `Generate one <entity>_query.go file per declared entity.

The schema path is a YAML declaration file or a directory of them. Output
goes to --target, or next to the declarations when no target is set.

Examples:
  drgen generate --schema model/drgen.yaml
  drgen generate --schema schema --target model
  drgen generate --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(file, cmd.Flags())
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Verbose)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGenerate(ctx, cmd.OutOrStdout(), cfg, log)
		},
	}

	cmd.Flags().StringP("schema", "s", config.DefaultSchema, "declaration file or directory")
	cmd.Flags().StringP("target", "t", "", "output directory (default: the schema directory)")
	cmd.Flags().String("header", gen.DefaultHeader, "header comment of generated files")
	cmd.Flags().Int("workers", 0, "parallel file writers (default: GOMAXPROCS)")
	cmd.Flags().BoolP("watch", "w", false, "regenerate when declarations change")

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction(zap.IncreaseLevel(zapcore.WarnLevel))
}

func runGenerate(ctx context.Context, out io.Writer, cfg *config.Config, log *zap.Logger) error {
	fi, err := os.Stat(cfg.Schema)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	opts := []gen.Option{
		gen.WithTarget(cfg.TargetDir(fi.IsDir())),
		gen.WithHeader(cfg.Header),
		gen.WithLogger(log),
	}
	if cfg.Workers > 0 {
		opts = append(opts, gen.WithWorkers(cfg.Workers))
	}
	g, err := gen.New(opts...)
	if err != nil {
		return err
	}

	err = generateOnce(ctx, out, g, cfg.Schema)
	if !cfg.Watch {
		return err
	}
	if err != nil {
		printError(out, err)
	}

	w, err := watch.New(cfg.Schema, fi.IsDir(), []string{"*.yaml", "*.yml"}, watch.WithLogger(log))
	if err != nil {
		return err
	}
	color.New(color.FgCyan).Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", cfg.Schema)
	return w.Run(ctx, func(ctx context.Context, files []string) error {
		color.New(color.FgYellow).Fprintf(out, "\n%d file(s) changed, regenerating\n", len(files))
		if err := generateOnce(ctx, out, g, cfg.Schema); err != nil {
			printError(out, err)
			return err
		}
		return nil
	})
}

func generateOnce(ctx context.Context, out io.Writer, g *gen.Generator, schema string) error {
	entities, err := load.Path(schema)
	if err != nil {
		return err
	}
	paths, err := g.Generate(ctx, entities...)
	if err != nil {
		return err
	}
	successColor := color.New(color.FgGreen, color.Bold)
	for _, p := range paths {
		successColor.Fprintf(out, "✓ Generated %s\n", p)
	}
	return nil
}

func printError(out io.Writer, err error) {
	color.New(color.FgRed, color.Bold).Fprintf(out, "✗ %v\n", err)
}
