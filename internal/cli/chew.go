package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkgchew/pkgchew/internal/config"
	"github.com/pkgchew/pkgchew/internal/model"
	"github.com/pkgchew/pkgchew/internal/pipeline"
	"github.com/pkgchew/pkgchew/internal/render"
)

var (
	outputFlag      string
	quietFlag       bool
	watchFlag       bool
	runExamplesFlag bool
	privateFlag     bool
)

// chewCmd represents the chew command
var chewCmd = &cobra.Command{
	Use:   "chew <package>",
	Short: "Generate an API reference for a Python package",
	Long: `Chew analyzes a Python package and writes a markdown API reference.

The pipeline:
  - Resolves the package root (local path, installed name, namespace
    packages, version-suffixed directories)
  - Walks its source files in deterministic order
  - Parses each file's syntax tree without executing anything
  - Harvests and validates docstring usage examples
  - Assembles a cross-referenced documentation model

Examples:
  # Document a local source tree
  pkgchew chew ./src/mypkg

  # Document an installed package by name
  pkgchew chew requests

  # Validate examples by running them in the sandbox
  pkgchew chew ./src/mypkg --run-examples

  # Re-render whenever the source changes
  pkgchew chew ./src/mypkg --watch
`,
	Args: cobra.ExactArgs(1),
	RunE: runChew,
}

func init() {
	rootCmd.AddCommand(chewCmd)
	chewCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (default from config)")
	chewCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	chewCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the package source and re-render on changes")
	chewCmd.Flags().BoolVar(&runExamplesFlag, "run-examples", false, "Execute docstring examples in the sandbox")
	chewCmd.Flags().BoolVar(&privateFlag, "private", false, "Include private entities in the output")
}

func runChew(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling...")
		cancel()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if runExamplesFlag {
		cfg.Sandbox.Enabled = true
	}
	if privateFlag {
		cfg.Analysis.IncludePrivate = true
	}
	if outputFlag != "" {
		cfg.Output.Dir = outputFlag
	}

	progress := NewCLIProgressReporter(quietFlag)
	p, err := pipeline.New(cfg, pipeline.WithProgress(progress))
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	writer := render.NewMystWriter(cfg.Output, cfg.Analysis.IncludePrivate)
	identifier := args[0]

	doc, err := chewOnce(ctx, p, writer, cfg, identifier)
	if err != nil {
		return err
	}

	if !watchFlag {
		return nil
	}

	dirs := doc.Package.Portions
	if len(dirs) == 0 {
		dirs = []string{doc.Package.Path}
	}
	watcher, err := pipeline.NewWatcher(dirs, func(ctx context.Context) {
		if _, err := chewOnce(ctx, p, writer, cfg, identifier); err != nil {
			log.Printf("Rebuild failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !quietFlag {
		fmt.Println("Watching for changes. Press Ctrl+C to stop.")
	}
	watcher.Start(ctx)
	<-ctx.Done()
	watcher.Stop()
	return nil
}

// chewOnce runs the pipeline once and writes the rendered output.
func chewOnce(ctx context.Context, p *pipeline.Pipeline, writer *render.MystWriter, cfg *config.Config, identifier string) (*model.DocumentationModel, error) {
	doc, stats, err := p.Run(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", identifier, err)
	}

	if err := writer.Write(doc, cfg.Output.Dir); err != nil {
		return nil, fmt.Errorf("failed to write documentation: %w", err)
	}

	for _, d := range doc.Diagnostics {
		if d.Severity == model.SeverityError || verbose {
			log.Println(d.String())
		}
	}

	if !quietFlag {
		fmt.Printf("✓ Documented %d modules (%d entities, %d examples) in %v\n",
			stats.Modules, stats.Entities, stats.Examples, stats.Duration.Round(time.Millisecond))
		if stats.FailedModules > 0 {
			fmt.Printf("  %d module(s) skipped; see diagnostics in %s/index.md\n",
				stats.FailedModules, cfg.Output.Dir)
		}
	}
	return doc, nil
}
