package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pkgchew/pkgchew/internal/config"
)

var cleanQuietFlag bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated documentation",
	Long: `Clean removes the generated documentation output directory.

The output directory comes from the configuration (output.dir,
"docs" by default). The configuration file (.pkgchew/config.yml)
is preserved.

Examples:
  # Remove the configured output directory
  pkgchew clean

  # Clean with minimal output
  pkgchew clean --quiet
`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
}

func runClean(cmd *cobra.Command, args []string) error {
	projectPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(projectPath)
	if err != nil {
		return err
	}

	outputDir := cfg.Output.Dir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(projectPath, outputDir)
	}

	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if !cleanQuietFlag {
			fmt.Printf("Nothing to clean: %s does not exist\n", outputDir)
		}
		return nil
	}

	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", outputDir, err)
	}

	if !cleanQuietFlag {
		fmt.Printf("Removed %s\n", outputDir)
		fmt.Println("Run 'pkgchew chew <package>' to regenerate documentation.")
	}
	return nil
}
