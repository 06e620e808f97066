package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/pkgchew/pkgchew/internal/pipeline"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet         bool
	fileBar       *progressbar.ProgressBar
	exampleBar    *progressbar.ProgressBar
	startTime     time.Time
	totalFiles    int
	totalExamples int
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnResolveComplete(name, path string) {
	if c.quiet {
		return
	}
	log.Printf("Resolved package %s at %s\n", name, path)
}

func (c *CLIProgressReporter) OnWalkComplete(fileCount int) {
	if c.quiet {
		return
	}
	log.Printf("Processing %d source files\n", fileCount)
}

func (c *CLIProgressReporter) OnExtractionStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.totalFiles = totalFiles

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("Extracting modules"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnFileExtracted(fileName string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnValidationStart(totalExamples int) {
	if c.quiet || totalExamples == 0 {
		return
	}
	c.totalExamples = totalExamples

	c.exampleBar = progressbar.NewOptions(totalExamples,
		progressbar.OptionSetDescription("Validating examples"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnExampleValidated() {
	if c.quiet {
		return
	}
	if c.exampleBar != nil {
		c.exampleBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(stats *pipeline.Stats) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	if c.exampleBar != nil {
		c.exampleBar.Finish()
		c.exampleBar = nil
	}
}
