package pipeline

// ProgressReporter provides callbacks for reporting pipeline progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnResolveComplete is called once the package root is resolved.
	OnResolveComplete(name, path string)

	// OnWalkComplete is called when file discovery finishes.
	OnWalkComplete(fileCount int)

	// OnExtractionStart is called before per-file extraction begins.
	OnExtractionStart(totalFiles int)

	// OnFileExtracted is called after each file is extracted.
	OnFileExtracted(fileName string)

	// OnValidationStart is called before example validation begins.
	OnValidationStart(totalExamples int)

	// OnExampleValidated is called after each example is validated.
	OnExampleValidated()

	// OnComplete is called when the pipeline finishes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnResolveComplete(name, path string) {}
func (n *NoOpProgressReporter) OnWalkComplete(fileCount int)        {}
func (n *NoOpProgressReporter) OnExtractionStart(totalFiles int)    {}
func (n *NoOpProgressReporter) OnFileExtracted(fileName string)     {}
func (n *NoOpProgressReporter) OnValidationStart(totalExamples int) {}
func (n *NoOpProgressReporter) OnExampleValidated()                 {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)             {}
