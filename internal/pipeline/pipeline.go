// Package pipeline orchestrates the discovery-and-extraction stages:
// resolve a package root, walk its source files, extract each file's
// syntax tree in parallel, harvest and validate docstring examples,
// and assemble everything into one DocumentationModel.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/pkgchew/pkgchew/internal/assemble"
	"github.com/pkgchew/pkgchew/internal/config"
	"github.com/pkgchew/pkgchew/internal/discover"
	"github.com/pkgchew/pkgchew/internal/examples"
	"github.com/pkgchew/pkgchew/internal/extract"
	"github.com/pkgchew/pkgchew/internal/metadata"
	"github.com/pkgchew/pkgchew/internal/model"
)

// Stats summarizes one pipeline run.
type Stats struct {
	Modules       int
	Entities      int
	Examples      int
	FailedModules int
	Diagnostics   int
	Duration      time.Duration
}

// Pipeline runs the whole analysis for one package identifier. It is
// stateless between runs; every Run resolves and reads everything
// fresh.
type Pipeline struct {
	cfg      *config.Config
	resolver *discover.Resolver
	runner   examples.Runner
	progress ProgressReporter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunner overrides the sandbox runner used for example execution.
func WithRunner(r examples.Runner) Option {
	return func(p *Pipeline) { p.runner = r }
}

// WithProgress sets the progress reporter.
func WithProgress(pr ProgressReporter) Option {
	return func(p *Pipeline) { p.progress = pr }
}

// New creates a pipeline from the configuration.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	resolver, err := discover.NewResolver(cfg.Analysis)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:      cfg,
		resolver: resolver,
		progress: &NoOpProgressReporter{},
	}
	if cfg.Sandbox.Enabled {
		timeout := time.Duration(cfg.Sandbox.TimeoutSeconds) * time.Second
		p.runner = examples.NewSandbox(examples.NewEmbeddedLauncher(), timeout)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run resolves the identifier and produces a DocumentationModel.
// Only resolution failures are returned as errors; every per-file and
// per-example failure is captured in the model's diagnostics.
func (p *Pipeline) Run(ctx context.Context, identifier string) (*model.DocumentationModel, *Stats, error) {
	start := time.Now()

	roots, diags, err := p.resolver.Resolve(identifier)
	if err != nil {
		return nil, nil, err
	}
	root := roots[0]
	p.progress.OnResolveComplete(root.Name, root.Path)

	walker, err := discover.NewWalker(root, p.cfg.Analysis.Exclude)
	if err != nil {
		return nil, nil, err
	}
	files, walkDiags, err := walker.List()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", root.Path, err)
	}
	diags = append(diags, walkDiags...)
	p.progress.OnWalkComplete(len(files))

	modules := p.extractAll(ctx, root, files)

	for _, mod := range modules {
		if mod.Status == model.ParseSyntaxError {
			diags = append(diags, model.Errorf(mod.Path, "syntax error; module skipped"))
		}
		if mod.Status == model.ParseUnreadable {
			diags = append(diags, model.Warningf(mod.Path, "unreadable; module skipped"))
		}
	}

	diags = append(diags, p.validateExamples(ctx, modules)...)

	meta, metaDiags := metadata.Read(root)
	diags = append(diags, metaDiags...)

	assembler := assemble.NewAssembler(p.cfg.Output.CrossReferences)
	doc := assembler.Assemble(root, meta, modules, diags)

	stats := &Stats{Duration: time.Since(start)}
	collectStats(doc, stats)
	p.progress.OnComplete(stats)

	return doc, stats, nil
}

// extractAll parses files on a bounded worker pool, one file per task.
// Extraction is a pure per-file transformation with no shared state;
// results arrive in completion order and are put back into walk order
// before anything downstream derives output from them.
func (p *Pipeline) extractAll(ctx context.Context, root *model.PackageRoot, files []string) []*model.ModuleNode {
	p.progress.OnExtractionStart(len(files))

	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan string)
	results := make(chan *model.ModuleNode, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			extractor := extract.NewExtractor()
			for file := range tasks {
				results <- extractor.ExtractFile(file, extract.DottedName(root, file))
				p.progress.OnFileExtracted(file)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, file := range files {
			select {
			case <-ctx.Done():
				return
			case tasks <- file:
			}
		}
	}()

	wg.Wait()
	close(results)

	modules := make([]*model.ModuleNode, 0, len(files))
	for mod := range results {
		modules = append(modules, mod)
	}
	return orderModules(files, modules)
}

// orderModules sorts extraction results back into the walker's file
// order so module-level diagnostics come out in the same order on
// every run regardless of worker scheduling.
func orderModules(files []string, modules []*model.ModuleNode) []*model.ModuleNode {
	index := make(map[string]int, len(files))
	for i, file := range files {
		index[file] = i
	}
	sort.SliceStable(modules, func(i, j int) bool {
		return index[modules[i].Path] < index[modules[j].Path]
	})
	return modules
}

// validateExamples harvests and validates docstring examples. A nil
// runner limits validation to syntax checking; execution failures are
// per-example statuses, never pipeline errors.
func (p *Pipeline) validateExamples(ctx context.Context, modules []*model.ModuleNode) []model.Diagnostic {
	harvester := examples.NewHarvester()
	validator := examples.NewValidator(p.runner)

	total := 0
	for _, mod := range modules {
		for _, entity := range mod.Entities {
			harvester.Attach(entity)
			total += countExamples(entity)
		}
	}
	p.progress.OnValidationStart(total)

	var diags []model.Diagnostic
	for _, mod := range modules {
		for _, entity := range mod.Entities {
			diags = append(diags, validator.ValidateEntity(ctx, entity)...)
			walkExamples(entity, func(*model.Example) { p.progress.OnExampleValidated() })
		}
	}
	return diags
}

func countExamples(entity *model.Entity) int {
	count := len(entity.Examples)
	for _, child := range entity.Children {
		count += countExamples(child)
	}
	return count
}

func walkExamples(entity *model.Entity, fn func(*model.Example)) {
	for _, example := range entity.Examples {
		fn(example)
	}
	for _, child := range entity.Children {
		walkExamples(child, fn)
	}
}

func collectStats(doc *model.DocumentationModel, stats *Stats) {
	stats.Modules = len(doc.Modules)
	stats.Diagnostics = len(doc.Diagnostics)
	for _, mod := range doc.Modules {
		if mod.Status != model.ParseOK {
			stats.FailedModules++
		}
		for _, entity := range mod.Entities {
			stats.Entities++
			stats.Examples += countExamples(entity)
			countChildren(entity, stats)
		}
	}
}

func countChildren(entity *model.Entity, stats *Stats) {
	for _, child := range entity.Children {
		stats.Entities++
		countChildren(child, stats)
	}
}
