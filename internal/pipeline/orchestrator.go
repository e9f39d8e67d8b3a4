package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"warebridge/internal/catalog"
	"warebridge/internal/common"
	"warebridge/internal/config"
	"warebridge/internal/graph"
	"warebridge/internal/rewrite"
	"warebridge/internal/ui"
	"warebridge/pkg/errors"
	"warebridge/pkg/models"
)

// Options control one pipeline invocation
type Options struct {
	Deploy bool
	Force  bool
	RunID  string // resume an earlier run directory instead of starting fresh
}

// Analysis is the read-only outcome of the discovery stage. Order is set
// only when the graph is acyclic.
type Analysis struct {
	Graph    *graph.Graph
	Warnings []graph.Warning
	Cycles   []graph.Cycle
	Order    []string
}

// Orchestrator drives the migration stages in sequence: discovery, cycle
// check, sequencing, then the per-warehouse extract/rewrite/package/publish
// loop. Warehouses are processed one at a time in dependency order.
type Orchestrator struct {
	cfg       *models.Config
	source    catalog.Client
	target    catalog.Client
	extractor Extractor
	builder   Builder
	publisher Publisher
	ui        *ui.UI
}

// NewOrchestrator wires the pipeline stages together
func NewOrchestrator(cfg *models.Config, source, target catalog.Client, extractor Extractor, builder Builder, publisher Publisher, display *ui.UI) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		source:    source,
		target:    target,
		extractor: extractor,
		builder:   builder,
		publisher: publisher,
		ui:        display,
	}
}

// Analyze discovers the dependency graph from the seed warehouse, checks it
// for cycles, and sequences it. Catalog failures surface as warnings; cycles
// leave Order empty.
func (o *Orchestrator) Analyze(ctx context.Context, seed string) (*Analysis, error) {
	o.ui.StartProgress(fmt.Sprintf("Discovering dependencies from %s", seed))
	g, warnings := graph.Build(ctx, o.source, seed)
	o.ui.StopProgress()

	analysis := &Analysis{Graph: g, Warnings: warnings}

	for _, w := range warnings {
		o.ui.Warning(w.String())
	}

	analysis.Cycles = graph.FindCycles(g)
	if len(analysis.Cycles) > 0 {
		return analysis, nil
	}

	order, err := graph.Sequence(g)
	if err != nil {
		return analysis, err
	}
	analysis.Order = order
	return analysis, nil
}

// Run executes the full pipeline for the seed warehouse and everything it
// transitively depends on. Cycles abort before any extraction.
func (o *Orchestrator) Run(ctx context.Context, seed string, opts Options) error {
	analysis, err := o.Analyze(ctx, seed)
	if err != nil {
		return err
	}
	return o.Execute(ctx, analysis, opts)
}

// Execute runs the per-warehouse loop for an already-completed analysis
func (o *Orchestrator) Execute(ctx context.Context, analysis *Analysis, opts Options) error {
	if len(analysis.Cycles) > 0 {
		paths := make([]string, len(analysis.Cycles))
		for i, c := range analysis.Cycles {
			paths[i] = c.String()
		}
		ui.ShowCycles(paths)
		return errors.CyclicDependencyError(paths)
	}

	rc, err := o.runContext(opts)
	if err != nil {
		return err
	}
	o.ui.Info(fmt.Sprintf("Run directory: %s", rc.Dir()))

	total := len(analysis.Order)
	for i, warehouse := range analysis.Order {
		ui.ShowWarehouseExecution(warehouse, i+1, total)
		if err := o.processWarehouse(ctx, rc, analysis.Graph, warehouse, opts); err != nil {
			return err
		}
	}

	o.ui.Success(fmt.Sprintf("Processed %d warehouse(s)", total))
	return nil
}

func (o *Orchestrator) runContext(opts Options) (RunContext, error) {
	root := o.cfg.Migration.RunRoot
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return RunContext{}, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		root = filepath.Join(home, ".warebridge", "runs")
	}
	if opts.RunID != "" {
		return ResumeRunContext(root, opts.RunID), nil
	}
	return NewRunContext(root), nil
}

func (o *Orchestrator) processWarehouse(ctx context.Context, rc RunContext, g *graph.Graph, warehouse string, opts Options) error {
	steps := 4
	if opts.Deploy {
		steps = 5
	}
	tracker := ui.NewStepTracker(warehouse, steps)

	if err := rc.Ensure(warehouse); err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation,
			fmt.Sprintf("Failed to create run directory for '%s'", warehouse))
	}

	tracker.Step("Extracting schema")
	if err := o.extract(ctx, rc, warehouse, opts.Force); err != nil {
		return err
	}

	tracker.Step("Classifying objects")
	scripts, skipped, err := LoadScripts(rc.RawDir(warehouse), warehouse)
	if err != nil {
		return err
	}
	for _, name := range skipped {
		o.ui.Warning(fmt.Sprintf("Skipping export file with unrecognized name for %s: %s", warehouse, name))
	}

	tracker.Step("Rewriting cross-warehouse references")
	references := o.rewriteScripts(scripts, warehouse)

	tracker.Step("Building package")
	if err := o.writeScripts(rc, warehouse, scripts); err != nil {
		return err
	}
	if err := o.build(ctx, rc, g, warehouse, references); err != nil {
		return err
	}

	if opts.Deploy {
		tracker.Step("Publishing")
		if err := o.publish(ctx, rc, warehouse, references); err != nil {
			return err
		}
	}

	tracker.Done()
	return nil
}

// extract produces the warehouse package and its exported scripts, skipping
// both when the package is already cached under this run and force is unset.
func (o *Orchestrator) extract(ctx context.Context, rc RunContext, warehouse string, force bool) error {
	if rc.PackageExists(warehouse) && !force {
		if _, err := os.Stat(rc.RawDir(warehouse)); err == nil {
			o.ui.VerbosePrintf("Package for %s already extracted, skipping\n", warehouse)
			return nil
		}
		// a cached package without exported scripts means an earlier run
		// died between extract and export; re-export from the package
		o.ui.VerbosePrintf("Package for %s cached, re-exporting scripts\n", warehouse)
		return o.extractor.Export(ctx, rc.PackagePath(warehouse), rc.RawDir(warehouse))
	}

	if err := o.extractor.Extract(ctx, o.cfg.Source, warehouse, rc.PackagePath(warehouse)); err != nil {
		return err
	}
	return o.extractor.Export(ctx, rc.PackagePath(warehouse), rc.RawDir(warehouse))
}

// rewriteScripts rewrites each object body in place and returns the distinct
// referenced warehouses, first-seen casing preserved.
func (o *Orchestrator) rewriteScripts(scripts []ObjectScript, warehouse string) []string {
	rewriter := rewrite.NewRewriter(warehouse)

	seen := make(map[string]string)
	var order []string
	for i := range scripts {
		body, refs := rewriter.Rewrite(scripts[i].Body)
		scripts[i].Body = body
		for _, ref := range refs {
			k := strings.ToLower(ref)
			if _, ok := seen[k]; !ok {
				seen[k] = ref
				order = append(order, ref)
			}
		}
	}
	sort.Strings(order)
	return order
}

func (o *Orchestrator) writeScripts(rc RunContext, warehouse string, scripts []ObjectScript) error {
	files := Route(rc.WarehouseDir(warehouse), scripts)
	for path, body := range files {
		if err := os.MkdirAll(filepath.Dir(path), common.DirPermissionNormal); err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to create object directory")
		}
		if err := os.WriteFile(path, []byte(body), common.FilePermissionNormal); err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation,
				fmt.Sprintf("Failed to write object file %s", filepath.Base(path)))
		}
	}
	return nil
}

func (o *Orchestrator) build(ctx context.Context, rc RunContext, g *graph.Graph, warehouse string, references []string) error {
	variables := make([]string, len(references))
	for i, ref := range references {
		variables[i] = rewrite.VariableName(ref)
	}

	var depPackages []string
	for _, dep := range g.Dependencies(warehouse) {
		depPackages = append(depPackages, rc.PackagePath(dep))
	}

	artifact := rc.ArtifactPath(warehouse)
	if err := o.builder.Build(ctx, rc.WarehouseDir(warehouse), artifact, variables, depPackages); err != nil {
		return err
	}

	// a successful build with no artifact on disk means the tool lied
	if _, err := os.Stat(artifact); err != nil {
		return errors.New(errors.ErrCodePackageMissing,
			fmt.Sprintf("Build reported success but no artifact exists for '%s'", warehouse)).
			WithContext("artifact", artifact)
	}
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, rc RunContext, warehouse string, references []string) error {
	variables := make(map[string]string, len(references))
	for _, ref := range references {
		variables[rewrite.VariableName(ref)] = ref
	}

	itemType, err := o.target.ItemType(ctx, warehouse)
	if err != nil {
		o.ui.Warning(fmt.Sprintf("Could not determine target item type for %s, assuming warehouse: %v", warehouse, err))
		itemType = catalog.ItemTypeWarehouse
	}
	excludeTables := itemType == catalog.ItemTypeVirtualizedEndpoint

	start := time.Now()
	if err := o.publisher.Publish(ctx, o.cfg.Target, rc.ArtifactPath(warehouse), warehouse, variables, excludeTables); err != nil {
		return err
	}
	ui.ShowStepResult("publish", true, warehouse, ui.FormatDuration(time.Since(start)))

	if excludeTables {
		o.refreshMetadata(ctx, warehouse)
	}
	return nil
}

// refreshMetadata polls the target's metadata refresh to completion. The
// refresh is best-effort: a timeout or failure is a warning, not a run
// abort.
func (o *Orchestrator) refreshMetadata(ctx context.Context, warehouse string) {
	if err := o.publisher.BeginRefresh(ctx, o.cfg.Target, warehouse); err != nil {
		o.ui.Warning(fmt.Sprintf("Metadata refresh could not be started for %s: %v", warehouse, err))
		return
	}

	interval := config.PollInterval(o.cfg)
	timeout := config.RefreshTimeout(o.cfg)
	err := errors.PollUntil(ctx, interval, timeout, func(ctx context.Context) (bool, error) {
		return o.publisher.RefreshComplete(ctx, o.cfg.Target, warehouse)
	})
	if err != nil {
		o.ui.Warning(fmt.Sprintf("Metadata refresh did not complete for %s: %v", warehouse, err))
		return
	}
	o.ui.VerbosePrintf("Metadata refresh complete for %s\n", warehouse)
}
