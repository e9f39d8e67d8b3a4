package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"warebridge/internal/common"
)

// runTimestampFormat keys the run directory. One timestamp covers the whole
// invocation so every warehouse in the processing order lands under the same
// folder.
const runTimestampFormat = "20060102-150405"

// RunContext locates every artifact of one pipeline invocation. It is built
// once before the per-warehouse loop and passed to each stage explicitly.
type RunContext struct {
	Timestamp string
	Root      string
}

// NewRunContext starts a fresh timestamped run under runRoot
func NewRunContext(runRoot string) RunContext {
	return RunContext{
		Timestamp: time.Now().Format(runTimestampFormat),
		Root:      runRoot,
	}
}

// ResumeRunContext reopens a previous run directory, making the package
// cache effective across invocations.
func ResumeRunContext(runRoot, timestamp string) RunContext {
	return RunContext{Timestamp: timestamp, Root: runRoot}
}

// Dir is the run directory shared by all warehouses in this invocation
func (rc RunContext) Dir() string {
	return filepath.Join(rc.Root, rc.Timestamp)
}

// PackagePath is the extracted package for a warehouse, and the cache key
// that lets a re-run skip extraction.
func (rc RunContext) PackagePath(warehouse string) string {
	return filepath.Join(rc.Dir(), common.SanitizeName(warehouse)+".dacpac")
}

// WarehouseDir holds the classified, rewritten object files for one warehouse
func (rc RunContext) WarehouseDir(warehouse string) string {
	return filepath.Join(rc.Dir(), common.SanitizeName(warehouse))
}

// RawDir is the extractor's staging area for unclassified object scripts
func (rc RunContext) RawDir(warehouse string) string {
	return filepath.Join(rc.WarehouseDir(warehouse), "_raw")
}

// ArtifactPath is the compiled deployable artifact for a warehouse
func (rc RunContext) ArtifactPath(warehouse string) string {
	name := common.SanitizeName(warehouse)
	return filepath.Join(rc.WarehouseDir(warehouse), name+".build.dacpac")
}

// PackageExists reports whether the extraction cache already holds a package
func (rc RunContext) PackageExists(warehouse string) bool {
	info, err := os.Stat(rc.PackagePath(warehouse))
	return err == nil && !info.IsDir()
}

// Ensure creates the run directory tree for a warehouse
func (rc RunContext) Ensure(warehouse string) error {
	return os.MkdirAll(rc.WarehouseDir(warehouse), common.DirPermissionNormal)
}
