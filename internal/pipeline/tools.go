package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"warebridge/pkg/errors"
	"warebridge/pkg/models"
)

// Extractor produces a portable schema package from a live warehouse and
// exports its object scripts into a staging directory.
type Extractor interface {
	Extract(ctx context.Context, src models.Endpoint, warehouse, packagePath string) error
	Export(ctx context.Context, packagePath, rawDir string) error
}

// Builder compiles a directory of classified object files into a deployable
// artifact, declaring one deployment variable per required variable name.
type Builder interface {
	Build(ctx context.Context, warehouseDir, artifactPath string, variables []string, depPackages []string) error
}

// Publisher applies a compiled artifact to a target endpoint and manages the
// target's metadata refresh for virtualized endpoints.
type Publisher interface {
	Publish(ctx context.Context, target models.Endpoint, artifactPath, warehouse string, variables map[string]string, excludeTables bool) error
	BeginRefresh(ctx context.Context, target models.Endpoint, warehouse string) error
	RefreshComplete(ctx context.Context, target models.Endpoint, warehouse string) (bool, error)
}

type runFunc func(ctx context.Context, env []string, name string, args ...string) ([]byte, error)

// SchemaTool shells out to the configured schema tool binary for the
// extract, export, build, publish and refresh actions. It implements
// Extractor, Builder and Publisher.
type SchemaTool struct {
	path string
	run  runFunc
}

// NewSchemaTool resolves the tool binary from config
func NewSchemaTool(toolPath string) (*SchemaTool, error) {
	resolved, err := exec.LookPath(toolPath)
	if err != nil {
		return nil, errors.New(errors.ErrCodeToolNotFound,
			fmt.Sprintf("Schema tool not found: %s", toolPath)).
			WithContext("tool_path", toolPath).
			WithSuggestions("Set migration.tool_path in the configuration to the tool binary")
	}
	return &SchemaTool{path: resolved, run: runCommand}, nil
}

func runCommand(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 - tool path comes from validated config
	cmd.Env = append(os.Environ(), env...)
	return cmd.CombinedOutput()
}

func (t *SchemaTool) Extract(ctx context.Context, src models.Endpoint, warehouse, packagePath string) error {
	args := []string{
		"extract",
		"--server", src.Server,
		"--user", src.Username,
		"--database", warehouse,
		"--target", packagePath,
	}
	if src.Role != "" {
		args = append(args, "--role", src.Role)
	}
	out, err := t.run(ctx, credentialEnv(src), t.path, args...)
	if err != nil {
		return toolError(errors.ErrCodeExtractFailed, "Schema extraction failed", warehouse, out, err)
	}
	return nil
}

func (t *SchemaTool) Export(ctx context.Context, packagePath, rawDir string) error {
	out, err := t.run(ctx, nil, t.path,
		"export",
		"--package", packagePath,
		"--out", rawDir,
	)
	if err != nil {
		return toolError(errors.ErrCodeExtractFailed, "Object script export failed", packagePath, out, err)
	}
	return nil
}

func (t *SchemaTool) Build(ctx context.Context, warehouseDir, artifactPath string, variables []string, depPackages []string) error {
	args := []string{
		"build",
		"--source", warehouseDir,
		"--output", artifactPath,
	}
	for _, v := range variables {
		args = append(args, "--variable", v)
	}
	for _, dep := range depPackages {
		args = append(args, "--reference", dep)
	}
	out, err := t.run(ctx, nil, t.path, args...)
	if err != nil {
		return toolError(errors.ErrCodePackageFailed, "Package build failed", warehouseDir, out, err)
	}
	return nil
}

func (t *SchemaTool) Publish(ctx context.Context, target models.Endpoint, artifactPath, warehouse string, variables map[string]string, excludeTables bool) error {
	args := []string{
		"publish",
		"--package", artifactPath,
		"--server", target.Server,
		"--user", target.Username,
		"--database", warehouse,
	}
	for _, name := range sortedVariableNames(variables) {
		args = append(args, "--variable", fmt.Sprintf("%s=%s", name, variables[name]))
	}
	if excludeTables {
		args = append(args, "--exclude-object-type", "Tables")
	}
	out, err := t.run(ctx, credentialEnv(target), t.path, args...)
	if err != nil {
		return toolError(errors.ErrCodePublishFailed, "Publish failed", warehouse, out, err)
	}
	return nil
}

func (t *SchemaTool) BeginRefresh(ctx context.Context, target models.Endpoint, warehouse string) error {
	out, err := t.run(ctx, credentialEnv(target), t.path,
		"refresh",
		"--server", target.Server,
		"--user", target.Username,
		"--database", warehouse,
	)
	if err != nil {
		return toolError(errors.ErrCodeRefreshTimeout, "Metadata refresh request failed", warehouse, out, err)
	}
	return nil
}

func (t *SchemaTool) RefreshComplete(ctx context.Context, target models.Endpoint, warehouse string) (bool, error) {
	out, err := t.run(ctx, credentialEnv(target), t.path,
		"refresh",
		"--status",
		"--server", target.Server,
		"--user", target.Username,
		"--database", warehouse,
	)
	if err != nil {
		return false, fmt.Errorf("refresh status check failed: %w", err)
	}
	return strings.Contains(strings.ToLower(string(out)), "complete"), nil
}

func sortedVariableNames(variables map[string]string) []string {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// credentialEnv keeps passwords off the process argument list
func credentialEnv(e models.Endpoint) []string {
	if e.Password == "" {
		return nil
	}
	return []string{"WAREBRIDGE_TOOL_PASSWORD=" + e.Password}
}

func toolError(code errors.ErrorCode, message, subject string, output []byte, cause error) error {
	appErr := errors.PipelineError(code, message, subject, cause)
	if len(output) > 0 {
		appErr = appErr.WithContext("tool_output", strings.TrimSpace(string(output)))
	}
	return appErr
}

// LoadScripts reads the extractor's staging directory into ObjectScripts.
// File names follow the export convention
// <Schema>.<Name>.<Type>.sql, with a fourth leading part
// <Schema>.<Table>.<Name>.<Type>.sql for table-bound constraints and the
// two-part form <Name>.<Type>.sql for schema-less objects. Script files
// whose name does not parse are returned as skipped so the caller can log
// them; an object dropped from the run must be diagnosable afterwards.
func LoadScripts(rawDir, warehouse string) ([]ObjectScript, []string, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeFileNotFound,
			fmt.Sprintf("No exported scripts for warehouse '%s'", warehouse)).
			WithContext("dir", rawDir)
	}

	var scripts []ObjectScript
	var skipped []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		body, err := os.ReadFile(filepath.Join(rawDir, entry.Name())) // #nosec G304 - run dir content
		if err != nil {
			return nil, nil, err
		}
		script, ok := parseScriptName(entry.Name())
		if !ok {
			skipped = append(skipped, entry.Name())
			continue
		}
		script.Warehouse = warehouse
		script.Body = string(body)
		scripts = append(scripts, script)
	}
	return scripts, skipped, nil
}

func parseScriptName(fileName string) (ObjectScript, bool) {
	base := strings.TrimSuffix(fileName, ".sql")
	parts := strings.Split(base, ".")

	switch len(parts) {
	case 2:
		return ObjectScript{Name: parts[0], Type: parts[1]}, true
	case 3:
		return ObjectScript{Schema: parts[0], Name: parts[1], Type: parts[2]}, true
	case 4:
		return ObjectScript{Schema: parts[0], Parent: parts[1], Name: parts[2], Type: parts[3]}, true
	default:
		return ObjectScript{}, false
	}
}
