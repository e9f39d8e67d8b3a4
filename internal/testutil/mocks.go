package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"warebridge/internal/catalog"
	"warebridge/pkg/models"
)

// MockCatalog is an in-memory catalog.Client backed by a fixed adjacency map
type MockCatalog struct {
	mu sync.Mutex

	Refs      map[string][]string
	Errs      map[string]error
	ItemTypes map[string]catalog.ItemType

	RefCalls []string
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Refs:      make(map[string][]string),
		Errs:      make(map[string]error),
		ItemTypes: make(map[string]catalog.ItemType),
	}
}

func (m *MockCatalog) References(ctx context.Context, warehouse string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RefCalls = append(m.RefCalls, warehouse)
	if err, ok := m.Errs[warehouse]; ok {
		return nil, err
	}
	return m.Refs[warehouse], nil
}

func (m *MockCatalog) ItemType(ctx context.Context, name string) (catalog.ItemType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errs[name]; ok {
		return catalog.ItemTypeUnknown, err
	}
	if t, ok := m.ItemTypes[name]; ok {
		return t, nil
	}
	return catalog.ItemTypeWarehouse, nil
}

// MockExtractor materializes canned object scripts instead of shelling out.
// Scripts maps warehouse name to export file name to body.
type MockExtractor struct {
	Scripts    map[string]map[string]string
	ExtractErr error
	ExportErr  error

	Extracted []string
}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{Scripts: make(map[string]map[string]string)}
}

func (m *MockExtractor) Extract(ctx context.Context, src models.Endpoint, warehouse, packagePath string) error {
	if m.ExtractErr != nil {
		return m.ExtractErr
	}
	m.Extracted = append(m.Extracted, warehouse)
	if err := os.MkdirAll(filepath.Dir(packagePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(packagePath, []byte("package:"+warehouse), 0o644)
}

func (m *MockExtractor) Export(ctx context.Context, packagePath, rawDir string) error {
	if m.ExportErr != nil {
		return m.ExportErr
	}
	warehouse := filepath.Base(packagePath)
	warehouse = warehouse[:len(warehouse)-len(filepath.Ext(warehouse))]
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return err
	}
	for name, body := range m.Scripts[warehouse] {
		if err := os.WriteFile(filepath.Join(rawDir, name), []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// BuildCall records one Builder invocation
type BuildCall struct {
	WarehouseDir string
	ArtifactPath string
	Variables    []string
	DepPackages  []string
}

type MockBuilder struct {
	Err          error
	SkipArtifact bool // simulate a tool that exits zero without producing output

	Calls []BuildCall
}

func (m *MockBuilder) Build(ctx context.Context, warehouseDir, artifactPath string, variables []string, depPackages []string) error {
	m.Calls = append(m.Calls, BuildCall{
		WarehouseDir: warehouseDir,
		ArtifactPath: artifactPath,
		Variables:    variables,
		DepPackages:  depPackages,
	})
	if m.Err != nil {
		return m.Err
	}
	if m.SkipArtifact {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(artifactPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(artifactPath, []byte("artifact"), 0o644)
}

// PublishCall records one Publisher invocation
type PublishCall struct {
	Warehouse     string
	ArtifactPath  string
	Variables     map[string]string
	ExcludeTables bool
}

type MockPublisher struct {
	Err        error
	RefreshErr error
	// RefreshPollsNeeded is how many status polls report in-progress before
	// completion; zero completes on the first poll.
	RefreshPollsNeeded int

	Calls          []PublishCall
	RefreshesBegun []string
	polls          int
}

func (m *MockPublisher) Publish(ctx context.Context, target models.Endpoint, artifactPath, warehouse string, variables map[string]string, excludeTables bool) error {
	m.Calls = append(m.Calls, PublishCall{
		Warehouse:     warehouse,
		ArtifactPath:  artifactPath,
		Variables:     variables,
		ExcludeTables: excludeTables,
	})
	return m.Err
}

func (m *MockPublisher) BeginRefresh(ctx context.Context, target models.Endpoint, warehouse string) error {
	if m.RefreshErr != nil {
		return m.RefreshErr
	}
	m.RefreshesBegun = append(m.RefreshesBegun, warehouse)
	return nil
}

func (m *MockPublisher) RefreshComplete(ctx context.Context, target models.Endpoint, warehouse string) (bool, error) {
	m.polls++
	return m.polls > m.RefreshPollsNeeded, nil
}

// ScriptFile builds an export file name following the extractor convention
func ScriptFile(schema, name, objType string) string {
	return fmt.Sprintf("%s.%s.%s.sql", schema, name, objType)
}
