package testutil

import (
	"testing"

	"warebridge/pkg/models"
)

// TestConfig returns a complete configuration rooted under a temp dir
func TestConfig(t *testing.T) *models.Config {
	t.Helper()

	return &models.Config{
		Source: models.Endpoint{
			Server:    "source.example.com",
			Username:  "migrator",
			Password:  "secret",
			Role:      "SYSADMIN",
			Warehouse: "COMPUTE_WH",
		},
		Target: models.Endpoint{
			Server:    "target.example.com",
			Username:  "deployer",
			Password:  "secret",
			Warehouse: "COMPUTE_WH",
		},
		Migration: models.Migration{
			RunRoot:        t.TempDir(),
			ToolPath:       "schematool",
			RefreshTimeout: "200ms",
			PollInterval:   "10ms",
		},
	}
}
