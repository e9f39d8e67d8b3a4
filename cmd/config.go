package cmd

import (
	"fmt"

	"warebridge/internal/catalog"
	"warebridge/internal/config"
	"warebridge/internal/secrets"
	"warebridge/pkg/errors"
	"warebridge/pkg/models"
)

// loadConfigWithCredentials loads the configuration and fills in any
// password the file leaves empty from the credential store.
func loadConfigWithCredentials() (*models.Config, error) {
	if !config.Exists() {
		return nil, errors.New(errors.ErrCodeConfigNotFound, "No configuration found").
			WithSuggestions("Run 'warebridge setup' to create one")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := resolvePassword(&cfg.Source, "source"); err != nil {
		return nil, err
	}
	if err := resolvePassword(&cfg.Target, "target"); err != nil {
		return nil, err
	}

	if err := catalog.ValidateEndpoint(cfg.Source); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolvePassword(e *models.Endpoint, role string) error {
	if e.Password != "" {
		return nil
	}

	store, err := secrets.NewStore()
	if err != nil {
		return err
	}

	password, err := store.Get(credentialName(role, e))
	if err != nil {
		return err
	}
	e.Password = password
	return nil
}

func credentialName(role string, e *models.Endpoint) string {
	return fmt.Sprintf("%s:%s@%s", role, e.Username, e.Server)
}
