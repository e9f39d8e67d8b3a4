package config

import (
    "fmt"
    "os"
    "path/filepath"
    "time"

    "warebridge/internal/common"
    "warebridge/pkg/models"
    "gopkg.in/yaml.v3"
)

func GetConfigPath() string {
    // Check for environment variable first
    if configPath := os.Getenv("WAREBRIDGE_CONFIG"); configPath != "" {
        return filepath.Dir(configPath)
    }
    home, _ := os.UserHomeDir()
    return filepath.Join(home, ".warebridge")
}

func GetConfigFile() string {
    // Check for environment variable first
    if configFile := os.Getenv("WAREBRIDGE_CONFIG"); configFile != "" {
        // Validate the path to prevent directory traversal
        cleaned, err := common.CleanPath(configFile)
        if err != nil {
            // Fall back to default if invalid
            return filepath.Join(GetConfigPath(), "config.yaml")
        }
        return cleaned
    }
    return filepath.Join(GetConfigPath(), "config.yaml")
}

func Load() (*models.Config, error) {
    configFile := GetConfigFile()

    cleanedPath, err := common.CleanPath(configFile)
    if err != nil {
        return nil, fmt.Errorf("invalid config file path: %w", err)
    }

    if _, err := os.Stat(cleanedPath); os.IsNotExist(err) {
        return &models.Config{}, nil
    }

    data, err := os.ReadFile(cleanedPath) // #nosec G304 - path is validated
    if err != nil {
        return nil, fmt.Errorf("failed to read config file: %w", err)
    }

    var config models.Config
    if err := yaml.Unmarshal(data, &config); err != nil {
        return nil, fmt.Errorf("failed to unmarshal config: %w", err)
    }
    return &config, nil
}

func Save(config *models.Config) error {
    configPath := GetConfigPath()
    if err := os.MkdirAll(configPath, common.DirPermissionSecure); err != nil {
        return fmt.Errorf("failed to create config directory: %w", err)
    }

    configFile := GetConfigFile()

    data, err := yaml.Marshal(config)
    if err != nil {
        return fmt.Errorf("failed to marshal config: %w", err)
    }

    if err := os.WriteFile(configFile, data, common.FilePermissionSecure); err != nil {
        return fmt.Errorf("failed to write config file: %w", err)
    }

    return nil
}

func Exists() bool {
    _, err := os.Stat(GetConfigFile())
    return err == nil
}

// RefreshTimeout returns the configured metadata refresh timeout, with a
// ten-minute default for unset or unparsable values.
func RefreshTimeout(cfg *models.Config) time.Duration {
    if d, err := time.ParseDuration(cfg.Migration.RefreshTimeout); err == nil && d > 0 {
        return d
    }
    return 10 * time.Minute
}

// PollInterval returns the configured refresh poll interval, defaulting to
// fifteen seconds.
func PollInterval(cfg *models.Config) time.Duration {
    if d, err := time.ParseDuration(cfg.Migration.PollInterval); err == nil && d > 0 {
        return d
    }
    return 15 * time.Second
}
