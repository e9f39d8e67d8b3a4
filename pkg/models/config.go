package models

type Config struct {
    Source       Endpoint      `yaml:"source"`
    Target       Endpoint      `yaml:"target"`
    Migration    Migration     `yaml:"migration"`
    Environments []Environment `yaml:"environments"`
}

// Endpoint identifies one warehouse platform endpoint and the credential
// used to reach it. Password may be left empty and resolved from the
// credential store at run time.
type Endpoint struct {
    Server    string `yaml:"server"`
    Username  string `yaml:"username"`
    Password  string `yaml:"password"`
    Role      string `yaml:"role"`
    Warehouse string `yaml:"warehouse"`
}

// Migration contains pipeline-specific configuration
type Migration struct {
    RunRoot        string `yaml:"run_root"`        // Root directory for timestamped run folders
    ToolPath       string `yaml:"tool_path"`       // Schema tool binary used for extract/build/publish
    ForceRefresh   bool   `yaml:"force_refresh"`   // Re-extract even when a package already exists
    Deploy         bool   `yaml:"deploy"`          // Publish artifacts after packaging by default
    RefreshTimeout string `yaml:"refresh_timeout"` // e.g. "10m", wall-clock cap for metadata refresh polling
    PollInterval   string `yaml:"poll_interval"`   // e.g. "15s", fixed interval between refresh polls
}

// Environment represents a target environment configuration
type Environment struct {
    Name      string `yaml:"name"`      // Environment name (e.g., "dev", "staging", "prod")
    Server    string `yaml:"server"`    // Target server
    Username  string `yaml:"username"`  // Target username
    Password  string `yaml:"password"`  // Target password
    Warehouse string `yaml:"warehouse"` // Target warehouse name
    Role      string `yaml:"role"`      // Default role
    Timeout   string `yaml:"timeout"`   // Connection timeout
}
