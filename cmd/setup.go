package cmd

import (
    "fmt"
    "warebridge/internal/config"
    "warebridge/internal/secrets"
    "warebridge/pkg/models"
    "github.com/AlecAivazis/survey/v2"
    "github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
    Use:   "setup",
    Short: "Initial configuration setup",
    RunE:  runSetup,
}

func init() {
    rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
    fmt.Println("Setting up warebridge...")
    fmt.Println()

    if config.Exists() {
        var overwrite bool
        prompt := &survey.Confirm{
            Message: "Configuration already exists. Do you want to overwrite it?",
            Default: false,
        }
        survey.AskOne(prompt, &overwrite)
        if !overwrite {
            fmt.Println("Setup cancelled.")
            return nil
        }
    }

    cfg := &models.Config{}

    fmt.Println("Source endpoint")
    fmt.Println("---------------")
    source, err := askEndpoint("SYSADMIN")
    if err != nil {
        return err
    }
    cfg.Source = source

    fmt.Println()
    fmt.Println("Target endpoint")
    fmt.Println("---------------")
    target, err := askEndpoint("SYSADMIN")
    if err != nil {
        return err
    }
    cfg.Target = target

    fmt.Println()
    fmt.Println("Migration settings")
    fmt.Println("------------------")
    migrationQs := []*survey.Question{
        {
            Name: "toolpath",
            Prompt: &survey.Input{
                Message: "Schema tool binary:",
                Default: "schematool",
            },
            Validate: survey.Required,
        },
        {
            Name: "runroot",
            Prompt: &survey.Input{
                Message: "Run artifact directory (empty for ~/.warebridge/runs):",
            },
        },
    }
    migration := struct {
        ToolPath string
        RunRoot  string
    }{}
    if err := survey.Ask(migrationQs, &migration); err != nil {
        return err
    }
    cfg.Migration.ToolPath = migration.ToolPath
    cfg.Migration.RunRoot = migration.RunRoot

    var storeCreds bool
    survey.AskOne(&survey.Confirm{
        Message: "Store passwords in the system credential store instead of the config file?",
        Default: true,
    }, &storeCreds)

    if storeCreds {
        if err := stashPasswords(cfg); err != nil {
            return err
        }
    }

    if err := config.Save(cfg); err != nil {
        return err
    }

    fmt.Println()
    fmt.Printf("Configuration saved to %s\n", config.GetConfigFile())
    fmt.Println("Run 'warebridge analyze <warehouse>' to inspect a dependency chain.")
    return nil
}

func askEndpoint(defaultRole string) (models.Endpoint, error) {
    qs := []*survey.Question{
        {
            Name:     "server",
            Prompt:   &survey.Input{Message: "Server (e.g., xy12345.us-east-1):"},
            Validate: survey.Required,
        },
        {
            Name:     "username",
            Prompt:   &survey.Input{Message: "Username:"},
            Validate: survey.Required,
        },
        {
            Name:     "password",
            Prompt:   &survey.Password{Message: "Password:"},
            Validate: survey.Required,
        },
        {
            Name:   "role",
            Prompt: &survey.Input{Message: "Role:", Default: defaultRole},
        },
        {
            Name:   "warehouse",
            Prompt: &survey.Input{Message: "Compute warehouse:", Default: "COMPUTE_WH"},
        },
    }

    var e models.Endpoint
    if err := survey.Ask(qs, &e); err != nil {
        return models.Endpoint{}, err
    }
    return e, nil
}

// stashPasswords moves the collected passwords into the credential store and
// blanks them so they never land in the YAML file.
func stashPasswords(cfg *models.Config) error {
    store, err := secrets.NewStore()
    if err != nil {
        return err
    }

    if err := store.Set(credentialName("source", &cfg.Source), cfg.Source.Password); err != nil {
        return err
    }
    if err := store.Set(credentialName("target", &cfg.Target), cfg.Target.Password); err != nil {
        return err
    }
    cfg.Source.Password = ""
    cfg.Target.Password = ""
    return nil
}
