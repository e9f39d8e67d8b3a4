package cmd

import (
    "fmt"
    "os"
    "strings"
    "github.com/spf13/cobra"
    "github.com/spf13/pflag"
    "github.com/spf13/viper"
    "warebridge/pkg/errors"
)

var (
    verbose bool
    rootCmd = &cobra.Command{
        Use:   "warebridge",
        Short: "Migrate interdependent warehouse schemas between platforms",
        Long: "Warebridge - discovers cross-warehouse references, orders warehouses so\n" +
            "dependencies are processed first, rewrites cross-warehouse names into\n" +
            "deployment variables and replays the schemas onto the target in order.",
    }
)

func Execute() {
    if err := rootCmd.Execute(); err != nil {
        errors.GetGlobalErrorHandler().Handle(err)
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}

func init() {
    cobra.OnInitialize(initConfig)
    rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
    // accept underscored spellings like --run_id
    rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
        return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
    })
}

func initConfig() {
    viper.SetConfigName("config")
    viper.SetConfigType("yaml")
    viper.AddConfigPath(".")

    home, err := os.UserHomeDir()
    if err == nil {
        viper.AddConfigPath(home + "/.warebridge")
    }

    if err := viper.ReadInConfig(); err != nil {
        // Config file not found is okay for now
    }
}
