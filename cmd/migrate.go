package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"warebridge/internal/catalog"
	"warebridge/internal/pipeline"
	"warebridge/internal/ui"
)

var (
	migrateDeploy bool
	migrateForce  bool
	migrateYes    bool
	migrateRunID  string

	migrateCmd = &cobra.Command{
		Use:   "migrate <warehouse>",
		Short: "Extract, rewrite and package a warehouse chain",
		Long: `Run the full migration pipeline for the given warehouse and everything it
transitively depends on: extract each warehouse's schema, rewrite
cross-warehouse references into deployment variables, build a deployable
package per warehouse and optionally publish it to the target.`,
		Args: cobra.ExactArgs(1),
		RunE: runMigrate,
	}
)

func init() {
	migrateCmd.Flags().BoolVar(&migrateDeploy, "deploy", false, "publish each package to the target after building")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "re-extract even when a package is already cached")
	migrateCmd.Flags().BoolVarP(&migrateYes, "yes", "y", false, "skip the confirmation prompt")
	migrateCmd.Flags().StringVar(&migrateRunID, "run-id", "", "resume an existing run directory instead of starting a new one")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	seed := args[0]
	cfg, err := loadConfigWithCredentials()
	if err != nil {
		return err
	}
	if !migrateDeploy {
		migrateDeploy = cfg.Migration.Deploy
	}

	source := catalog.NewService(cfg.Source)
	if err := source.Connect(); err != nil {
		return err
	}
	defer source.Close()

	target := catalog.NewService(cfg.Target)
	if migrateDeploy {
		if err := target.Connect(); err != nil {
			return err
		}
		defer target.Close()
	}

	tool, err := pipeline.NewSchemaTool(cfg.Migration.ToolPath)
	if err != nil {
		return err
	}

	display := ui.NewUI(verbose, false)
	orch := pipeline.NewOrchestrator(cfg, source, target, tool, tool, tool, display)

	ui.ShowHeader(fmt.Sprintf("Migrating %s", seed))
	analysis, err := orch.Analyze(cmd.Context(), seed)
	if err != nil {
		return err
	}
	if len(analysis.Cycles) == 0 {
		ui.ShowMigrationPlan(analysis.Order, migrateDeploy)
		if !migrateYes {
			proceed, err := ui.AskConfirm("Proceed with the migration?", true)
			if err != nil || !proceed {
				display.Info("Migration cancelled")
				return nil
			}
		}
	}

	cmd.SilenceUsage = true
	return orch.Execute(cmd.Context(), analysis, pipeline.Options{
		Deploy: migrateDeploy,
		Force:  migrateForce || cfg.Migration.ForceRefresh,
		RunID:  migrateRunID,
	})
}
