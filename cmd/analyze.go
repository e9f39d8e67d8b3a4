package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"warebridge/internal/catalog"
	"warebridge/internal/pipeline"
	"warebridge/internal/ui"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <warehouse>",
	Short: "Discover and report the warehouse dependency graph",
	Long: `Build the cross-warehouse dependency graph starting from the given
warehouse, report any circular references, and print the order in which the
warehouses would be migrated.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	seed := args[0]
	cfg, err := loadConfigWithCredentials()
	if err != nil {
		return err
	}

	source := catalog.NewService(cfg.Source)
	if err := source.Connect(); err != nil {
		return err
	}
	defer source.Close()

	display := ui.NewUI(verbose, false)
	orch := pipeline.NewOrchestrator(cfg, source, nil, nil, nil, nil, display)

	ui.ShowHeader(fmt.Sprintf("Analyzing dependencies of %s", seed))
	analysis, err := orch.Analyze(cmd.Context(), seed)
	if err != nil {
		return err
	}

	printDependencyTable(analysis)

	if len(analysis.Cycles) > 0 {
		paths := make([]string, len(analysis.Cycles))
		for i, c := range analysis.Cycles {
			paths[i] = c.String()
		}
		ui.ShowCycles(paths)
		// cobra's usage text adds nothing to a cycle report
		cmd.SilenceUsage = true
		return fmt.Errorf("dependency graph contains %d cycle(s)", len(analysis.Cycles))
	}

	color.New(color.Bold).Println("\nProcessing order:")
	for i, warehouse := range analysis.Order {
		fmt.Printf("  %d. %s\n", i+1, warehouse)
	}
	return nil
}

func printDependencyTable(analysis *pipeline.Analysis) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Warehouse", "Depends On"})
	table.SetBorder(false)
	table.SetColumnSeparator("  ")

	for _, warehouse := range analysis.Graph.Warehouses() {
		deps := analysis.Graph.Dependencies(warehouse)
		dependsOn := "-"
		if len(deps) > 0 {
			dependsOn = strings.Join(deps, ", ")
		}
		table.Append([]string{warehouse, dependsOn})
	}
	table.Render()
}
