package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lumipallolabs/sizemap/internal/ui"
)

var (
	flagSeed       int64
	flagSquarified bool
)

var rootCmd = &cobra.Command{
	Use:   "sizemap",
	Short: "Interactive treemap visualizer for weighted hierarchical data",
	Long: `sizemap renders hierarchical data as a treemap in the terminal:
filesystem subtrees sized by disk usage, or world population grouped
by region. Blocks can be selected, resized, and deleted with the mouse.`,
	SilenceUsage: true,
}

// fsCmd visualizes disk usage under a directory
var fsCmd = &cobra.Command{
	Use:   "fs [path]",
	Short: "Visualize disk usage under a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if _, err := os.Stat(abs); err != nil {
			return err
		}
		return run(ui.Config{
			Dataset:    abs,
			Path:       abs,
			Seed:       flagSeed,
			Squarified: flagSquarified,
		})
	},
}

// populationCmd visualizes world population from the World Bank API
var populationCmd = &cobra.Command{
	Use:   "population",
	Short: "Visualize world population by region and country",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(ui.Config{
			Dataset:    "World Population",
			Seed:       flagSeed,
			Squarified: flagSquarified,
		})
	},
}

func run(cfg ui.Config) error {
	// Enable CPU profiling if CPUPROFILE env var is set
	if cpuProfile := os.Getenv("CPUPROFILE"); cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	p := tea.NewProgram(
		ui.NewApp(cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", -1,
		"color seed for reproducible block colors (negative = random)")
	rootCmd.PersistentFlags().BoolVar(&flagSquarified, "squarified", false,
		"start in squarified layout mode")
	rootCmd.AddCommand(fsCmd)
	rootCmd.AddCommand(populationCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
