// Package cli provides the payoffctl command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rzzdr/payoff-pipeline/internal/payoff"
	"github.com/rzzdr/payoff-pipeline/pkg/models"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

// Version information, overridden at link time
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// App holds the dependencies shared by the commands
type App struct {
	Calculator *payoff.Calculator
}

// NewRootCmd creates the root command for the CLI
func NewRootCmd() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "payoffctl",
		Short: "Option position payoff calculator",
		Long: `payoffctl values a stock position and the option legs written on it.

Positions are read as JSON from a file, or from stdin with -f -.
Every command prints JSON on stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "error"
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				level = "debug"
			}
			logger.Init(logger.Config{Level: level, Output: cmd.ErrOrStderr()})

			app.Calculator = payoff.NewCalculator(payoff.CalculatorConfig{}, nil)
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().Bool("pretty", false, "indent JSON output")

	rootCmd.AddCommand(newVersionCmd())
	addPayoffCommands(rootCmd, app)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd, map[string]string{
				"version":    Version,
				"build_date": BuildDate,
			})
		},
	}
}

// readPosition decodes the position named by the --file flag; "-" reads stdin
func readPosition(cmd *cobra.Command) (*models.Position, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return nil, fmt.Errorf("a position file is required (--file, or -f - for stdin)")
	}

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open position file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var position models.Position
	if err := json.NewDecoder(r).Decode(&position); err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}
	return &position, nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
