package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/rzzdr/payoff-pipeline/internal/payoff"
	"github.com/rzzdr/payoff-pipeline/pkg/models"
)

func addPayoffCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newChartCmd(app))
	rootCmd.AddCommand(newGainLossCmd(app))
	rootCmd.AddCommand(newSummaryCmd(app))
}

func newChartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Sample the payoff curve of a position",
		Example: `  payoffctl chart -f position.json
  payoffctl chart -f position.json --format series --distinct
  cat position.json | payoffctl chart -f -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			distinct, _ := cmd.Flags().GetBool("distinct")
			if format != "points" && format != "series" {
				return fmt.Errorf("unknown format %q, expected \"points\" or \"series\"", format)
			}

			position, err := readPosition(cmd)
			if err != nil {
				return err
			}

			points, err := app.Calculator.Chart(cmd.Context(), position)
			if err != nil {
				return err
			}
			if distinct {
				points = payoff.Distinct(points)
			}

			if format == "series" {
				return writeJSON(cmd, models.NewReturnData(points))
			}
			return writeJSON(cmd, points)
		},
	}

	cmd.Flags().StringP("file", "f", "", "position JSON file, - for stdin")
	cmd.Flags().String("format", "points", "output format: points or series")
	cmd.Flags().Bool("distinct", false, "drop points that repeat an x-value")

	return cmd
}

func newGainLossCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gain-loss",
		Short:   "Value a position at one expected price",
		Example: `  payoffctl gain-loss -f position.json --price 16`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := readPosition(cmd)
			if err != nil {
				return err
			}

			expectedPrice := position.Price
			if cmd.Flags().Changed("price") {
				expectedPrice, _ = cmd.Flags().GetFloat64("price")
				if math.IsNaN(expectedPrice) || math.IsInf(expectedPrice, 0) {
					return fmt.Errorf("--price must be a finite number")
				}
			}

			gainLoss, err := app.Calculator.GainLoss(cmd.Context(), position, expectedPrice)
			if err != nil {
				return err
			}
			return writeJSON(cmd, gainLoss)
		},
	}

	cmd.Flags().StringP("file", "f", "", "position JSON file, - for stdin")
	cmd.Flags().Float64("price", 0, "expected underlying price (default: the position's price)")

	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Chart a position and summarize the curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := readPosition(cmd)
			if err != nil {
				return err
			}

			report, err := app.Calculator.Summary(cmd.Context(), position)
			if err != nil {
				return err
			}
			return writeJSON(cmd, report)
		},
	}

	cmd.Flags().StringP("file", "f", "", "position JSON file, - for stdin")

	return cmd
}
