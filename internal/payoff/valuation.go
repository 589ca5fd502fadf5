// Package payoff values equity-plus-options positions at expiration and samples
// the resulting payoff curve for charting.
package payoff

import (
	"github.com/rzzdr/payoff-pipeline/pkg/models"
)

// CalculateExpectedGainLoss returns the realized gain or loss of position if the
// underlying settles at expectedPrice. Legs that finish in the money are exercised;
// the writer of a sold leg takes the mirror image of the holder's exercise.
func CalculateExpectedGainLoss(position *models.Position, expectedPrice float64) float64 {
	costBasis := position.Price * position.AmountOwned
	amountStillOwned := position.AmountOwned

	var netOptionsPremiums, netOptionsProceeds float64

	for _, leg := range position.OptionsBought {
		netOptionsPremiums -= leg.Premiums()
		if leg.ShouldExercise(expectedPrice) {
			result := leg.Exercise()
			amountStillOwned += result.AmountChange
			netOptionsProceeds += result.CashChange
		}
	}

	for _, leg := range position.OptionsSold {
		netOptionsPremiums += leg.Premiums()
		if leg.ShouldExercise(expectedPrice) {
			result := leg.Exercise()
			amountStillOwned -= result.AmountChange
			netOptionsProceeds -= result.CashChange
		}
	}

	return netOptionsPremiums + netOptionsProceeds + amountStillOwned*expectedPrice - costBasis
}
