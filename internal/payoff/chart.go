package payoff

import (
	"math"
	"slices"

	"github.com/rzzdr/payoff-pipeline/pkg/models"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/pools"
)

// PaddingRatio is the share of the current price added beyond the lowest and
// highest prices of interest so the curve extends past its last slope change
const PaddingRatio = 0.05

var pricePool = pools.NewSlicePool[float64](16)

// PricesOfInterest returns, in ascending order, the current price, every leg's
// strike and breakeven, and one padding price below and above them. The lower
// padding price never goes below zero. Duplicates are kept.
func PricesOfInterest(position *models.Position) []float64 {
	return appendPricesOfInterest(make([]float64, 0, 3+2*position.LegCount()), position)
}

func appendPricesOfInterest(dst []float64, position *models.Position) []float64 {
	dst = append(dst, position.Price)
	for _, leg := range position.OptionsBought {
		dst = append(dst, leg.StrikePrice, leg.BreakevenPoint(true))
	}
	for _, leg := range position.OptionsSold {
		dst = append(dst, leg.StrikePrice, leg.BreakevenPoint(false))
	}
	slices.Sort(dst)

	padding := position.Price * PaddingRatio
	highest := dst[len(dst)-1] + padding
	lowest := math.Max(dst[0]-padding, 0)
	dst = append(dst, highest, lowest)
	slices.Sort(dst)

	return dst
}

// BuildChartPoints values position at every price of interest. The payoff is
// linear between consecutive prices of interest, so the points trace the curve
// exactly.
func BuildChartPoints(position *models.Position) []models.ChartPoint {
	prices := pricePool.Get()
	defer pricePool.Put(prices)

	*prices = appendPricesOfInterest(*prices, position)

	points := make([]models.ChartPoint, len(*prices))
	for i, price := range *prices {
		points[i] = models.ChartPoint{
			X: price,
			Y: CalculateExpectedGainLoss(position, price),
		}
	}
	return points
}

// BuildSeries is BuildChartPoints in labels/data form
func BuildSeries(position *models.Position) models.ReturnData {
	return models.NewReturnData(BuildChartPoints(position))
}

// Distinct drops points whose x equals the previous point's x. points must be
// sorted by x, as BuildChartPoints returns them.
func Distinct(points []models.ChartPoint) []models.ChartPoint {
	out := make([]models.ChartPoint, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].X == p.X {
			continue
		}
		out = append(out, p)
	}
	return out
}
