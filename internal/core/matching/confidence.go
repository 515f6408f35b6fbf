package matching

import "github.com/shopspring/decimal"

const (
	confidenceFloor      = 0.5
	amountPassDateWeight = 0.25
	amountPassDiffWeight = 0.25
	splitCeiling         = 0.8
	splitDiffWeight      = 0.3
)

// ratio returns diff/band clamped to [0,1].
func ratio(diff, band decimal.Decimal) float64 {
	if !band.IsPositive() {
		if diff.IsZero() {
			return 0
		}
		return 1
	}
	r := diff.Abs().Div(band).InexactFloat64()
	if r > 1 {
		return 1
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// amountConfidence scores a 1:1 AMOUNT match. Same day with equal amounts
// scores 1.0; both inputs at their limits score the 0.5 floor.
func amountConfidence(dateDiffDays, windowDays int, amountDiff, band decimal.Decimal) float64 {
	dateRatio := 0.0
	if windowDays > 0 {
		dateRatio = clamp(float64(dateDiffDays)/float64(windowDays), 0, 1)
	}
	c := 1 - amountPassDateWeight*dateRatio - amountPassDiffWeight*ratio(amountDiff, band)
	return clamp(c, confidenceFloor, 1)
}

// splitConfidence scores a split group. It never exceeds splitCeiling.
func splitConfidence(amountDiff, band decimal.Decimal) float64 {
	return clamp(splitCeiling-splitDiffWeight*ratio(amountDiff, band), confidenceFloor, splitCeiling)
}
