package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmountConfidence_Bounds(t *testing.T) {
	band := decimal.NewFromInt(1000)
	assert.Equal(t, 1.0, amountConfidence(0, 30, decimal.Zero, band))
	assert.Equal(t, 0.5, amountConfidence(30, 30, band, band))
	assert.Equal(t, 0.5, amountConfidence(90, 30, decimal.NewFromInt(5000), band), "values past the limits stay on the floor")
}

func TestAmountConfidence_Monotonic(t *testing.T) {
	band := decimal.NewFromInt(1000)
	prev := 1.1
	for days := 0; days <= 30; days++ {
		c := amountConfidence(days, 30, decimal.NewFromInt(200), band)
		assert.LessOrEqual(t, c, prev, "confidence must not rise as dates drift apart (day %d)", days)
		prev = c
	}

	prev = 1.1
	for diff := int64(0); diff <= 1000; diff += 50 {
		c := amountConfidence(5, 30, decimal.NewFromInt(diff), band)
		assert.LessOrEqual(t, c, prev, "confidence must not rise as amounts drift apart (diff %d)", diff)
		prev = c
	}
}

func TestSplitConfidence_BelowAmountPass(t *testing.T) {
	band := decimal.NewFromInt(1000)
	assert.Equal(t, 0.8, splitConfidence(decimal.Zero, band))
	assert.Equal(t, 0.5, splitConfidence(band, band))
	assert.Less(t, splitConfidence(decimal.Zero, band), amountConfidence(0, 30, decimal.Zero, band))
}

func TestRatio_ZeroBand(t *testing.T) {
	assert.Equal(t, 0.0, ratio(decimal.Zero, decimal.Zero))
	assert.Equal(t, 1.0, ratio(decimal.NewFromInt(1), decimal.Zero))
}
