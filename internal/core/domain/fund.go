package domain

import "github.com/shopspring/decimal"

// FundCode identifies one of the underlying funds a goal invests in.
type FundCode string

const (
	FundXUMMF FundCode = "XUMMF"
	FundXUBF  FundCode = "XUBF"
	FundXUDEF FundCode = "XUDEF"
	FundXUREF FundCode = "XUREF"
)

// FundCodes lists the funds in reporting order.
var FundCodes = []FundCode{FundXUMMF, FundXUBF, FundXUDEF, FundXUREF}

// fundRoundingTolerance is the largest gap between the fund split and the
// transaction total that is still attributed to rounding.
var fundRoundingTolerance = decimal.NewFromInt(1)

// FundBreakdown is the per-fund distribution of a transaction amount.
type FundBreakdown struct {
	XUMMF decimal.Decimal `json:"XUMMF"`
	XUBF  decimal.Decimal `json:"XUBF"`
	XUDEF decimal.Decimal `json:"XUDEF"`
	XUREF decimal.Decimal `json:"XUREF"`
}

// Amount returns the share recorded for the given fund.
func (f FundBreakdown) Amount(code FundCode) decimal.Decimal {
	switch code {
	case FundXUMMF:
		return f.XUMMF
	case FundXUBF:
		return f.XUBF
	case FundXUDEF:
		return f.XUDEF
	case FundXUREF:
		return f.XUREF
	default:
		return decimal.Zero
	}
}

// Total sums the four fund amounts.
func (f FundBreakdown) Total() decimal.Decimal {
	return f.XUMMF.Add(f.XUBF).Add(f.XUDEF).Add(f.XUREF)
}

// Consistent reports whether the fund split adds up to total within rounding.
func (f FundBreakdown) Consistent(total decimal.Decimal) bool {
	return f.Total().Sub(total).Abs().LessThanOrEqual(fundRoundingTolerance)
}
