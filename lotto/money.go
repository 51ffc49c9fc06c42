package lotto

import "github.com/shopspring/decimal"

var (
	payoutShare = decimal.RequireFromString("0.51")
	tier1Share  = decimal.RequireFromString("0.44")
	tier2Share  = decimal.RequireFromString("0.08")
)

// share returns amount*rate truncated toward zero.
func share(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Truncate(0).IntPart()
}

// percent returns amount*p/100 truncated toward zero.
func percent(amount, p int64) int64 {
	return share(amount, decimal.New(p, -2))
}

// ToMajor converts minor units to a decimal in major units.
func ToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FromMajor converts a major-unit decimal to minor units, truncating sub-minor digits.
func FromMajor(major decimal.Decimal) int64 {
	return major.Shift(2).Truncate(0).IntPart()
}

// FormatAmount renders minor units as a fixed two-decimal major amount.
func FormatAmount(minor int64) string {
	return ToMajor(minor).StringFixed(2)
}
