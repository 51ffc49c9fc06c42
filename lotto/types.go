package lotto

// Amounts are int64 minor currency units (1/100 of the major unit).
const (
	// BetPrice is the price of one bet for one draw.
	BetPrice int64 = 3_00

	// PotPerBet is the share of every bet that enters the draw pot.
	PotPerBet int64 = 2_40

	// JackpotFloor seeds the jackpot and is the value it resets to after a win.
	JackpotFloor int64 = 2_000_000_00

	// Tier4Prize is the fixed prize for every bet hitting three numbers.
	Tier4Prize int64 = 24_00

	// Tier3Floor is the guaranteed prize for every bet hitting four numbers.
	Tier3Floor int64 = 36_00

	// RedemptionTaxThreshold triggers the winnings tax when reached by a single prize.
	RedemptionTaxThreshold int64 = 2_280_00

	// IssuanceTaxDivisor makes the issuance tax 20% of the ticket price.
	IssuanceTaxDivisor int64 = 5

	// RedemptionTaxPercent is withheld from the total winnings above the threshold.
	RedemptionTaxPercent int64 = 10
)

const (
	NumbersPerBet = 6
	MinNumber     = 1
	MaxNumber     = 49
	MaxBets       = 8
	MaxDraws      = 10
	Tiers         = 4

	// nonceLimit bounds identifier nonces to nine digits.
	nonceLimit = 1_000_000_000
)

// Buyer pays for tickets. Debit must be atomic: it either takes the whole
// amount or nothing and reports which.
type Buyer interface {
	Balance() int64
	Debit(amount int64) bool
}

// Recipient receives winnings.
type Recipient interface {
	Credit(amount int64)
}

// Holder is a player that both buys and redeems.
type Holder interface {
	Buyer
	Recipient
}
