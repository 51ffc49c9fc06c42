package lotto

// Allocation is the outcome of the prize-pool algorithm for one draw.
type Allocation struct {
	Pot             int64
	PayoutPot       int64
	Tier1Allocation int64
	Pools           [Tiers]int64
	Jackpot         int64
}

// AllocatePrizes computes the tier pools for a draw with totalBets bets
// and the given winner counts (index 0 is tier 1). jackpot is the reserve
// before the draw and first marks the first draw ever conducted.
//
// All products are truncated toward zero. Allocation.Jackpot holds the
// reserve carried into the next draw.
func AllocatePrizes(totalBets int, winners [Tiers]int, jackpot int64, first bool) Allocation {
	a := Allocation{Pot: PotPerBet * int64(totalBets)}
	a.PayoutPot = share(a.Pot, payoutShare)
	a.Tier1Allocation = share(a.PayoutPot, tier1Share)

	a.Pools[Tier2.index()] = share(a.PayoutPot, tier2Share)
	a.Pools[Tier4.index()] = int64(winners[Tier4.index()]) * Tier4Prize

	rest := a.PayoutPot - a.Tier1Allocation - a.Pools[Tier2.index()] - a.Pools[Tier4.index()]
	a.Pools[Tier3.index()] = max(rest, int64(winners[Tier3.index()])*Tier3Floor)

	switch {
	case first:
		a.Pools[Tier1.index()] = jackpot
		a.Jackpot = jackpot
	case winners[Tier1.index()] == 0:
		a.Jackpot = jackpot + a.Tier1Allocation
		a.Pools[Tier1.index()] = a.Jackpot
	default:
		a.Pools[Tier1.index()] = max(a.Tier1Allocation+jackpot, JackpotFloor)
		a.Jackpot = JackpotFloor
	}
	return a
}
