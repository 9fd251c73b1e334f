package pricing

import (
	"math"

	"github.com/talgya/shopfloor/internal/shop"
)

// Economy rules that sit on top of raw pricing: sellback, fixture costs and
// the shopkeeper XP awards tied to money changing hands.

const (
	// SellbackFactor is the fraction of market price paid when the player
	// liquidates stock back to the market.
	SellbackFactor = 0.6

	xpPerSaleDollar = 2.0
	battleWinBaseXP = 120
)

var fixtureBaseCosts = map[shop.ObjectKind]int{
	shop.KindShelf:   250,
	shop.KindCounter: 800,
	shop.KindPoster:  120,
}

// SellbackUnitPrice is the per-unit payout for selling stock back, floor 1.
func SellbackUnitPrice(marketPrice int, factor float64) int {
	f := math.Min(1.0, math.Max(0.0, factor))
	return max(1, int(math.Round(float64(marketPrice)*f)))
}

// SellableCopies is how many copies of a card can be liquidated without
// touching the ones committed to the active deck.
func SellableCopies(owned, inDeck int) int {
	return max(0, owned-inDeck)
}

// FixtureCost prices a fixture purchase after the shopkeeper's discount
// modifier, clamped to at most 95% off and never below a dollar.
func FixtureCost(kind shop.ObjectKind, discountPct float64) int {
	base, ok := fixtureBaseCosts[kind]
	if !ok {
		base = fixtureBaseCosts[shop.KindShelf]
	}
	d := math.Min(0.95, math.Max(0.0, discountPct))
	return max(1, int(math.Round(float64(base)*(1.0-d))))
}

// XPFromSale converts sale revenue into shopkeeper XP, boosted by the sales
// XP modifier (never reduced by a negative one).
func XPFromSale(revenue int, salesXPPct float64) int {
	if revenue <= 0 {
		return 0
	}
	boost := 1.0 + math.Max(0.0, salesXPPct)
	return int(math.Round(float64(revenue) * xpPerSaleDollar * boost))
}

// XPFromBattleWin converts a battle win into shopkeeper XP.
func XPFromBattleWin(battleXPPct float64) int {
	boost := 1.0 + math.Max(0.0, battleXPPct)
	return int(math.Round(battleWinBaseXP * boost))
}
