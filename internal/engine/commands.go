package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/talgya/shopfloor/internal/analytics"
	"github.com/talgya/shopfloor/internal/cards"
	"github.com/talgya/shopfloor/internal/grid"
	"github.com/talgya/shopfloor/internal/pricing"
	"github.com/talgya/shopfloor/internal/progression"
	"github.com/talgya/shopfloor/internal/shop"
)

// Player/collaborator-facing mutators. Ordinary rejection (not enough money,
// occupied tile, bad product) is a false/zero return, never an error: these
// are expected outcomes, not faults.

// SetPaused freezes or resumes the clock. While paused nothing moves and no
// order delivers.
func (sim *Simulation) SetPaused(paused bool) {
	sim.state.Paused = paused
}

// TryBuyFixture purchases a fixture into the unplaced pool at the
// discount-adjusted price.
func (sim *Simulation) TryBuyFixture(kind shop.ObjectKind) bool {
	st := sim.state
	cost := pricing.FixtureCost(kind, sim.Modifiers().FixtureDiscountPct)
	if st.Money < cost {
		return false
	}
	st.Money -= cost
	st.Fixtures.Add(kind, 1)
	st.Analytics.Log(st.Day, st.TimeSeconds, "fixture",
		fmt.Sprintf("Bought %s for $%s", kind.Key(), humanize.Comma(int64(cost))))
	return true
}

// TryPlaceObject consumes an owned fixture and puts it on the floor. A
// failed placement refunds the fixture.
func (sim *Simulation) TryPlaceObject(kind shop.ObjectKind, t grid.Tile) bool {
	st := sim.state
	if !st.Fixtures.ConsumeForPlace(kind) {
		return false
	}
	if !st.Layout.Place(kind, t) {
		st.Fixtures.Add(kind, 1)
		return false
	}
	return true
}

// RemoveObject takes a fixture off the floor back into the unplaced pool.
// Any shelf stock on it is discarded with the shelf.
func (sim *Simulation) RemoveObject(t grid.Tile) bool {
	st := sim.state
	obj, ok := st.Layout.ObjectAt(t)
	if !ok {
		return false
	}
	if !st.Layout.RemoveAt(t) {
		return false
	}
	st.Fixtures.Add(obj.Kind, 1)
	return true
}

// RestockShelf hand-stocks a shelf from the back room, returning units
// moved. The restocker is notified so its plans stay fresh.
func (sim *Simulation) RestockShelf(t grid.Tile, p shop.Product, amount int) int {
	st := sim.state
	avail := st.Inventory.Count(p)
	if avail <= 0 {
		return 0
	}
	moved := st.Layout.StockBulk(t, p, min(amount, avail))
	if moved <= 0 {
		return 0
	}
	st.Inventory.Remove(p, moved)
	st.Analytics.RecordRestock(st.Day, p, moved)
	st.Staff.NotifyShelfChange(t)
	return moved
}

// ListCardOnShelf puts one collection copy up for sale on a listed shelf.
// Copies the deck depends on stay put.
func (sim *Simulation) ListCardOnShelf(t grid.Tile, cardID string) bool {
	st := sim.state
	r, ok := cards.RarityOf(cardID)
	if !ok {
		return false
	}
	if pricing.SellableCopies(st.Collection.Count(cardID), st.Deck.Count(cardID)) <= 0 {
		return false
	}
	if !st.Layout.StockCard(t, cardID, r) {
		return false
	}
	st.Collection.Remove(cardID, 1)
	st.Analytics.RecordRestock(st.Day, shop.SingleOf(r), 1)
	st.Staff.NotifyShelfChange(t)
	return true
}

// SetPrice updates an absolute retail price.
func (sim *Simulation) SetPrice(p shop.Product, price int) bool {
	return sim.state.Prices.Set(p, price)
}

// SetMarkupPct updates a per-product markup (clamped to 0%..200%).
func (sim *Simulation) SetMarkupPct(p shop.Product, pct float64) {
	sim.state.Pricing.SetMarkupPct(p, pct)
}

// SetPricingMode flips between absolute and markup pricing.
func (sim *Simulation) SetPricingMode(mode pricing.Mode) {
	sim.state.Pricing.Mode = mode
}

// PlaceOrder books a wholesale order for delivery after the lead time.
// Rejects empty orders and orders the till can't cover.
func (sim *Simulation) PlaceOrder(boosters, decks int, singles map[shop.Rarity]int) (*shop.Order, bool) {
	st := sim.state
	cost := 0
	addLine := func(p shop.Product, qty int) bool {
		if qty <= 0 {
			return true
		}
		line, ok := pricing.WholesaleOrderTotal(p, qty)
		if !ok {
			return false
		}
		cost += line
		return true
	}
	if !addLine(shop.ProductBooster, boosters) || !addLine(shop.ProductDeck, decks) {
		return nil, false
	}
	for r, qty := range singles {
		if !addLine(shop.SingleOf(r), qty) {
			return nil, false
		}
	}

	order := shop.NewOrder(boosters, decks, singles, cost, st.Day, st.TimeSeconds+sim.cfg.OrderLeadS)
	if order.Units() <= 0 || cost <= 0 {
		return nil, false
	}
	if st.Money < cost {
		return nil, false
	}
	st.Money -= cost

	if order.Boosters > 0 {
		st.Analytics.RecordOrderPlaced(st.Day, shop.ProductBooster, order.Boosters)
	}
	if order.Decks > 0 {
		st.Analytics.RecordOrderPlaced(st.Day, shop.ProductDeck, order.Decks)
	}
	for _, r := range shop.Rarities {
		if n := order.Singles[r]; n > 0 {
			st.Analytics.RecordOrderPlaced(st.Day, shop.SingleOf(r), n)
		}
	}
	st.PendingOrders = append(st.PendingOrders, order)
	st.Analytics.Log(st.Day, st.TimeSeconds, "order",
		fmt.Sprintf("Ordered %d units for $%s", order.Units(), humanize.Comma(int64(cost))))
	return order, true
}

// OpenPack cracks one sealed booster into the collection.
func (sim *Simulation) OpenPack() ([]string, bool) {
	st := sim.state
	if !st.Inventory.Remove(shop.ProductBooster, 1) {
		return nil, false
	}
	pulls := cards.OpenBooster(sim.rng)
	for _, id := range pulls {
		st.Collection.Add(id, 1)
	}
	st.Analytics.RecordPackOpened(st.Day, 1)
	progression.AwardStaffXP(&st.Staff.XP, progression.StaffEventPackOpen, 1, shop.ProductBooster)
	st.Analytics.Log(st.Day, st.TimeSeconds, "pack", fmt.Sprintf("Opened a booster: %d cards", len(pulls)))
	return pulls, true
}

// SellBackSingles liquidates anonymous singles to the market at the
// sellback rate. Returns the payout.
func (sim *Simulation) SellBackSingles(r shop.Rarity, qty int) (int, bool) {
	st := sim.state
	if qty <= 0 || !st.Inventory.Remove(shop.SingleOf(r), qty) {
		return 0, false
	}
	unit := pricing.SellbackUnitPrice(pricing.MarketBuyPriceSingle(r), pricing.SellbackFactor)
	payout := unit * qty
	st.Money += payout
	st.Analytics.RecordSellback(st.Day, qty)
	st.Analytics.Log(st.Day, st.TimeSeconds, "sellback",
		fmt.Sprintf("Sold back %d %s singles for $%s", qty, r.Key(), humanize.Comma(int64(payout))))
	return payout, true
}

// SellBackCard liquidates owned copies of a specific card, never touching
// the copies the deck is built on.
func (sim *Simulation) SellBackCard(cardID string, qty int) (int, bool) {
	st := sim.state
	r, ok := cards.RarityOf(cardID)
	if !ok || qty <= 0 {
		return 0, false
	}
	sellable := pricing.SellableCopies(st.Collection.Count(cardID), st.Deck.Count(cardID))
	if sellable < qty {
		return 0, false
	}
	if !st.Collection.Remove(cardID, qty) {
		return 0, false
	}
	unit := pricing.SellbackUnitPrice(pricing.MarketBuyPriceSingle(r), pricing.SellbackFactor)
	payout := unit * qty
	st.Money += payout
	st.Analytics.RecordSellback(st.Day, qty)
	return payout, true
}

// RankUpSkill spends a skill point, reporting the gate that blocked it.
func (sim *Simulation) RankUpSkill(skillID string) (bool, string) {
	st := sim.state
	if ok, reason := st.Skills.CanRankUp(sim.tree, skillID, st.Prog); !ok {
		return false, reason
	}
	st.Skills.RankUp(sim.tree, skillID, st.Prog)
	return true, "OK"
}

// RestockSuggestions is the current forecaster advice.
func (sim *Simulation) RestockSuggestions() []analytics.Suggestion {
	st := sim.state
	return st.Analytics.ComputeRestockSuggestions(
		st.Day, st.Inventory, st.Layout,
		sim.cfg.DayDurationS, sim.cfg.OrderLeadS, analytics.DefaultMaxSuggestions)
}
