package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/talgya/shopfloor/internal/agents"
	"github.com/talgya/shopfloor/internal/grid"
	"github.com/talgya/shopfloor/internal/pricing"
	"github.com/talgya/shopfloor/internal/progression"
	"github.com/talgya/shopfloor/internal/shop"
)

func newTestSim(t *testing.T, cfg Config) *Simulation {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSimulation(cfg, progression.DefaultTree(), NewState(), log)
}

func advanceSeconds(sim *Simulation, seconds float64) {
	for elapsed := 0.0; elapsed < seconds; elapsed += 0.05 {
		sim.Advance(0.05)
	}
}

func TestOrderDeliversExactlyOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OrderLeadS = 10.0
	sim := newTestSim(t, cfg)
	st := sim.State()

	order, ok := sim.PlaceOrder(5, 0, nil)
	if !ok {
		t.Fatalf("order rejected")
	}
	if st.Money != StartMoney-order.Cost {
		t.Fatalf("money = %d after ordering, want %d", st.Money, StartMoney-order.Cost)
	}

	// Just shy of the lead time nothing arrives.
	advanceSeconds(sim, 9.5)
	if got := st.Inventory.Count(shop.ProductBooster); got != StartPacks {
		t.Fatalf("boosters = %d before delivery, want %d", got, StartPacks)
	}

	advanceSeconds(sim, 1.0)
	if got := st.Inventory.Count(shop.ProductBooster); got != StartPacks+5 {
		t.Fatalf("boosters = %d after delivery, want %d", got, StartPacks+5)
	}
	if len(st.PendingOrders) != 0 {
		t.Fatalf("%d orders still pending", len(st.PendingOrders))
	}

	// More time must not re-apply the order.
	advanceSeconds(sim, 20)
	if got := st.Inventory.Count(shop.ProductBooster); got != StartPacks+5 {
		t.Fatalf("boosters = %d, order applied twice", got)
	}
}

func TestPauseFreezesClockAndDeliveries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OrderLeadS = 1.0
	sim := newTestSim(t, cfg)
	st := sim.State()

	if _, ok := sim.PlaceOrder(2, 0, nil); !ok {
		t.Fatalf("order rejected")
	}
	sim.SetPaused(true)
	advanceSeconds(sim, 5)

	if st.TimeSeconds != 0 {
		t.Fatalf("clock moved while paused: %v", st.TimeSeconds)
	}
	if got := st.Inventory.Count(shop.ProductBooster); got != StartPacks {
		t.Fatalf("delivery landed while paused: %d boosters", got)
	}

	sim.SetPaused(false)
	advanceSeconds(sim, 2)
	if got := st.Inventory.Count(shop.ProductBooster); got != StartPacks+2 {
		t.Fatalf("boosters = %d after resume, want %d", got, StartPacks+2)
	}
}

func TestPlaceOrderRejectsUnaffordable(t *testing.T) {
	sim := newTestSim(t, DefaultConfig())
	sim.State().Money = 3 // a booster case costs 2 apiece

	if _, ok := sim.PlaceOrder(2, 0, nil); ok {
		t.Fatalf("unaffordable order accepted")
	}
	if _, ok := sim.PlaceOrder(0, 0, nil); ok {
		t.Fatalf("empty order accepted")
	}
	if sim.State().Money != 3 {
		t.Fatalf("rejected orders touched the till: %d", sim.State().Money)
	}
}

func TestFixtureBuyPlaceAndRefund(t *testing.T) {
	sim := newTestSim(t, DefaultConfig())
	st := sim.State()

	if !sim.TryBuyFixture(shop.KindShelf) {
		t.Fatalf("shelf purchase rejected")
	}
	if st.Money != StartMoney-250 {
		t.Fatalf("money = %d after shelf, want %d", st.Money, StartMoney-250)
	}

	// The counter tile is occupied; the fixture must bounce back.
	if sim.TryPlaceObject(shop.KindShelf, grid.Tile{X: 10, Y: 7}) {
		t.Fatalf("placed a shelf on top of the counter")
	}
	if got := st.Fixtures.Count(shop.KindShelf); got != 1 {
		t.Fatalf("failed placement ate the fixture, count %d", got)
	}

	if !sim.TryPlaceObject(shop.KindShelf, grid.Tile{X: 4, Y: 4}) {
		t.Fatalf("open-tile placement rejected")
	}
	if got := st.Fixtures.Count(shop.KindShelf); got != 0 {
		t.Fatalf("placed fixture still in the pool, count %d", got)
	}

	if !sim.RemoveObject(grid.Tile{X: 4, Y: 4}) {
		t.Fatalf("removal rejected")
	}
	if got := st.Fixtures.Count(shop.KindShelf); got != 1 {
		t.Fatalf("removed fixture not returned, count %d", got)
	}
}

func TestPurchaseMovesMoneyAndXP(t *testing.T) {
	sim := newTestSim(t, DefaultConfig())
	st := sim.State()
	shelf := grid.Tile{X: 4, Y: 4}
	if !st.Layout.Place(shop.KindShelf, shelf) {
		t.Fatalf("shelf placement failed")
	}
	if moved := sim.RestockShelf(shelf, shop.ProductBooster, 2); moved != 2 {
		t.Fatalf("restocked %d, want 2", moved)
	}

	before := st.Money
	if !sim.executePurchase(agents.PurchaseIntent{Shelf: shelf, Product: shop.ProductBooster}) {
		t.Fatalf("sale failed on a stocked shelf")
	}
	price, _ := sim.EffectivePrice(shop.ProductBooster)
	if st.Money != before+price {
		t.Fatalf("money = %d, want %d", st.Money, before+price)
	}
	if want := pricing.XPFromSale(price, 0); st.Prog.XP != want {
		t.Fatalf("shopkeeper XP = %d, want %d", st.Prog.XP, want)
	}
	if st.Staff.XP == 0 {
		t.Fatalf("sale awarded no staff XP")
	}
	if m := st.Analytics.Day(st.Day); m.Revenue != price {
		t.Fatalf("analytics revenue = %d, want %d", m.Revenue, price)
	}
}

func TestHaggleRanksRaiseEffectivePrices(t *testing.T) {
	sim := newTestSim(t, DefaultConfig())
	st := sim.State()

	st.Prog.Level = 10
	st.Prog.SkillPoints = 5
	for i := 0; i < 5; i++ {
		if ok, reason := sim.RankUpSkill("haggle"); !ok {
			t.Fatalf("haggle rank %d rejected: %s", i+1, reason)
		}
	}

	// Five ranks of +1% on an 18-dollar deck rounds up to 19.
	price, ok := sim.EffectivePrice(shop.ProductDeck)
	if !ok || price != 19 {
		t.Fatalf("deck price = %d (ok=%v), want 19", price, ok)
	}
}

func TestRankUpReportsTheBlockingGate(t *testing.T) {
	sim := newTestSim(t, DefaultConfig())

	if ok, reason := sim.RankUpSkill("haggle"); ok || reason != "No skill points." {
		t.Fatalf("rank-up with no points: ok=%v reason=%q", ok, reason)
	}
	if ok, reason := sim.RankUpSkill("nope"); ok || reason != "Unknown skill." {
		t.Fatalf("unknown skill: ok=%v reason=%q", ok, reason)
	}
}

func TestMarkupModeRepricesFromWholesale(t *testing.T) {
	sim := newTestSim(t, DefaultConfig())

	sim.SetPricingMode(pricing.ModeMarkup)
	sim.SetMarkupPct(shop.ProductBooster, 0.5)
	if price, _ := sim.EffectivePrice(shop.ProductBooster); price != 3 {
		t.Fatalf("booster at 50%% markup = %d, want 3", price)
	}

	sim.SetPricingMode(pricing.ModeAbsolute)
	if price, _ := sim.EffectivePrice(shop.ProductBooster); price != 4 {
		t.Fatalf("absolute booster price = %d, want 4", price)
	}
}

func TestOpenPackConsumesAndGrantsCards(t *testing.T) {
	sim := newTestSim(t, DefaultConfig())
	st := sim.State()
	startCards := st.Collection.Total()

	for i := 0; i < StartPacks; i++ {
		pulls, ok := sim.OpenPack()
		if !ok {
			t.Fatalf("pack %d refused with sealed stock available", i+1)
		}
		if len(pulls) != 5 {
			t.Fatalf("pack yielded %d cards, want 5", len(pulls))
		}
	}
	if _, ok := sim.OpenPack(); ok {
		t.Fatalf("opened a pack with none in stock")
	}
	if got := st.Collection.Total(); got != startCards+StartPacks*5 {
		t.Fatalf("collection = %d cards, want %d", got, startCards+StartPacks*5)
	}
	if m := st.Analytics.Day(st.Day); m.PacksOpened != StartPacks {
		t.Fatalf("analytics packs = %d, want %d", m.PacksOpened, StartPacks)
	}
}

func TestSellBackCardSparesDeckCopies(t *testing.T) {
	sim := newTestSim(t, DefaultConfig())
	st := sim.State()

	st.Collection.Add("r1", 2)
	st.Deck.Add("r1")

	if _, ok := sim.SellBackCard("r1", 2); ok {
		t.Fatalf("sold a deck-committed copy")
	}
	payout, ok := sim.SellBackCard("r1", 1)
	if !ok {
		t.Fatalf("free copy refused to sell")
	}
	want := pricing.SellbackUnitPrice(pricing.MarketBuyPriceSingle(shop.RarityRare), pricing.SellbackFactor)
	if payout != want {
		t.Fatalf("payout = %d, want %d", payout, want)
	}
	if got := st.Collection.Count("r1"); got != 1 {
		t.Fatalf("collection holds %d copies of r1, want the deck's 1", got)
	}
}

func TestDayNightCycleProducesSummary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DayDurationS = 2.0
	cfg.NightDurationS = 1.0
	sim := newTestSim(t, cfg)
	st := sim.State()

	advanceSeconds(sim, 2.2)
	if st.Phase != PhaseNight {
		t.Fatalf("phase = %s after day length, want night", st.Phase.Key())
	}
	if st.LastSummary == nil || st.LastSummary.Day != 1 {
		t.Fatalf("day close produced no summary: %+v", st.LastSummary)
	}
	if st.LastSummary.MoneyClose != st.Money {
		t.Fatalf("summary money = %d, want %d", st.LastSummary.MoneyClose, st.Money)
	}

	advanceSeconds(sim, 1.2)
	if st.Phase != PhaseDay || st.Day != 2 {
		t.Fatalf("after night: phase=%s day=%d, want day 2", st.Phase.Key(), st.Day)
	}
}

func TestNormalizeRepairsHostileState(t *testing.T) {
	st := NewState()
	st.Money = -50
	st.Day = 0
	st.Inventory = nil
	st.Staff = nil
	st.PendingOrders = append(st.PendingOrders, nil)
	st.Customers = append(st.Customers, nil)

	st.Normalize(progression.DefaultTree())

	if st.Money != 0 || st.Day != 1 {
		t.Fatalf("money/day not clamped: %d/%d", st.Money, st.Day)
	}
	if st.Inventory == nil || st.Staff == nil {
		t.Fatalf("nil sections not rebuilt")
	}
	if len(st.PendingOrders) != 0 {
		t.Fatalf("nil order survived normalize")
	}
	if st.Customers != nil {
		t.Fatalf("customers should not survive a load")
	}
}
