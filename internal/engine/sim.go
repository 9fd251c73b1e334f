package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/dustin/go-humanize"

	"github.com/talgya/shopfloor/internal/agents"
	"github.com/talgya/shopfloor/internal/grid"
	"github.com/talgya/shopfloor/internal/pricing"
	"github.com/talgya/shopfloor/internal/progression"
	"github.com/talgya/shopfloor/internal/shop"
)

// Config is the tuning surface for a simulation run.
type Config struct {
	DayDurationS   float64
	NightDurationS float64
	OrderLeadS     float64
	Seed           int64
	Entrance       grid.Tile
	StaffStart     grid.Tile
}

func DefaultConfig() Config {
	return Config{
		DayDurationS:   300.0,
		NightDurationS: 60.0,
		OrderLeadS:     30.0,
		Seed:           1,
		Entrance:       grid.Tile{X: 1, Y: shop.GridHeight - 1},
		StaffStart:     grid.Tile{X: 1, Y: 5},
	}
}

// maxStepS clamps a tick's delta so a stalled frame can't teleport agents
// or skip phase transitions.
const maxStepS = 1.0 / 20.0

// Simulation owns the state and is the only writer. Advance runs one
// cooperative tick; everything else is a mutator meant to be called from
// the same goroutine (the loop routes collaborator commands here).
type Simulation struct {
	cfg     Config
	tree    *progression.Tree
	rng     *rand.Rand
	spawner *agents.Spawner
	log     *slog.Logger

	state *State
}

// NewSimulation wires a simulation around existing state (fresh or loaded).
// The skill tree is injected: the simulation never reaches for a global.
func NewSimulation(cfg Config, tree *progression.Tree, st *State, log *slog.Logger) *Simulation {
	if log == nil {
		log = slog.Default()
	}
	st.Normalize(tree)
	return &Simulation{
		cfg:     cfg,
		tree:    tree,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		spawner: agents.NewSpawner(cfg.Seed),
		log:     log,
		state:   st,
	}
}

// State exposes the underlying state for snapshotting and persistence. Only
// touch it from the simulation goroutine.
func (sim *Simulation) State() *State { return sim.state }

// Tree returns the injected skill tree definition.
func (sim *Simulation) Tree() *progression.Tree { return sim.tree }

// Modifiers is the current aggregate of skill bonuses.
func (sim *Simulation) Modifiers() progression.Modifiers {
	return sim.state.Skills.Modifiers(sim.tree)
}

// EffectivePrice is the modifier-adjusted price a customer pays right now.
func (sim *Simulation) EffectivePrice(p shop.Product) (int, bool) {
	mods := sim.Modifiers()
	return pricing.EffectiveSalePrice(&sim.state.Prices, &sim.state.Pricing, p, mods.SellPricePct)
}

// Advance runs one tick. Order within the tick is fixed: pending orders
// deliver, the phase clock moves, staff work, customers move and buy.
func (sim *Simulation) Advance(dt float64) {
	if sim.state.Paused || dt <= 0 {
		return
	}
	if dt > maxStepS {
		dt = maxStepS
	}
	st := sim.state
	st.TimeSeconds += dt

	sim.processPendingOrders()
	sim.advancePhase(dt)
	st.Staff.Update(dt, sim.staffContext())
	sim.updateCustomers(dt)
}

// processPendingOrders delivers every order whose time has come. Each order
// applies exactly once and leaves the queue.
func (sim *Simulation) processPendingOrders() {
	st := sim.state
	remaining := st.PendingOrders[:0]
	for _, o := range st.PendingOrders {
		if o.DeliverAt > st.TimeSeconds {
			remaining = append(remaining, o)
			continue
		}
		o.Apply(st.Inventory)
		if o.Boosters > 0 {
			st.Analytics.RecordOrderDelivered(st.Day, shop.ProductBooster, o.Boosters)
		}
		if o.Decks > 0 {
			st.Analytics.RecordOrderDelivered(st.Day, shop.ProductDeck, o.Decks)
		}
		for _, r := range shop.Rarities {
			if n := o.Singles[r]; n > 0 {
				st.Analytics.RecordOrderDelivered(st.Day, shop.SingleOf(r), n)
			}
		}
		st.Analytics.Log(st.Day, st.TimeSeconds, "order",
			fmt.Sprintf("Supplier delivery: %d units", o.Units()))
		sim.log.Info("order delivered", "order", o.ID, "units", o.Units())
	}
	st.PendingOrders = remaining
}

func (sim *Simulation) advancePhase(dt float64) {
	st := sim.state
	st.PhaseTimer += dt
	switch st.Phase {
	case PhaseDay:
		if st.PhaseTimer >= sim.cfg.DayDurationS {
			st.PhaseTimer -= sim.cfg.DayDurationS
			st.Phase = PhaseNight
			sim.closeDay()
		}
	case PhaseNight:
		if st.PhaseTimer >= sim.cfg.NightDurationS {
			st.PhaseTimer -= sim.cfg.NightDurationS
			st.Phase = PhaseDay
			st.Day++
			sim.spawner.ResetDay()
			st.Analytics.Log(st.Day, st.TimeSeconds, "day", fmt.Sprintf("Day %d begins", st.Day))
		}
	}
}

// closeDay snapshots the day's metrics into the summary and logs the report.
func (sim *Simulation) closeDay() {
	st := sim.state
	m := st.Analytics.Day(st.Day)
	summary := &DaySummary{
		Day:         st.Day,
		Visitors:    m.Visitors,
		Revenue:     m.Revenue,
		PacksOpened: m.PacksOpened,
		MoneyClose:  st.Money,
	}
	for _, n := range m.UnitsSold {
		summary.UnitsSold += n
	}
	for _, n := range m.Restocked {
		summary.Restocked += n
	}
	st.LastSummary = summary
	st.Analytics.Log(st.Day, st.TimeSeconds, "day",
		fmt.Sprintf("Day %d closed: $%s revenue, %d visitors", st.Day, humanize.Comma(int64(m.Revenue)), m.Visitors))
	sim.log.Info("day closed",
		"day", st.Day,
		"visitors", summary.Visitors,
		"revenue", summary.Revenue,
		"units_sold", summary.UnitsSold,
		"money", st.Money,
	)
}

func (sim *Simulation) staffContext() *agents.StaffContext {
	st := sim.state
	return &agents.StaffContext{
		Layout:     st.Layout,
		Inventory:  st.Inventory,
		Collection: st.Collection,
		Deck:       st.Deck,
		OnRestock: func(plan agents.RestockPlan, moved int) {
			st.Analytics.RecordRestock(st.Day, plan.Product, moved)
			progression.AwardStaffXP(&st.Staff.XP, progression.StaffEventRestock, moved, plan.Product)
		},
	}
}

func (sim *Simulation) customerContext() *agents.CustomerContext {
	st := sim.state
	return &agents.CustomerContext{
		Layout:     st.Layout,
		Rng:        sim.rng,
		Entrance:   sim.cfg.Entrance,
		PriceOf:    sim.EffectivePrice,
		OnPurchase: sim.executePurchase,
	}
}

// executePurchase is the sale transaction: one unit off the shelf, money in
// the till, analytics, XP, and a heads-up to the restocker. All or nothing.
func (sim *Simulation) executePurchase(intent agents.PurchaseIntent) bool {
	st := sim.state
	price, ok := sim.EffectivePrice(intent.Product)
	if !ok {
		return false
	}
	res, ok := st.Layout.Sell(intent.Shelf, sim.rng)
	if !ok {
		return false
	}
	st.Money += price
	shelfKey := intent.Shelf.Key()
	st.Analytics.RecordSale(st.Day, res.Product, 1, price, shelfKey, res.BecameEmpty)
	progression.AwardStaffXP(&st.Staff.XP, progression.StaffEventSale, price, res.Product)
	mods := sim.Modifiers()
	st.Prog.AddXP(pricing.XPFromSale(price, mods.SalesXPPct))
	st.Staff.NotifyShelfChange(intent.Shelf)
	st.Analytics.Log(st.Day, st.TimeSeconds, "sale",
		fmt.Sprintf("Sold %s for $%s", res.Product.Key(), humanize.Comma(int64(price))))
	return true
}

func (sim *Simulation) updateCustomers(dt float64) {
	st := sim.state
	ctx := sim.customerContext()

	if st.Phase == PhaseDay {
		sim.spawner.Update(st.Day, st.PhaseTimer, sim.cfg.DayDurationS, len(st.Customers), func() bool {
			c := agents.NewCustomer(ctx)
			if c == nil {
				return false
			}
			st.Customers = append(st.Customers, c)
			st.Analytics.RecordVisitor(st.Day)
			return true
		})
	}

	alive := st.Customers[:0]
	for _, c := range st.Customers {
		c.Update(dt, ctx)
		if !c.Done() {
			alive = append(alive, c)
		}
	}
	st.Customers = alive
}
