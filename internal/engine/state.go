package engine

import (
	"github.com/talgya/shopfloor/internal/agents"
	"github.com/talgya/shopfloor/internal/analytics"
	"github.com/talgya/shopfloor/internal/cards"
	"github.com/talgya/shopfloor/internal/grid"
	"github.com/talgya/shopfloor/internal/pricing"
	"github.com/talgya/shopfloor/internal/progression"
	"github.com/talgya/shopfloor/internal/shop"
)

// Starting conditions for a fresh shop.
const (
	StartMoney = 1400
	StartDay   = 1
	StartPacks = 3
)

// Phase is the day/night cycle.
type Phase uint8

const (
	PhaseDay Phase = iota
	PhaseNight
)

func (p Phase) Key() string {
	if p == PhaseNight {
		return "night"
	}
	return "day"
}

// DaySummary is the end-of-day report shown at close.
type DaySummary struct {
	Day         int `json:"day"`
	Visitors    int `json:"visitors"`
	Revenue     int `json:"revenue"`
	UnitsSold   int `json:"units_sold"`
	Restocked   int `json:"restocked"`
	PacksOpened int `json:"packs_opened"`
	MoneyClose  int `json:"money_close"`
}

// State is every piece of mutable simulation data. Exactly one goroutine
// (the loop's) touches it; collaborators read snapshots or enqueue commands.
type State struct {
	Money       int     `json:"money"`
	Day         int     `json:"day"`
	TimeSeconds float64 `json:"time_seconds"`
	Phase       Phase   `json:"-"`
	PhaseTimer  float64 `json:"phase_timer"`
	Paused      bool    `json:"paused"`

	Prices    pricing.Prices        `json:"prices"`
	Pricing   pricing.Settings      `json:"pricing"`
	Inventory *shop.Inventory       `json:"inventory"`
	Fixtures  shop.FixtureInventory `json:"fixtures"`
	Layout    *shop.Layout          `json:"layout"`

	Collection *cards.Collection `json:"collection"`
	Deck       *cards.Deck       `json:"deck"`

	PendingOrders []*shop.Order `json:"pending_orders"`

	Prog   *progression.Progression `json:"progression"`
	Skills *progression.SkillState  `json:"skills"`

	Analytics   *analytics.State `json:"analytics"`
	LastSummary *DaySummary      `json:"last_summary,omitempty"`

	Staff     *agents.Staff      `json:"staff"`
	Customers []*agents.Customer `json:"customers,omitempty"`
}

// NewState builds a fresh shop: default floor, three sealed boosters, one
// copy of every common, and the stock price list.
func NewState() *State {
	collection := cards.NewCollection()
	for _, def := range cards.ByRarity(shop.RarityCommon) {
		collection.Add(def.CardID, 1)
	}

	inv := shop.NewInventory()
	inv.Add(shop.ProductBooster, StartPacks)

	return &State{
		Money:      StartMoney,
		Day:        StartDay,
		Phase:      PhaseDay,
		Prices:     pricing.DefaultPrices(),
		Pricing:    pricing.DefaultSettings(),
		Inventory:  inv,
		Layout:     shop.NewLayout(),
		Collection: collection,
		Deck:       cards.NewDeck(),
		Prog:       progression.NewProgression(),
		Skills:     progression.NewSkillState(),
		Analytics:  analytics.NewState(),
		Staff:      agents.NewStaff(grid.Tile{X: 1, Y: 5}),
	}
}

// Normalize repairs a loaded state field by field, so one malformed save
// section degrades to its default instead of poisoning the rest.
func (st *State) Normalize(tree *progression.Tree) {
	if st.Money < 0 {
		st.Money = 0
	}
	if st.Day < 1 {
		st.Day = 1
	}
	if st.TimeSeconds < 0 {
		st.TimeSeconds = 0
	}
	if st.PhaseTimer < 0 {
		st.PhaseTimer = 0
	}

	st.Prices.Normalize()
	st.Pricing.Normalize()

	if st.Inventory == nil {
		st.Inventory = shop.NewInventory()
	}
	st.Inventory.Normalize()
	st.Fixtures.Normalize()

	if st.Layout == nil {
		st.Layout = shop.NewLayout()
	}
	st.Layout.Normalize()

	if st.Collection == nil {
		st.Collection = cards.NewCollection()
	}
	st.Collection.Normalize()
	if st.Deck == nil {
		st.Deck = cards.NewDeck()
	}
	st.Deck.Normalize()

	orders := st.PendingOrders[:0]
	for _, o := range st.PendingOrders {
		if o == nil {
			continue
		}
		orders = append(orders, o)
	}
	st.PendingOrders = orders

	if st.Prog == nil {
		st.Prog = progression.NewProgression()
	}
	st.Prog.Normalize()
	if st.Skills == nil {
		st.Skills = progression.NewSkillState()
	}
	st.Skills.Normalize(tree)

	if st.Analytics == nil {
		st.Analytics = analytics.NewState()
	}
	st.Analytics.Normalize()

	if st.Staff == nil {
		st.Staff = agents.NewStaff(grid.Tile{X: 1, Y: 5})
	}
	if st.Staff.Speed <= 0 {
		st.Staff.Speed = agents.StaffSpeed
	}
	if st.Staff.XP < 0 {
		st.Staff.XP = 0
	}

	// Visitors don't survive a save/load; they re-enter naturally.
	st.Customers = nil
}
