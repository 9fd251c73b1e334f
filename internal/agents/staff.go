package agents

import (
	"github.com/talgya/shopfloor/internal/cards"
	"github.com/talgya/shopfloor/internal/grid"
	"github.com/talgya/shopfloor/internal/progression"
	"github.com/talgya/shopfloor/internal/shop"
)

const (
	StaffSpeed       = 4.0 // tiles per second
	staffScanEvery   = 0.8
	staffStockTime   = 0.8
	restockBatchSize = 2

	// RestockRatio drives the near-full threshold: a shelf is worth a trip
	// whenever qty <= min(maxQty-1, ratio*maxQty). At 1.0 that means any
	// shelf missing at least one unit.
	RestockRatio = 1.0

	MaxCarryBoosters = 6
	MaxCarryDecks    = 3
	MaxCarrySingles  = 8
)

// StaffState is the movement state machine.
type StaffState uint8

const (
	StaffIdle StaffState = iota
	StaffMoving
	StaffStocking
)

var staffStateKeys = [3]string{"idle", "moving", "stocking"}

func (s StaffState) Key() string { return staffStateKeys[s] }

// StaffTask says which leg of a restock trip the walk is for.
type StaffTask uint8

const (
	TaskNone StaffTask = iota
	TaskPickup
	TaskDeliver
)

// RestockPlan is one shelf the staffer has committed to refill.
type RestockPlan struct {
	Shelf   grid.Tile    `json:"shelf"`
	Product shop.Product `json:"product"`
	CardID  string       `json:"card_id,omitempty"`
}

// Carry is the bounded armful of product a staffer hauls from the counter.
type Carry struct {
	Boosters int                 `json:"boosters"`
	Decks    int                 `json:"decks"`
	Singles  map[shop.Rarity]int `json:"singles"`
}

func (c *Carry) Count(p shop.Product) int {
	switch {
	case p == shop.ProductBooster:
		return c.Boosters
	case p == shop.ProductDeck:
		return c.Decks
	case p.IsSingle():
		r, _ := p.SingleRarity()
		return c.Singles[r]
	}
	return 0
}

func (c *Carry) add(p shop.Product, n int) {
	switch {
	case p == shop.ProductBooster:
		c.Boosters += n
	case p == shop.ProductDeck:
		c.Decks += n
	case p.IsSingle():
		if c.Singles == nil {
			c.Singles = make(map[shop.Rarity]int)
		}
		r, _ := p.SingleRarity()
		c.Singles[r] += n
	}
}

func (c *Carry) remove(p shop.Product, n int) {
	c.add(p, -n)
}

func carryLimit(p shop.Product) int {
	switch {
	case p == shop.ProductBooster:
		return MaxCarryBoosters
	case p == shop.ProductDeck:
		return MaxCarryDecks
	case p.IsSingle():
		return MaxCarrySingles
	}
	return 0
}

// carrySpace is how many more units of p fit, sharing one budget across all
// single rarities.
func (c *Carry) space(p shop.Product) int {
	if p.IsSingle() {
		total := 0
		for _, n := range c.Singles {
			total += n
		}
		return max(0, MaxCarrySingles-total)
	}
	return max(0, carryLimit(p)-c.Count(p))
}

// Staff is the shop's restocker: an agent that scans shelves, walks to the
// counter to pick product up, and hauls it over.
type Staff struct {
	Pos   grid.Vec2  `json:"pos"`
	Speed float64    `json:"speed"`
	State StaffState `json:"-"`
	Task  StaffTask  `json:"-"`

	Path  []grid.Tile  `json:"path,omitempty"`
	Plan  *RestockPlan `json:"plan,omitempty"`
	Carry Carry        `json:"carry"`

	ScanCooldown float64 `json:"scan_cooldown"`
	StockTimer   float64 `json:"stock_timer"`

	XP int `json:"xp"`

	priorityShelf *grid.Tile
}

// NewStaff spawns a staffer at a tile center with the scan timer primed to
// fire shortly after the doors open.
func NewStaff(at grid.Tile) *Staff {
	return &Staff{
		Pos:          at.Center(),
		Speed:        StaffSpeed,
		State:        StaffIdle,
		ScanCooldown: 0.4,
	}
}

// StaffContext is everything the staffer is allowed to touch while working.
// The OnRestock hook fires after units land on a shelf so the owner can do
// XP and analytics bookkeeping.
type StaffContext struct {
	Layout     *shop.Layout
	Inventory  *shop.Inventory
	Collection *cards.Collection
	Deck       *cards.Deck
	OnRestock  func(plan RestockPlan, moved int)
}

// NotifyShelfChange tells the staffer a shelf just changed (a sale, a manual
// restock) so the next scan happens immediately and considers that shelf
// first.
func (s *Staff) NotifyShelfChange(t grid.Tile) {
	shelf := t
	s.priorityShelf = &shelf
	s.ScanCooldown = 0
}

// RestockThreshold is the qty at or below which a shelf wants a refill.
func RestockThreshold(maxQty int, ratio float64) int {
	return min(maxQty-1, int(ratio*float64(maxQty)))
}

// shelfEligible decides whether a shelf is worth a trip right now, and what
// the trip would move.
func shelfEligible(t grid.Tile, ctx *StaffContext, carry *Carry) (RestockPlan, bool) {
	stock, ok := ctx.Layout.ShelfAt(t)
	if !ok {
		return RestockPlan{}, false
	}
	if stock.Qty > RestockThreshold(stock.MaxQty, RestockRatio) {
		return RestockPlan{}, false
	}
	if stock.Listed() {
		cardID := stock.Cards[0]
		inDeck := 0
		if ctx.Deck != nil {
			inDeck = ctx.Deck.Count(cardID)
		}
		if ctx.Collection == nil || ctx.Collection.Count(cardID)-inDeck <= 0 {
			return RestockPlan{}, false
		}
		return RestockPlan{Shelf: t, Product: stock.Product, CardID: cardID}, true
	}
	if stock.Product == shop.ProductNone {
		return RestockPlan{}, false
	}
	if carry.Count(stock.Product) <= 0 && ctx.Inventory.Count(stock.Product) <= 0 {
		return RestockPlan{}, false
	}
	return RestockPlan{Shelf: t, Product: stock.Product}, true
}

// ChooseRestockPlan picks the shelf to service: the notified priority shelf
// when it qualifies, otherwise the nearest eligible shelf by Manhattan
// distance with ties going to placement order.
func (s *Staff) ChooseRestockPlan(ctx *StaffContext) *RestockPlan {
	if s.priorityShelf != nil {
		t := *s.priorityShelf
		s.priorityShelf = nil
		if plan, ok := shelfEligible(t, ctx, &s.Carry); ok {
			return &plan
		}
	}
	from := s.Pos.TileOf()
	var best *RestockPlan
	bestDist := 0
	for _, t := range ctx.Layout.ShelfTiles() {
		plan, ok := shelfEligible(t, ctx, &s.Carry)
		if !ok {
			continue
		}
		d := from.Manhattan(t)
		if best == nil || d < bestDist {
			p := plan
			best = &p
			bestDist = d
		}
	}
	return best
}

// pathToAdjacent routes the staffer next to a target tile, preferring the
// adjacent tile closest to where it stands. An unreachable target degrades
// to an empty path, which the walk loop treats as already-arrived.
func (s *Staff) pathToAdjacent(target grid.Tile, layout *shop.Layout) []grid.Tile {
	from := s.Pos.TileOf()
	walkable := layout.Walkable
	options := grid.AdjacentWalkable(layout.W, layout.H, walkable, target)
	var bestPath []grid.Tile
	found := false
	for _, opt := range options {
		if opt == from {
			return nil
		}
		p := grid.Path(layout.W, layout.H, walkable, from, opt)
		if len(p) == 0 {
			continue
		}
		if !found || len(p) < len(bestPath) {
			bestPath = p
			found = true
		}
	}
	return bestPath
}

// pickupAtCounter tops the carry up from back-room inventory: the planned
// product first, then everything else round-robin until each line is full.
func (s *Staff) pickupAtCounter(ctx *StaffContext) {
	order := make([]shop.Product, 0, len(shop.Products))
	if s.Plan != nil && s.Plan.CardID == "" {
		order = append(order, s.Plan.Product)
	}
	for _, p := range shop.Products {
		if len(order) > 0 && p == order[0] {
			continue
		}
		order = append(order, p)
	}
	for _, p := range order {
		take := min(s.Carry.space(p), ctx.Inventory.Count(p))
		if take <= 0 {
			continue
		}
		if ctx.Inventory.Remove(p, take) {
			s.Carry.add(p, take)
		}
	}
}

// applyRestock moves a batch onto the planned shelf: bulk from the carry,
// listed copies from the collection (never the copies the deck has claimed).
// Returns units moved.
func (s *Staff) applyRestock(ctx *StaffContext) int {
	if s.Plan == nil {
		return 0
	}
	plan := *s.Plan
	if plan.CardID != "" {
		r, ok := cards.RarityOf(plan.CardID)
		if !ok {
			return 0
		}
		moved := 0
		for moved < restockBatchSize {
			inDeck := 0
			if ctx.Deck != nil {
				inDeck = ctx.Deck.Count(plan.CardID)
			}
			if ctx.Collection.Count(plan.CardID)-inDeck <= 0 {
				break
			}
			if !ctx.Layout.StockCard(plan.Shelf, plan.CardID, r) {
				break
			}
			ctx.Collection.Remove(plan.CardID, 1)
			moved++
		}
		return moved
	}
	avail := s.Carry.Count(plan.Product)
	if avail <= 0 {
		return 0
	}
	moved := ctx.Layout.StockBulk(plan.Shelf, plan.Product, min(restockBatchSize, avail))
	s.Carry.remove(plan.Product, moved)
	return moved
}

// Update advances the staffer by dt seconds.
func (s *Staff) Update(dt float64, ctx *StaffContext) {
	switch s.State {
	case StaffStocking:
		s.StockTimer -= dt
		if s.StockTimer > 0 {
			return
		}
		moved := s.applyRestock(ctx)
		if moved > 0 && ctx.OnRestock != nil && s.Plan != nil {
			ctx.OnRestock(*s.Plan, moved)
		}
		s.Plan = nil
		s.Task = TaskNone
		s.State = StaffIdle
		s.ScanCooldown = staffScanEvery

	case StaffMoving:
		if !advanceAlongPath(&s.Pos, &s.Path, s.Speed, dt) {
			return
		}
		switch s.Task {
		case TaskPickup:
			s.pickupAtCounter(ctx)
			s.Task = TaskDeliver
			if s.Plan == nil {
				s.State = StaffIdle
				return
			}
			s.Path = s.pathToAdjacent(s.Plan.Shelf, ctx.Layout)
			if len(s.Path) == 0 {
				s.State = StaffStocking
				s.StockTimer = staffStockTime
			}
		case TaskDeliver:
			s.State = StaffStocking
			s.StockTimer = staffStockTime
		default:
			s.State = StaffIdle
		}

	default: // idle
		s.ScanCooldown -= dt
		if s.ScanCooldown > 0 {
			return
		}
		s.ScanCooldown = staffScanEvery
		plan := s.ChooseRestockPlan(ctx)
		if plan == nil {
			return
		}
		s.Plan = plan

		// Listed cards come straight from the collection; bulk product the
		// staffer already carries skips the counter too.
		needsPickup := plan.CardID == "" && s.Carry.Count(plan.Product) <= 0
		var target grid.Tile
		if needsPickup {
			counter, ok := ctx.Layout.CounterTile()
			if !ok {
				s.Plan = nil
				return
			}
			s.Task = TaskPickup
			target = counter
		} else {
			s.Task = TaskDeliver
			target = plan.Shelf
		}
		s.Path = s.pathToAdjacent(target, ctx.Layout)
		s.State = StaffMoving
	}
}

// Level derives the staffer's level from accumulated XP.
func (s *Staff) Level() int {
	return progression.StaffLevelFromXP(s.XP)
}
