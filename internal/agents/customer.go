package agents

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/shopfloor/internal/grid"
	"github.com/talgya/shopfloor/internal/shop"
)

const (
	CustomerSpeed = 1.4 // tiles per second

	browseTimeMin = 0.6
	browseTimeMax = 1.4
	payTimeMin    = 0.25
	payTimeMax    = 0.7
)

// CustomerState walks the visit: browse a shelf, queue at the counter, pay,
// leave.
type CustomerState uint8

const (
	CustToShelf CustomerState = iota
	CustToCounter
	CustPaying
	CustExit
	CustDone
)

var customerStateKeys = [5]string{"to_shelf", "to_counter", "paying", "exit", "done"}

func (s CustomerState) Key() string { return customerStateKeys[s] }

// PurchaseIntent pins a purchase to the shelf it will come off.
type PurchaseIntent struct {
	Shelf   grid.Tile    `json:"shelf"`
	Product shop.Product `json:"product"`
}

// Customer is one visitor working through the browse/pay/leave loop. Dwell
// timers gate movement: while Wait is positive the customer stands still.
type Customer struct {
	ID    string        `json:"id"`
	Pos   grid.Vec2     `json:"pos"`
	State CustomerState `json:"-"`
	Wait  float64       `json:"wait_s"`

	Path     []grid.Tile     `json:"-"`
	Browsing grid.Tile       `json:"browsing"`
	Purchase *PurchaseIntent `json:"purchase,omitempty"`
}

// CustomerContext is the slice of the world a customer may see. PriceOf
// reports the effective (modifier-adjusted) price customers decide with.
// OnPurchase executes the sale transaction and reports whether it went
// through.
type CustomerContext struct {
	Layout     *shop.Layout
	Rng        *rand.Rand
	PriceOf    func(shop.Product) (int, bool)
	OnPurchase func(PurchaseIntent) bool
	Entrance   grid.Tile
}

// NewCustomer spawns a visitor at the entrance heading for a browse spot.
// Returns nil when there is nothing to walk to.
func NewCustomer(ctx *CustomerContext) *Customer {
	shelves := ctx.Layout.ShelfTiles()
	if len(shelves) == 0 {
		return nil
	}
	browse := shelves[ctx.Rng.Intn(len(shelves))]
	c := &Customer{
		ID:       uuid.NewString(),
		Pos:      ctx.Entrance.Center(),
		State:    CustToShelf,
		Browsing: browse,
	}
	c.Path = pathToAdjacentFrom(c.Pos, browse, ctx.Layout)
	return c
}

func pathToAdjacentFrom(pos grid.Vec2, target grid.Tile, layout *shop.Layout) []grid.Tile {
	from := pos.TileOf()
	walkable := layout.Walkable
	var best []grid.Tile
	found := false
	for _, opt := range grid.AdjacentWalkable(layout.W, layout.H, walkable, target) {
		if opt == from {
			return nil
		}
		p := grid.Path(layout.W, layout.H, walkable, from, opt)
		if len(p) == 0 {
			continue
		}
		if !found || len(p) < len(best) {
			best = p
			found = true
		}
	}
	return best
}

// purchaseWeight is the demand curve per product family: cheaper stock pulls
// harder, with a floor so nothing is ever entirely ignored.
func purchaseWeight(p shop.Product, price int) float64 {
	f := float64(price)
	var w float64
	switch {
	case p == shop.ProductBooster:
		w = 1.2 - f/10.0
	case p == shop.ProductDeck:
		w = 1.0 - f/20.0
	case p.IsSingle():
		w = 1.4 - f/4.0
	default:
		return 0.2
	}
	return max(0.2, w)
}

// ChoosePurchase rolls a weighted pick over every stocked shelf, pricing
// each at its effective sale price. Reports ok=false when nothing is
// purchasable.
func ChoosePurchase(ctx *CustomerContext) (PurchaseIntent, bool) {
	type option struct {
		intent PurchaseIntent
		weight float64
	}
	var options []option
	total := 0.0
	for _, t := range ctx.Layout.StockedShelfTiles() {
		stock, _ := ctx.Layout.ShelfAt(t)
		price, ok := ctx.PriceOf(stock.Product)
		if !ok {
			continue
		}
		w := purchaseWeight(stock.Product, price)
		options = append(options, option{intent: PurchaseIntent{Shelf: t, Product: stock.Product}, weight: w})
		total += w
	}
	if len(options) == 0 || total <= 0 {
		return PurchaseIntent{}, false
	}
	roll := ctx.Rng.Float64() * total
	for _, opt := range options {
		roll -= opt.weight
		if roll <= 0 {
			return opt.intent, true
		}
	}
	return options[len(options)-1].intent, true
}

func randRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Update advances the visit by dt seconds.
func (c *Customer) Update(dt float64, ctx *CustomerContext) {
	if c.State == CustDone {
		return
	}

	// Dwell gates everything: browsing and paying happen standing still.
	if c.Wait > 0 {
		c.Wait -= dt
		if c.Wait > 0 {
			return
		}
		c.Wait = 0
		switch c.State {
		case CustToShelf:
			// Browse finished: commit to a purchase or give up and leave.
			if intent, ok := ChoosePurchase(ctx); ok {
				c.Purchase = &intent
				counter, haveCounter := ctx.Layout.CounterTile()
				if haveCounter {
					c.State = CustToCounter
					c.Path = pathToAdjacentFrom(c.Pos, counter, ctx.Layout)
					return
				}
			}
			c.leave(ctx)
		case CustPaying:
			if c.Purchase != nil && ctx.OnPurchase != nil {
				ctx.OnPurchase(*c.Purchase)
			}
			c.leave(ctx)
		}
		return
	}

	if !advanceAlongPath(&c.Pos, &c.Path, CustomerSpeed, dt) {
		return
	}
	switch c.State {
	case CustToShelf:
		c.Wait = randRange(ctx.Rng, browseTimeMin, browseTimeMax)
	case CustToCounter:
		c.State = CustPaying
		c.Wait = randRange(ctx.Rng, payTimeMin, payTimeMax)
	case CustExit:
		c.State = CustDone
	}
}

func (c *Customer) leave(ctx *CustomerContext) {
	c.State = CustExit
	c.Path = grid.Path(ctx.Layout.W, ctx.Layout.H, ctx.Layout.Walkable, c.Pos.TileOf(), ctx.Entrance)
}

// Done reports whether the visit is over and the customer can be culled.
func (c *Customer) Done() bool { return c.State == CustDone }
