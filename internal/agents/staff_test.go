package agents

import (
	"testing"

	"github.com/talgya/shopfloor/internal/cards"
	"github.com/talgya/shopfloor/internal/grid"
	"github.com/talgya/shopfloor/internal/shop"
)

func staffContext(layout *shop.Layout) *StaffContext {
	return &StaffContext{
		Layout:     layout,
		Inventory:  shop.NewInventory(),
		Collection: cards.NewCollection(),
		Deck:       cards.NewDeck(),
	}
}

func TestRestockThresholdPolicy(t *testing.T) {
	// Full ratio: any missing unit makes the shelf eligible, but a full
	// shelf never is.
	if got := RestockThreshold(10, 1.0); got != 9 {
		t.Fatalf("threshold(10, 1.0) = %d, want 9", got)
	}
	if got := RestockThreshold(10, 0.5); got != 5 {
		t.Fatalf("threshold(10, 0.5) = %d, want 5", got)
	}
}

func TestChooseRestockPlanNearestWins(t *testing.T) {
	layout := shop.NewLayout()
	near := grid.Tile{X: 2, Y: 2}
	far := grid.Tile{X: 15, Y: 9}
	layout.Place(shop.KindShelf, near)
	layout.Place(shop.KindShelf, far)
	layout.StockBulk(near, shop.ProductBooster, 1)
	layout.StockBulk(far, shop.ProductBooster, 1)

	ctx := staffContext(layout)
	ctx.Inventory.Add(shop.ProductBooster, 10)

	s := NewStaff(grid.Tile{X: 0, Y: 0})
	plan := s.ChooseRestockPlan(ctx)
	if plan == nil || plan.Shelf != near {
		t.Fatalf("plan = %+v, want nearest shelf %v", plan, near)
	}
}

func TestChooseRestockPlanSkipsUnsourcedShelves(t *testing.T) {
	layout := shop.NewLayout()
	tile := grid.Tile{X: 2, Y: 2}
	layout.Place(shop.KindShelf, tile)
	layout.StockBulk(tile, shop.ProductDeck, 1)

	ctx := staffContext(layout) // no decks anywhere
	s := NewStaff(grid.Tile{X: 0, Y: 0})
	if plan := s.ChooseRestockPlan(ctx); plan != nil {
		t.Fatalf("plan for unsourced shelf: %+v", plan)
	}
	// Full shelves don't get trips either.
	ctx.Inventory.Add(shop.ProductDeck, 20)
	layout.StockBulk(tile, shop.ProductDeck, 9)
	if plan := s.ChooseRestockPlan(ctx); plan != nil {
		t.Fatalf("plan for full shelf: %+v", plan)
	}
}

func TestNotifyShelfChangeJumpsTheQueue(t *testing.T) {
	layout := shop.NewLayout()
	near := grid.Tile{X: 2, Y: 2}
	far := grid.Tile{X: 15, Y: 9}
	layout.Place(shop.KindShelf, near)
	layout.Place(shop.KindShelf, far)
	layout.StockBulk(near, shop.ProductBooster, 1)
	layout.StockBulk(far, shop.ProductBooster, 1)

	ctx := staffContext(layout)
	ctx.Inventory.Add(shop.ProductBooster, 10)

	s := NewStaff(grid.Tile{X: 0, Y: 0})
	s.NotifyShelfChange(far)
	if s.ScanCooldown != 0 {
		t.Fatalf("notify should zero the scan cooldown, got %v", s.ScanCooldown)
	}
	plan := s.ChooseRestockPlan(ctx)
	if plan == nil || plan.Shelf != far {
		t.Fatalf("notified shelf should be considered first, got %+v", plan)
	}
	// The priority is consumed; the next scan is back to nearest-first.
	plan = s.ChooseRestockPlan(ctx)
	if plan == nil || plan.Shelf != near {
		t.Fatalf("priority should not persist, got %+v", plan)
	}
}

func TestStaffRestockTripMovesStockFromBackRoom(t *testing.T) {
	layout := shop.NewLayout()
	shelf := grid.Tile{X: 2, Y: 2}
	layout.Place(shop.KindShelf, shelf)
	layout.StockBulk(shelf, shop.ProductBooster, 1)

	ctx := staffContext(layout)
	ctx.Inventory.Add(shop.ProductBooster, 5)
	restocked := 0
	ctx.OnRestock = func(plan RestockPlan, moved int) {
		if plan.Shelf != shelf || plan.Product != shop.ProductBooster {
			t.Fatalf("unexpected restock %+v", plan)
		}
		restocked += moved
	}

	s := NewStaff(grid.Tile{X: 0, Y: 0})
	for i := 0; i < 1200; i++ { // 60 simulated seconds
		s.Update(0.05, ctx)
		if s.Carry.Boosters > MaxCarryBoosters {
			t.Fatalf("carry over limit: %d", s.Carry.Boosters)
		}
	}

	stock, _ := layout.ShelfAt(shelf)
	if stock.Qty != 6 {
		t.Fatalf("shelf qty = %d, want 6 (1 on shelf + 5 from the back)", stock.Qty)
	}
	if got := ctx.Inventory.Count(shop.ProductBooster); got != 0 {
		t.Fatalf("back room still holds %d boosters", got)
	}
	if s.Carry.Boosters != 0 {
		t.Fatalf("carry still holds %d boosters", s.Carry.Boosters)
	}
	if restocked != 5 {
		t.Fatalf("restock hook saw %d units, want 5", restocked)
	}
	if s.State != StaffIdle {
		t.Fatalf("staff should settle back to idle, state %s", s.State.Key())
	}
}

func TestStaffRestocksListedCardsFromCollection(t *testing.T) {
	layout := shop.NewLayout()
	shelf := grid.Tile{X: 3, Y: 3}
	layout.Place(shop.KindShelf, shelf)
	layout.StockCard(shelf, "r1", shop.RarityRare)

	ctx := staffContext(layout)
	ctx.Collection.Add("r1", 4)
	ctx.Deck.Add("r1") // one copy is spoken for

	s := NewStaff(grid.Tile{X: 1, Y: 1})
	for i := 0; i < 1200; i++ {
		s.Update(0.05, ctx)
	}

	stock, _ := layout.ShelfAt(shelf)
	// 1 listed + 3 sellable copies (4 owned minus 1 in deck).
	if stock.Qty != 4 || len(stock.Cards) != 4 {
		t.Fatalf("listed shelf qty=%d cards=%d, want 4/4", stock.Qty, len(stock.Cards))
	}
	if got := ctx.Collection.Count("r1"); got != 1 {
		t.Fatalf("collection holds %d copies, want the deck-committed 1", got)
	}
}

func TestStaffDegradesWhenShelfUnreachable(t *testing.T) {
	layout := shop.NewLayout()
	shelf := grid.Tile{X: 2, Y: 2}
	layout.Place(shop.KindShelf, shelf)
	layout.StockBulk(shelf, shop.ProductBooster, 1)
	// Wall the shelf in.
	for _, t2 := range []grid.Tile{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3}} {
		layout.Place(shop.KindPoster, t2)
	}

	ctx := staffContext(layout)
	ctx.Inventory.Add(shop.ProductBooster, 5)

	s := NewStaff(grid.Tile{X: 6, Y: 6})
	// Must not wedge: the empty-path fallback lets the trip complete.
	for i := 0; i < 1200; i++ {
		s.Update(0.05, ctx)
	}
	if s.State == StaffMoving && len(s.Path) == 0 {
		t.Fatalf("staff wedged in moving state with no path")
	}
}
