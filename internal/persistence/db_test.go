package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/shopfloor/internal/engine"
	"github.com/talgya/shopfloor/internal/grid"
	"github.com/talgya/shopfloor/internal/progression"
	"github.com/talgya/shopfloor/internal/shop"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadMissingSlotReturnsNil(t *testing.T) {
	db := openTestDB(t)
	st, err := db.LoadState("nope", progression.DefaultTree())
	if err != nil {
		t.Fatalf("missing slot errored: %v", err)
	}
	if st != nil {
		t.Fatalf("missing slot produced a state")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	tree := progression.DefaultTree()

	st := engine.NewState()
	st.Money = 777
	st.Day = 4
	st.TimeSeconds = 123.5
	st.Staff.XP = 240
	st.Inventory.Add(shop.ProductDeck, 3)
	st.Collection.Add("r1", 2)
	st.Deck.Add("c1")
	st.Prog.Level = 3
	st.Prog.SkillPoints = 2
	st.Skills.RankUp(tree, "haggle", st.Prog)

	shelf := grid.Tile{X: 5, Y: 5}
	if !st.Layout.Place(shop.KindShelf, shelf) {
		t.Fatalf("shelf placement failed")
	}
	st.Layout.StockBulk(shelf, shop.ProductBooster, 4)

	order := shop.NewOrder(2, 0, nil, 4, st.Day, 500)
	st.PendingOrders = append(st.PendingOrders, order)

	if err := db.SaveState(DefaultSlot, st); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.LoadState(DefaultSlot, tree)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatalf("saved slot came back empty")
	}
	if got.Money != 777 || got.Day != 4 || got.TimeSeconds != 123.5 {
		t.Fatalf("scalars = %d/%d/%v, want 777/4/123.5", got.Money, got.Day, got.TimeSeconds)
	}
	if got.Staff.XP != 240 {
		t.Fatalf("staff xp = %d, want 240", got.Staff.XP)
	}
	if got.Inventory.Count(shop.ProductDeck) != 3 {
		t.Fatalf("decks = %d, want 3", got.Inventory.Count(shop.ProductDeck))
	}
	if got.Collection.Count("r1") != 2 || got.Deck.Count("c1") != 1 {
		t.Fatalf("cards lost: r1=%d deck c1=%d", got.Collection.Count("r1"), got.Deck.Count("c1"))
	}
	// Starting stock must not bleed into a loaded save.
	if got.Inventory.Count(shop.ProductBooster) != 0 {
		t.Fatalf("phantom boosters after load: %d", got.Inventory.Count(shop.ProductBooster))
	}
	stock, ok := got.Layout.ShelfAt(shelf)
	if !ok || stock.Product != shop.ProductBooster || stock.Qty != 4 {
		t.Fatalf("shelf stock lost: ok=%v %+v", ok, stock)
	}
	if got.Skills.Rank("haggle") != 1 {
		t.Fatalf("haggle rank = %d, want 1", got.Skills.Rank("haggle"))
	}
	if len(got.PendingOrders) != 1 || got.PendingOrders[0].Boosters != 2 {
		t.Fatalf("orders lost: %+v", got.PendingOrders)
	}
}

func TestSaveOverwritesSlot(t *testing.T) {
	db := openTestDB(t)
	tree := progression.DefaultTree()

	st := engine.NewState()
	st.Money = 100
	if err := db.SaveState(DefaultSlot, st); err != nil {
		t.Fatalf("first save: %v", err)
	}
	st.Money = 200
	if err := db.SaveState(DefaultSlot, st); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := db.LoadState(DefaultSlot, tree)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Money != 200 {
		t.Fatalf("money = %d, want the overwrite 200", got.Money)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveMeta("schema", "1"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if err := db.SaveMeta("schema", "2"); err != nil {
		t.Fatalf("overwrite meta: %v", err)
	}
	v, err := db.GetMeta("schema")
	if err != nil || v != "2" {
		t.Fatalf("meta = %q (%v), want 2", v, err)
	}
}
