package analytics

import (
	"fmt"
	"testing"

	"github.com/talgya/shopfloor/internal/grid"
	"github.com/talgya/shopfloor/internal/shop"
)

func TestRecordSaleBooksRevenueAndStockouts(t *testing.T) {
	s := NewState()
	s.RecordSale(1, shop.ProductBooster, 1, 4, "3,3", false)
	s.RecordSale(1, shop.ProductBooster, 1, 4, "3,3", true)

	m := s.Day(1)
	if m.Revenue != 8 || m.UnitsSold[shop.ProductBooster] != 2 {
		t.Fatalf("day 1 metrics %+v", m)
	}
	if m.StockoutsByShelf["3,3"] != 1 {
		t.Fatalf("stockouts = %d, want 1", m.StockoutsByShelf["3,3"])
	}
	// Guarded no-op on zero quantity.
	s.RecordSale(1, shop.ProductDeck, 0, 18, "3,3", false)
	if m.UnitsSold[shop.ProductDeck] != 0 || m.Revenue != 8 {
		t.Fatalf("zero-qty sale mutated metrics: %+v", m)
	}
}

func TestEventLogCap(t *testing.T) {
	s := NewState()
	for i := 0; i < MaxLogEvents+25; i++ {
		s.Log(1, float64(i), "test", fmt.Sprintf("event %d", i))
	}
	if len(s.EventLog) != MaxLogEvents {
		t.Fatalf("log length %d, want %d", len(s.EventLog), MaxLogEvents)
	}
	if s.EventLog[0].Message != "event 25" {
		t.Fatalf("oldest surviving entry %q, want event 25", s.EventLog[0].Message)
	}
}

func TestSalesAvgSkipsMissingDays(t *testing.T) {
	s := NewState()
	s.RecordSale(1, shop.ProductDeck, 2, 36, "", false)
	s.RecordSale(3, shop.ProductDeck, 4, 72, "", false)
	// Day 2 has no bucket; the average divides by days present only.
	if got := s.SalesAvgDailyUnits(3, shop.ProductDeck, 3); got != 3.0 {
		t.Fatalf("avg = %v, want 3.0", got)
	}
	if got := s.SalesAvgDailyUnits(9, shop.ProductDeck, 3); got != 0.0 {
		t.Fatalf("avg over empty window = %v, want 0", got)
	}
}

func buildFloor(t *testing.T) (*shop.Layout, grid.Tile) {
	t.Helper()
	l := shop.NewLayout()
	tile := grid.Tile{X: 4, Y: 4}
	if !l.Place(shop.KindShelf, tile) {
		t.Fatalf("shelf placement failed")
	}
	return l, tile
}

func TestCurrentStockCountsShelvesAndListedCards(t *testing.T) {
	l, tile := buildFloor(t)
	inv := shop.NewInventory()
	inv.Add(shop.ProductBooster, 5)
	moved := l.StockBulk(tile, shop.ProductBooster, 3)
	inv.Remove(shop.ProductBooster, moved)

	// 2 left in the back room plus 3 on the floor.
	if got := CurrentStockForProduct(shop.ProductBooster, inv, l); got != 5 {
		t.Fatalf("booster stock = %d, want 5", got)
	}

	listed := grid.Tile{X: 6, Y: 4}
	l.Place(shop.KindShelf, listed)
	l.StockCard(listed, "r1", shop.RarityRare)
	l.StockCard(listed, "r2", shop.RarityRare)
	if got := CurrentStockForProduct(shop.ProductSingleRare, inv, l); got != 2 {
		t.Fatalf("listed rares counted %d, want 2", got)
	}
}

func TestComputeRestockSuggestions(t *testing.T) {
	l, _ := buildFloor(t)
	inv := shop.NewInventory()
	s := NewState()

	// Nothing sold: no advice.
	if got := s.ComputeRestockSuggestions(1, inv, l, 300, DefaultLeadTimeS, DefaultMaxSuggestions); len(got) != 0 {
		t.Fatalf("empty history produced %d suggestions", len(got))
	}

	// Heavy booster sales with no stock on hand.
	s.RecordSale(1, shop.ProductBooster, 10, 40, "", false)
	s.RecordSale(1, shop.ProductDeck, 2, 36, "", false)
	got := s.ComputeRestockSuggestions(1, inv, l, 300, DefaultLeadTimeS, DefaultMaxSuggestions)
	if len(got) != 2 {
		t.Fatalf("suggestions = %d, want 2", len(got))
	}
	// Boosters sell five times as fast; they must sort first.
	if got[0].Product != shop.ProductBooster {
		t.Fatalf("first suggestion %s, want booster", got[0].Product.Key())
	}
	for _, sug := range got {
		if sug.RecommendedQty <= 0 {
			t.Fatalf("non-positive recommendation %+v", sug)
		}
		if sug.Reason == "" {
			t.Fatalf("missing reason on %+v", sug)
		}
	}

	// Plenty on hand suppresses the advice.
	inv.Add(shop.ProductBooster, 50)
	inv.Add(shop.ProductDeck, 50)
	if got := s.ComputeRestockSuggestions(1, inv, l, 300, DefaultLeadTimeS, DefaultMaxSuggestions); len(got) != 0 {
		t.Fatalf("well-stocked shop still got %d suggestions", len(got))
	}
}

func TestTopStockoutShelves(t *testing.T) {
	s := NewState()
	s.RecordSale(1, shop.ProductBooster, 1, 4, "1,1", true)
	s.RecordSale(2, shop.ProductBooster, 1, 4, "1,1", true)
	s.RecordSale(2, shop.ProductBooster, 1, 4, "5,5", true)

	top := s.TopStockoutShelves(2, 3, 5)
	if len(top) != 2 {
		t.Fatalf("top shelves = %d, want 2", len(top))
	}
	if top[0].ShelfKey != "1,1" || top[0].Count != 2 {
		t.Fatalf("top entry %+v", top[0])
	}
	// Window excludes old days.
	if top := s.TopStockoutShelves(9, 3, 5); len(top) != 0 {
		t.Fatalf("stale stockouts leaked into window: %+v", top)
	}
}

func TestNormalizeRepairsLoadedState(t *testing.T) {
	s := &State{Days: map[int]*DailyMetrics{
		1: nil,
		2: {},
	}}
	for i := 0; i < MaxLogEvents+10; i++ {
		s.EventLog = append(s.EventLog, LogEntry{Day: 1, Kind: "x"})
	}
	s.Normalize()
	if _, ok := s.Days[1]; ok {
		t.Fatalf("nil day bucket survived")
	}
	if s.Days[2].UnitsSold == nil {
		t.Fatalf("nil maps not repaired")
	}
	if len(s.EventLog) != MaxLogEvents {
		t.Fatalf("log not truncated: %d", len(s.EventLog))
	}
}
